package store_test

import (
	"os"
	"testing"
	"time"

	"github.com/P-ict0/HourTrack/internal/domain"
	"github.com/P-ict0/HourTrack/internal/store"
)

func TestLoadMissingFileReturnsEmptyRegistry(t *testing.T) {
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	reg, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(reg.Projects) != 0 {
		t.Fatalf("expected empty registry, got %d projects", len(reg.Projects))
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	reg := domain.NewRegistry()
	p := reg.Ensure("alpha")
	p.GoalHours = 8
	p.Sessions = []domain.Session{{ID: "s1", Start: start, End: start.Add(time.Hour)}}
	p.Active = &domain.Session{ID: "s2", Start: start.Add(2 * time.Hour)}
	if err := st.Save(reg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := loaded.Get("alpha")
	if got == nil {
		t.Fatalf("project missing after reload")
	}
	if got.GoalHours != 8 {
		t.Fatalf("goal = %v, want 8", got.GoalHours)
	}
	if len(got.Sessions) != 1 || !got.Sessions[0].Start.Equal(start) || got.Sessions[0].Duration() != time.Hour {
		t.Fatalf("sessions mismatch: %+v", got.Sessions)
	}
	if got.Active == nil || got.Active.ID != "s2" || !got.Active.End.IsZero() {
		t.Fatalf("active session mismatch: %+v", got.Active)
	}
}

func TestSaveOverwritesWholeFile(t *testing.T) {
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	reg := domain.NewRegistry()
	reg.Ensure("a")
	reg.Ensure("b")
	if err := st.Save(reg); err != nil {
		t.Fatal(err)
	}
	delete(reg.Projects, "b")
	if err := st.Save(reg); err != nil {
		t.Fatal(err)
	}
	loaded, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Get("b") != nil || loaded.Get("a") == nil {
		t.Fatalf("expected only 'a' after overwrite, got %v", loaded.Names())
	}
}

func TestCorruptRegistryFails(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(st.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Load(); err == nil {
		t.Fatalf("expected parse error for corrupt registry")
	}
}
