// Package tracker implements the command semantics over the registry:
// each operation is one load-mutate-save cycle against the store, plus
// a journal entry when the registry changed.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/P-ict0/HourTrack/internal/domain"
	"github.com/P-ict0/HourTrack/internal/journal"
	"github.com/P-ict0/HourTrack/internal/store"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectExists   = errors.New("project already exists")
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionRunning  = errors.New("session already running")
	ErrInvalidArgument = errors.New("invalid argument")
)

type Tracker struct {
	Store   *store.Store
	Journal *journal.Journal // optional; nil disables journaling
	Now     func() time.Time
}

func New(st *store.Store, j *journal.Journal) Tracker {
	return Tracker{Store: st, Journal: j, Now: time.Now}
}

func (t Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t Tracker) record(ctx context.Context, evtType, project string, payload journal.Payload) error {
	if t.Journal == nil {
		return nil
	}
	return t.Journal.Append(ctx, evtType, project, payload)
}

func cleanName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("project name must not be empty: %w", ErrInvalidArgument)
	}
	return name, nil
}

// Create adds an empty project. goalHours of 0 means no goal.
func (t Tracker) Create(ctx context.Context, name string, goalHours float64) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	if goalHours < 0 {
		return fmt.Errorf("goal must not be negative: %w", ErrInvalidArgument)
	}
	reg, err := t.Store.Load()
	if err != nil {
		return err
	}
	if reg.Get(name) != nil {
		return fmt.Errorf("project %q: %w", name, ErrProjectExists)
	}
	p := reg.Ensure(name)
	p.GoalHours = goalHours
	if err := t.Store.Save(reg); err != nil {
		return err
	}
	return t.record(ctx, journal.EventCreate, name, journal.Payload{"goal_hours": goalHours})
}

// Start opens an active session, creating the project if it is unknown.
func (t Tracker) Start(ctx context.Context, name string) (domain.Session, error) {
	name, err := cleanName(name)
	if err != nil {
		return domain.Session{}, err
	}
	reg, err := t.Store.Load()
	if err != nil {
		return domain.Session{}, err
	}
	created := reg.Get(name) == nil
	p := reg.Ensure(name)
	if p.IsActive() {
		return domain.Session{}, fmt.Errorf("project %q: %w", name, ErrSessionRunning)
	}
	sess := domain.Session{ID: uuid.NewString(), Start: t.now()}
	p.Active = &sess
	if err := t.Store.Save(reg); err != nil {
		return domain.Session{}, err
	}
	return sess, t.record(ctx, journal.EventStart, name, journal.Payload{
		"session_id": sess.ID,
		"created":    created,
	})
}

// Stop closes the active session and appends it to the completed list.
func (t Tracker) Stop(ctx context.Context, name string) (domain.Session, error) {
	reg, err := t.Store.Load()
	if err != nil {
		return domain.Session{}, err
	}
	p := reg.Get(name)
	if p == nil {
		return domain.Session{}, fmt.Errorf("project %q: %w", name, ErrProjectNotFound)
	}
	if !p.IsActive() {
		return domain.Session{}, fmt.Errorf("project %q: %w", name, ErrNoActiveSession)
	}
	sess := stopProject(p, t.now())
	if err := t.Store.Save(reg); err != nil {
		return domain.Session{}, err
	}
	return sess, t.record(ctx, journal.EventStop, name, journal.Payload{
		"session_id":       sess.ID,
		"duration_seconds": int64(sess.Duration() / time.Second),
	})
}

// StopAll closes the active session of every running project and
// returns their names. Stopping nothing is not an error.
func (t Tracker) StopAll(ctx context.Context) ([]string, error) {
	reg, err := t.Store.Load()
	if err != nil {
		return nil, err
	}
	now := t.now()
	var stopped []string
	var sessions []domain.Session
	for _, name := range reg.Names() {
		p := reg.Get(name)
		if !p.IsActive() {
			continue
		}
		sessions = append(sessions, stopProject(p, now))
		stopped = append(stopped, name)
	}
	if len(stopped) == 0 {
		return nil, nil
	}
	if err := t.Store.Save(reg); err != nil {
		return nil, err
	}
	for i, name := range stopped {
		err := t.record(ctx, journal.EventStop, name, journal.Payload{
			"session_id":       sessions[i].ID,
			"duration_seconds": int64(sessions[i].Duration() / time.Second),
		})
		if err != nil {
			return stopped, err
		}
	}
	return stopped, nil
}

func stopProject(p *domain.Project, now time.Time) domain.Session {
	sess := *p.Active
	sess.End = now
	p.Sessions = append(p.Sessions, sess)
	p.Active = nil
	return sess
}

// Reset clears all sessions (including a running one) but keeps the
// project and its goal.
func (t Tracker) Reset(ctx context.Context, name string) error {
	reg, err := t.Store.Load()
	if err != nil {
		return err
	}
	p := reg.Get(name)
	if p == nil {
		return fmt.Errorf("project %q: %w", name, ErrProjectNotFound)
	}
	resetProject(p)
	if err := t.Store.Save(reg); err != nil {
		return err
	}
	return t.record(ctx, journal.EventReset, name, nil)
}

// ResetAll resets every project and returns their names.
func (t Tracker) ResetAll(ctx context.Context) ([]string, error) {
	reg, err := t.Store.Load()
	if err != nil {
		return nil, err
	}
	names := reg.Names()
	for _, name := range names {
		resetProject(reg.Get(name))
	}
	if len(names) == 0 {
		return nil, nil
	}
	if err := t.Store.Save(reg); err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := t.record(ctx, journal.EventReset, name, nil); err != nil {
			return names, err
		}
	}
	return names, nil
}

func resetProject(p *domain.Project) {
	p.Sessions = nil
	p.Active = nil
}

// Rename re-keys a project, preserving goal and sessions.
func (t Tracker) Rename(ctx context.Context, oldName, newName string) error {
	newName, err := cleanName(newName)
	if err != nil {
		return err
	}
	reg, err := t.Store.Load()
	if err != nil {
		return err
	}
	p := reg.Get(oldName)
	if p == nil {
		return fmt.Errorf("project %q: %w", oldName, ErrProjectNotFound)
	}
	if reg.Get(newName) != nil {
		return fmt.Errorf("project %q: %w", newName, ErrProjectExists)
	}
	delete(reg.Projects, oldName)
	reg.Projects[newName] = p
	if err := t.Store.Save(reg); err != nil {
		return err
	}
	return t.record(ctx, journal.EventRename, newName, journal.Payload{"from": oldName})
}

// SetGoal sets the hour goal; 0 clears it.
func (t Tracker) SetGoal(ctx context.Context, name string, goalHours float64) error {
	if goalHours < 0 {
		return fmt.Errorf("goal must not be negative: %w", ErrInvalidArgument)
	}
	reg, err := t.Store.Load()
	if err != nil {
		return err
	}
	p := reg.Get(name)
	if p == nil {
		return fmt.Errorf("project %q: %w", name, ErrProjectNotFound)
	}
	p.GoalHours = goalHours
	if err := t.Store.Save(reg); err != nil {
		return err
	}
	return t.record(ctx, journal.EventEdit, name, journal.Payload{"goal_hours": goalHours})
}

// AddSession appends a synthetic completed session of the given length
// ending now.
func (t Tracker) AddSession(ctx context.Context, name string, hours float64) (domain.Session, error) {
	if hours <= 0 {
		return domain.Session{}, fmt.Errorf("session hours must be positive: %w", ErrInvalidArgument)
	}
	reg, err := t.Store.Load()
	if err != nil {
		return domain.Session{}, err
	}
	p := reg.Get(name)
	if p == nil {
		return domain.Session{}, fmt.Errorf("project %q: %w", name, ErrProjectNotFound)
	}
	end := t.now()
	sess := domain.Session{
		ID:    uuid.NewString(),
		Start: end.Add(-time.Duration(hours * float64(time.Hour))),
		End:   end,
	}
	p.Sessions = append(p.Sessions, sess)
	if err := t.Store.Save(reg); err != nil {
		return domain.Session{}, err
	}
	return sess, t.record(ctx, journal.EventEdit, name, journal.Payload{
		"added_session": sess.ID,
		"hours":         hours,
	})
}

// DeleteSession removes the completed session at the 1-based index,
// or the most recent one when index is -1.
func (t Tracker) DeleteSession(ctx context.Context, name string, index int) (domain.Session, error) {
	reg, err := t.Store.Load()
	if err != nil {
		return domain.Session{}, err
	}
	p := reg.Get(name)
	if p == nil {
		return domain.Session{}, fmt.Errorf("project %q: %w", name, ErrProjectNotFound)
	}
	sess, ok := p.SessionAt(index)
	if !ok {
		return domain.Session{}, fmt.Errorf("session index %d out of range (1..%d or -1): %w",
			index, len(p.Sessions), ErrInvalidArgument)
	}
	if index == -1 {
		index = len(p.Sessions)
	}
	p.Sessions = append(p.Sessions[:index-1], p.Sessions[index:]...)
	if err := t.Store.Save(reg); err != nil {
		return domain.Session{}, err
	}
	return sess, t.record(ctx, journal.EventEdit, name, journal.Payload{"deleted_session": sess.ID})
}

// Delete removes the project and all its sessions irrecoverably.
func (t Tracker) Delete(ctx context.Context, name string) error {
	reg, err := t.Store.Load()
	if err != nil {
		return err
	}
	if reg.Get(name) == nil {
		return fmt.Errorf("project %q: %w", name, ErrProjectNotFound)
	}
	delete(reg.Projects, name)
	if err := t.Store.Save(reg); err != nil {
		return err
	}
	return t.record(ctx, journal.EventDelete, name, nil)
}

// DeleteAll empties the registry and returns the removed names.
func (t Tracker) DeleteAll(ctx context.Context) ([]string, error) {
	reg, err := t.Store.Load()
	if err != nil {
		return nil, err
	}
	names := reg.Names()
	if len(names) == 0 {
		return nil, nil
	}
	reg.Projects = map[string]*domain.Project{}
	if err := t.Store.Save(reg); err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := t.record(ctx, journal.EventDelete, name, nil); err != nil {
			return names, err
		}
	}
	return names, nil
}

// Status is a reporting snapshot of one project.
type Status struct {
	Name     string
	Goal     float64
	Sessions int
	Active   bool
	Since    time.Time     // start of the active session, if any
	Total    time.Duration // completed time plus active elapsed time
}

func statusOf(name string, p *domain.Project, now time.Time) Status {
	st := Status{
		Name:     name,
		Goal:     p.GoalHours,
		Sessions: len(p.Sessions),
		Active:   p.IsActive(),
		Total:    p.TotalAt(now),
	}
	if p.Active != nil {
		st.Since = p.Active.Start
	}
	return st
}

// List returns a status per project, sorted by name; with activeOnly it
// keeps only projects with a running session.
func (t Tracker) List(ctx context.Context, activeOnly bool) ([]Status, error) {
	reg, err := t.Store.Load()
	if err != nil {
		return nil, err
	}
	now := t.now()
	var res []Status
	for _, name := range reg.Names() {
		p := reg.Get(name)
		if activeOnly && !p.IsActive() {
			continue
		}
		res = append(res, statusOf(name, p, now))
	}
	return res, nil
}

// Info returns one project's status and a copy of its completed
// sessions for detailed reports.
func (t Tracker) Info(ctx context.Context, name string) (Status, []domain.Session, error) {
	reg, err := t.Store.Load()
	if err != nil {
		return Status{}, nil, err
	}
	p := reg.Get(name)
	if p == nil {
		return Status{}, nil, fmt.Errorf("project %q: %w", name, ErrProjectNotFound)
	}
	sessions := make([]domain.Session, len(p.Sessions))
	copy(sessions, p.Sessions)
	return statusOf(name, p, t.now()), sessions, nil
}
