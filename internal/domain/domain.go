package domain

import (
	"sort"
	"time"
)

// Session is one start/stop interval of tracked time. While a session is
// running it lives in Project.Active with a zero End; stopping fills End
// and moves it to Project.Sessions.
type Session struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the completed length of the session, zero while active.
func (s Session) Duration() time.Duration {
	if s.End.IsZero() {
		return 0
	}
	return s.End.Sub(s.Start)
}

// Elapsed returns how long the session has been running as of now.
func (s Session) Elapsed(now time.Time) time.Duration {
	if !s.End.IsZero() {
		return s.End.Sub(s.Start)
	}
	if now.Before(s.Start) {
		return 0
	}
	return now.Sub(s.Start)
}

// Project is a named tracked entity: an optional hour goal, completed
// sessions in chronological order, and at most one active session.
type Project struct {
	GoalHours float64   `json:"goal_hours,omitempty"`
	Sessions  []Session `json:"sessions"`
	Active    *Session  `json:"active,omitempty"`
}

// IsActive reports whether the project has a running session.
func (p *Project) IsActive() bool {
	return p.Active != nil
}

// Total sums completed session durations.
func (p *Project) Total() time.Duration {
	var total time.Duration
	for _, s := range p.Sessions {
		total += s.Duration()
	}
	return total
}

// TotalAt is Total plus the elapsed time of the active session, if any.
// Only reporting uses it; the stored registry never carries derived time.
func (p *Project) TotalAt(now time.Time) time.Duration {
	total := p.Total()
	if p.Active != nil {
		total += p.Active.Elapsed(now)
	}
	return total
}

// SessionAt resolves a 1-based session index, with -1 meaning the most
// recently completed session. ok is false when the index is out of range.
func (p *Project) SessionAt(index int) (Session, bool) {
	if index == -1 {
		index = len(p.Sessions)
	}
	if index < 1 || index > len(p.Sessions) {
		return Session{}, false
	}
	return p.Sessions[index-1], true
}

// Registry is the full set of projects, the unit of persistence.
type Registry struct {
	Projects map[string]*Project `json:"projects"`
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{Projects: map[string]*Project{}}
}

// Get returns the named project, nil if absent.
func (r *Registry) Get(name string) *Project {
	return r.Projects[name]
}

// Ensure returns the named project, creating an empty one if absent.
// This is the explicit create-or-get behind implicit creation on start.
func (r *Registry) Ensure(name string) *Project {
	if p, ok := r.Projects[name]; ok {
		return p
	}
	p := &Project{}
	r.Projects[name] = p
	return p
}

// Names returns all project names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Projects))
	for name := range r.Projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
