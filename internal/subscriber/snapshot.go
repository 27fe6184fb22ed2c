package subscriber

import (
	"strings"
	"time"
)

// Snapshot is the full subscriber population read once at run start. It is
// used both for iteration and as the rank population and is never re-read
// during a run.
type Snapshot struct {
	subscribers []Subscriber
	takenAt     time.Time
}

// NewSnapshot wraps an already-read population.
func NewSnapshot(subs []Subscriber, takenAt time.Time) *Snapshot {
	return &Snapshot{subscribers: subs, takenAt: takenAt}
}

// All returns the population in store order. Callers must not modify it.
func (s *Snapshot) All() []Subscriber { return s.subscribers }

// Len returns the population size.
func (s *Snapshot) Len() int { return len(s.subscribers) }

// TakenAt returns when the scan finished.
func (s *Snapshot) TakenAt() time.Time { return s.takenAt }

// FindByEmail returns the first subscriber whose email matches, ignoring case.
func (s *Snapshot) FindByEmail(email string) (Subscriber, bool) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Subscriber{}, false
	}
	for _, sub := range s.subscribers {
		if strings.EqualFold(sub.Email, email) {
			return sub, true
		}
	}
	return Subscriber{}, false
}
