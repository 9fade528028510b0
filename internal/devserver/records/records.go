// Package records keeps the dev server's per-user medication reminders and
// symptom checks in memory.
package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("validation error")

// PlaceholderResponse answers every symptom check. The dev server performs
// no analysis.
const PlaceholderResponse = "This is a development server. Please consult a healthcare professional about your symptoms."

type Reminder struct {
	ID             string
	MedicationName string
	Dose           string
	Time           string
	RepeatInterval int
	Date           string
	LastSent       *string
	Schedule       string
}

type SymptomCheck struct {
	ID        string
	Message   string
	Response  string
	CreatedAt time.Time
}

type Store struct {
	mu        sync.RWMutex
	reminders map[string][]Reminder
	checks    map[string][]SymptomCheck
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		reminders: map[string][]Reminder{},
		checks:    map[string][]SymptomCheck{},
		now:       time.Now,
	}
}

// CreateReminder stores r for userID, assigning ID and Schedule.
func (s *Store) CreateReminder(_ context.Context, userID string, r Reminder) (Reminder, error) {
	r.MedicationName = strings.TrimSpace(r.MedicationName)
	if r.MedicationName == "" || strings.TrimSpace(r.Dose) == "" || strings.TrimSpace(r.Time) == "" {
		return Reminder{}, fmt.Errorf("%w: medication name, dose and time are required", ErrValidation)
	}
	if r.RepeatInterval < 0 {
		return Reminder{}, fmt.Errorf("%w: repeat interval must not be negative", ErrValidation)
	}

	r.ID = uuid.NewString()
	r.Schedule = schedule(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders[userID] = append(s.reminders[userID], r)
	return r, nil
}

func (s *Store) ListReminders(_ context.Context, userID string) []Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Reminder{}, s.reminders[userID]...)
}

// CheckSymptoms records message for userID with the placeholder answer.
func (s *Store) CheckSymptoms(_ context.Context, userID, message string) (SymptomCheck, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return SymptomCheck{}, fmt.Errorf("%w: message is required", ErrValidation)
	}

	c := SymptomCheck{
		ID:        uuid.NewString(),
		Message:   message,
		Response:  PlaceholderResponse,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[userID] = append(s.checks[userID], c)
	return c, nil
}

func (s *Store) ListSymptomChecks(_ context.Context, userID string) []SymptomCheck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]SymptomCheck{}, s.checks[userID]...)
}

func schedule(r Reminder) string {
	if r.RepeatInterval == 0 {
		return "once at " + r.Time
	}
	if r.RepeatInterval == 1 {
		return "daily at " + r.Time
	}
	return fmt.Sprintf("every %d days at %s", r.RepeatInterval, r.Time)
}
