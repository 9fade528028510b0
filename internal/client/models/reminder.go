package models

import (
	"errors"
	"strings"
)

// ErrInvalidReminder is returned by NewMedicationReminder.Validate.
var ErrInvalidReminder = errors.New("invalid medication reminder")

// MedicationReminder is a scheduled medication notification. JSON names
// follow the remote API.
type MedicationReminder struct {
	ID             string  `json:"medication_remainder_id"`
	MedicationName string  `json:"medication_name"`
	Dose           string  `json:"medication_dose"`
	Time           string  `json:"medication_time"`
	RepeatInterval int     `json:"repeat_interval"`
	Date           string  `json:"medication_date"`
	LastSent       *string `json:"last_sent"`
	Schedule       string  `json:"schedule"`
}

// NewMedicationReminder is the create request; the server assigns ID and
// Schedule.
type NewMedicationReminder struct {
	MedicationName string  `json:"medication_name"`
	Dose           string  `json:"medication_dose"`
	Time           string  `json:"medication_time"`
	RepeatInterval int     `json:"repeat_interval"`
	Date           string  `json:"medication_date"`
	LastSent       *string `json:"last_sent"`
}

func (r NewMedicationReminder) Validate() error {
	if strings.TrimSpace(r.MedicationName) == "" {
		return errors.Join(ErrInvalidReminder, errors.New("medication name is required"))
	}
	if strings.TrimSpace(r.Dose) == "" {
		return errors.Join(ErrInvalidReminder, errors.New("dose is required"))
	}
	if strings.TrimSpace(r.Time) == "" {
		return errors.Join(ErrInvalidReminder, errors.New("time is required"))
	}
	if r.RepeatInterval < 0 {
		return errors.Join(ErrInvalidReminder, errors.New("repeat interval must not be negative"))
	}
	return nil
}
