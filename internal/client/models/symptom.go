package models

import "time"

// SymptomCheck is one submitted symptom description and the service answer.
type SymptomCheck struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}
