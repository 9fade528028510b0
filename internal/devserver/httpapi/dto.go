package httpapi

import (
	"time"

	"github.com/dmitrijs2005/mediguard/internal/devserver/records"
	"github.com/dmitrijs2005/mediguard/internal/devserver/users"
)

// envelope is the shape of every response.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
}

type symptomRequest struct {
	Message string `json:"message" binding:"required"`
}

type userDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserDTO(u *users.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, CreatedAt: u.CreatedAt}
}

type reminderDTO struct {
	ID             string  `json:"medication_remainder_id,omitempty"`
	MedicationName string  `json:"medication_name"`
	Dose           string  `json:"medication_dose"`
	Time           string  `json:"medication_time"`
	RepeatInterval int     `json:"repeat_interval"`
	Date           string  `json:"medication_date"`
	LastSent       *string `json:"last_sent"`
	Schedule       string  `json:"schedule,omitempty"`
}

func (d reminderDTO) toRecord() records.Reminder {
	return records.Reminder{
		MedicationName: d.MedicationName,
		Dose:           d.Dose,
		Time:           d.Time,
		RepeatInterval: d.RepeatInterval,
		Date:           d.Date,
		LastSent:       d.LastSent,
	}
}

func toReminderDTO(r records.Reminder) reminderDTO {
	return reminderDTO{
		ID:             r.ID,
		MedicationName: r.MedicationName,
		Dose:           r.Dose,
		Time:           r.Time,
		RepeatInterval: r.RepeatInterval,
		Date:           r.Date,
		LastSent:       r.LastSent,
		Schedule:       r.Schedule,
	}
}

type symptomCheckDTO struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

func toSymptomCheckDTO(c records.SymptomCheck) symptomCheckDTO {
	return symptomCheckDTO{ID: c.ID, Message: c.Message, Response: c.Response, CreatedAt: c.CreatedAt}
}
