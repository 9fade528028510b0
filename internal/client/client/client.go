package client

import (
	"context"

	"github.com/dmitrijs2005/mediguard/internal/client/models"
)

// Client is the API contract the UI layer talks to.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Register(ctx context.Context, name, email, password, phone string) (*models.AuthResult, error)
	FetchProfile(ctx context.Context) (*models.UserProfile, error)
	ValidateToken(ctx context.Context, token string) (*models.UserProfile, error)
	Logout(ctx context.Context) error
	CreateMedicationReminder(ctx context.Context, r models.NewMedicationReminder) (*models.MedicationReminder, error)
	ListMedicationReminders(ctx context.Context) ([]models.MedicationReminder, error)
	CheckSymptoms(ctx context.Context, message string) (*models.SymptomCheck, error)
	ListSymptomChecks(ctx context.Context) ([]models.SymptomCheck, error)
	Ping(ctx context.Context) error
}

// SessionStore is the part of the session store the client drives.
// *session.Store satisfies it.
type SessionStore interface {
	Token() string
	SetSession(ctx context.Context, user *models.UserProfile, token string) error
	UpdateProfile(ctx context.Context, token string, user *models.UserProfile) error
	ClearSession(ctx context.Context) error
	Invalidate(ctx context.Context, token string) bool
}
