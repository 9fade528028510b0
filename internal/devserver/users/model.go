package users

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash []byte
	CreatedAt    time.Time
}
