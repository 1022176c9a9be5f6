package user

import (
	"time"

	"github.com/google/uuid"
)

type (
	User struct {
		ID           uint64
		UUID         uuid.UUID
		Username     string
		Email        string
		PasswordHash *string
		FirstName    string
		LastName     string
		Image        *string
		IsAdmin      bool
		IsActive     bool

		CreatedAt time.Time
		UpdatedAt time.Time
	}
	Users []*User
)
