package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type (
	ID   uint64
	UUID = uuid.UUID
	User struct {
		UUID         UUID
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

func (u *User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}
