package user

import "errors"

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)

const (
	constraintUsername = "users_username_key"
	constraintEmail    = "users_email_key"
)

// UniqueViolationError maps a users unique constraint name to its sentinel.
func UniqueViolationError(constraint string) error {
	switch constraint {
	case constraintUsername:
		return ErrUsernameAlreadyExists
	case constraintEmail:
		return ErrEmailAlreadyExists
	}
	return nil
}
