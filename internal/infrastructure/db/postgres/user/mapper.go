package user

import (
	domain "palmr-api/internal/domain/user"
)

func fromDBModel(model *User) *domain.User {
	var u = &domain.User{
		UUID:         model.UUID,
		Username:     model.Username,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		FirstName:    model.FirstName,
		LastName:     model.LastName,
		Image:        model.Image,
		IsAdmin:      model.IsAdmin,
		IsActive:     model.IsActive,

		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}

	return u
}

// ScanDest returns scan targets in the order of Columns.
func (u *User) ScanDest() []any {
	return []any{
		&u.ID,
		&u.UUID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Image,
		&u.IsAdmin,
		&u.IsActive,

		&u.CreatedAt,
		&u.UpdatedAt,
	}
}

// ToDomain exposes the mapper to other repositories that return users.
func (u *User) ToDomain() *domain.User { return fromDBModel(u) }
