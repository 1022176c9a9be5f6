package user

import (
	"palmr-api/internal/domain/user"
)

func ToResponseUser(uDomain user.User) User {
	var u = User{
		ID:        uDomain.UUID,
		Username:  uDomain.Username,
		Email:     uDomain.Email,
		FirstName: uDomain.FirstName,
		LastName:  uDomain.LastName,
		Image:     uDomain.Image,
		IsAdmin:   uDomain.IsAdmin,
		IsActive:  uDomain.IsActive,
		CreatedAt: uDomain.CreatedAt,
		UpdatedAt: uDomain.UpdatedAt,
	}

	return u
}
