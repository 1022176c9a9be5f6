package invite

import (
	"time"

	"palmr-api/internal/application/ports"
	"palmr-api/internal/domain/invite"
)

type (
	Token struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	Status struct {
		Valid   bool `json:"valid"`
		Used    bool `json:"used,omitempty"`
		Expired bool `json:"expired,omitempty"`
	}
	RegisterRequest struct {
		Token     string `json:"token"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
)

func ToResponseToken(t invite.Token) Token {
	return Token{Token: t.Token, ExpiresAt: t.ExpiresAt}
}

func ToResponseStatus(s ports.InviteStatus) Status {
	return Status{Valid: s.Valid, Used: s.Used, Expired: s.Expired}
}

func ToRegisterInput(req RegisterRequest) ports.RegisterWithInviteInput {
	return ports.RegisterWithInviteInput{
		Token:     req.Token,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
}
