package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	used := New(KindInviteUsed, "Invite token has already been used")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain error", errors.New("boom"), KindInternal},
		{"kinded", used, KindInviteUsed},
		{"wrapped kinded", fmt.Errorf("register: %w", used), KindInviteUsed},
		{"nil", nil, KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIs_MatchesByKindAndMessage(t *testing.T) {
	sentinel := New(KindTokenExpired, "token expired")
	wrapped := Wrap(KindTokenExpired, "token expired", errors.New("at 12:00"))

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(New(KindTokenNotFound, "token expired"), sentinel))
	assert.Equal(t, "token expired: at 12:00", wrapped.Error())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Email already exists", Message(New(KindEmailTaken, "Email already exists"), "failed"))
	assert.Equal(t, "failed", Message(errors.New("pq: connection refused"), "failed"))
	assert.Equal(t, "failed", Message(Wrap(KindInternal, "db down", errors.New("x")), "failed"))
	assert.Equal(t, "invite_used", KindInviteUsed.String())
}
