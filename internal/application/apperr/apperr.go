// Package apperr holds the closed set of error kinds returned by the service
// layer. Transport adapters translate a Kind into a status code; they never
// inspect error messages.
package apperr

import "errors"

type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindInviteInvalid
	KindInviteUsed
	KindInviteExpired
	KindUsernameTaken
	KindEmailTaken
	KindTokenNotFound
	KindTokenExpired
	KindUnsupportedMedia
	KindTooLarge
)

var kindNames = map[Kind]string{
	KindInternal:         "internal",
	KindValidation:       "validation",
	KindNotFound:         "not_found",
	KindUnauthorized:     "unauthorized",
	KindForbidden:        "forbidden",
	KindInviteInvalid:    "invite_invalid",
	KindInviteUsed:       "invite_used",
	KindInviteExpired:    "invite_expired",
	KindUsernameTaken:    "username_taken",
	KindEmailTaken:       "email_taken",
	KindTokenNotFound:    "token_not_found",
	KindTokenExpired:     "token_expired",
	KindUnsupportedMedia: "unsupported_media",
	KindTooLarge:         "too_large",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

// Wrap attaches a cause to a kind. The message stays user-facing; the cause
// is only visible through Unwrap.
func Wrap(kind Kind, msg string, err error) *Error { return &Error{Kind: kind, Msg: msg, Err: err} }

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors by kind and message, so a wrapped copy of a
// sentinel still satisfies errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Msg == t.Msg
}

// KindOf returns KindInternal for errors that carry no kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message of a kinded error, or fallback.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}
	return fallback
}
