package services

import "palmr-api/internal/application/apperr"

var (
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "invalid credentials")
	ErrUserInactive       = apperr.New(apperr.KindForbidden, "user is inactive")
	ErrUserNotFound       = apperr.New(apperr.KindNotFound, "user not found")

	ErrTokenNotFound = apperr.New(apperr.KindTokenNotFound, "File not found or link is invalid")
	ErrTokenExpired  = apperr.New(apperr.KindTokenExpired, "Link has expired")

	ErrInviteInvalid = apperr.New(apperr.KindInviteInvalid, "Invalid invite token")
	ErrInviteUsed    = apperr.New(apperr.KindInviteUsed, "Invite token has already been used")
	ErrInviteExpired = apperr.New(apperr.KindInviteExpired, "Invite token has expired")
	ErrUsernameTaken = apperr.New(apperr.KindUsernameTaken, "Username already exists")
	ErrEmailTaken    = apperr.New(apperr.KindEmailTaken, "Email already exists")

	ErrObjectOutsidePrefix = apperr.New(apperr.KindForbidden, "object name is outside your storage prefix")
	ErrFileTooLarge        = apperr.New(apperr.KindTooLarge, "file exceeds the maximum allowed size")
	ErrInvalidFileSize     = apperr.New(apperr.KindValidation, "file size must not be negative")
	ErrFileNameRequired    = apperr.New(apperr.KindValidation, "file name is required")
	ErrFileNotFound        = apperr.New(apperr.KindNotFound, "file not found")
	ErrFileRegistered      = apperr.New(apperr.KindValidation, "file is already registered")

	ErrUnsupportedImage = apperr.New(apperr.KindUnsupportedMedia, "unsupported image format: only PNG, JPEG, GIF and WEBP are accepted")
	ErrImageTooLarge    = apperr.New(apperr.KindTooLarge, "image is too large")
	ErrInvalidImage     = apperr.New(apperr.KindValidation, "image could not be decoded")
)
