package validator

import (
	"errors"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"palmr-api/internal/interface/api/rest/dto/auth"
	"palmr-api/internal/interface/api/rest/dto/file"
	"palmr-api/internal/interface/api/rest/dto/invite"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt safe
	maxNameLen     = 255
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9._-]{3,30}$`)
)

func ValidatePage(page string) (int, error) {
	if page == "" {
		return 1, nil
	}

	p, err := strconv.Atoi(page)
	if err != nil || p < 1 {
		return 0, errors.New("invalid page")
	}
	return p, nil
}

func IsUUID(s string) (bool, uuid.UUID) {
	id, err := uuid.Parse(s)
	return err == nil, id
}

func isHumanName(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\'' {
			continue
		}
		return false
	}
	return true
}

func validatePassword(errs map[string]string, password string) {
	if strings.TrimSpace(password) == "" {
		errs["password"] = "password is required"
	} else if l := utf8.RuneCountInString(password); l < minPasswordLen || l > maxPasswordLen {
		errs["password"] = "password length must be 8–72 characters"
	}
}

func result(errs map[string]string) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ValidateLogin(r auth.LoginRequest) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(r.Login) == "" {
		errs["login"] = "login is required"
	}
	// length is not checked on login; bcrypt decides
	if r.Password == "" {
		errs["password"] = "password is required"
	}

	return result(errs)
}

func ValidateRegister(r invite.RegisterRequest) map[string]string {
	errs := make(map[string]string)

	// Normalize
	email := strings.ToLower(strings.TrimSpace(r.Email))
	username := strings.TrimSpace(r.Username)
	first := strings.TrimSpace(r.FirstName)
	last := strings.TrimSpace(r.LastName)

	if strings.TrimSpace(r.Token) == "" {
		errs["token"] = "token is required"
	}

	if username == "" {
		errs["username"] = "username is required"
	} else if !usernameRe.MatchString(username) {
		errs["username"] = "username must be 3–30 characters: letters, digits, '.', '_', '-'"
	}

	if email == "" {
		errs["email"] = "email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "invalid email format"
	}

	validatePassword(errs, r.Password)

	if first == "" {
		errs["firstName"] = "firstName is required"
	} else if l := utf8.RuneCountInString(first); l > 64 {
		errs["firstName"] = "firstName must be at most 64 characters"
	} else if !isHumanName(first) {
		errs["firstName"] = "allowed characters: letters, space, '-', '''"
	}

	if last == "" {
		errs["lastName"] = "lastName is required"
	} else if l := utf8.RuneCountInString(last); l > 64 {
		errs["lastName"] = "lastName must be at most 64 characters"
	} else if !isHumanName(last) {
		errs["lastName"] = "allowed characters: letters, space, '-', '''"
	}

	return result(errs)
}

func ValidateUploadURL(r file.UploadURLRequest) map[string]string {
	errs := make(map[string]string)

	if r.Size < 0 {
		errs["size"] = "size must not be negative"
	}
	if utf8.RuneCountInString(r.FileName) > maxNameLen {
		errs["fileName"] = "fileName must be at most 255 characters"
	}

	return result(errs)
}

func ValidateRegisterFile(r file.RegisterRequest) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "name is required"
	} else if utf8.RuneCountInString(r.Name) > maxNameLen {
		errs["name"] = "name must be at most 255 characters"
	}
	if strings.TrimSpace(r.ObjectName) == "" {
		errs["objectName"] = "objectName is required"
	}
	if r.Size < 0 {
		errs["size"] = "size must not be negative"
	}
	if r.FolderID != nil {
		if ok, _ := IsUUID(*r.FolderID); !ok {
			errs["folderId"] = "folderId must be a valid UUID"
		}
	}

	return result(errs)
}
