package user

import (
	"net/mail"
	"strings"
	"time"

	"moviecatalog/errs"
)

const MinPasswordLength = 6

var (
	ErrInvalidUsername    = errs.Errorf(errs.EINVALID, "user: invalid username")
	ErrInvalidEmail       = errs.Errorf(errs.EINVALID, "user: invalid email")
	ErrInvalidPassword    = errs.Errorf(errs.EINVALID, "user: invalid password")
	ErrUserIDRequired     = errs.Errorf(errs.EINVALID, "user: id is required")
	ErrUserNotFound       = errs.Errorf(errs.ENOTFOUND, "User not found")
	ErrEmailAlreadyExists = errs.Errorf(errs.ECONFLICT, "User already exists")
)

// User is an API account. Password only carries the plain text value on its
// way to the hasher; stores persist PasswordHash.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrInvalidUsername
	}

	if err := validateEmail(strings.TrimSpace(u.Email)); err != nil {
		return err
	}

	if len(strings.TrimSpace(u.Password)) < MinPasswordLength {
		return ErrInvalidPassword
	}

	return nil
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}
