package services

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,32}$`)
	passwordPattern = regexp.MustCompile(`^[ -~]{8,64}$`)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{common.ErrValidation}, args...)...)
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("invalid email")
	}
	return nil
}

func validatePassword(password string) error {
	if !passwordPattern.MatchString(password) {
		return invalid("password must be 8 to 64 printable ASCII characters")
	}
	return nil
}

func validateProfile(upd models.ProfileUpdate) error {
	if err := validateEmail(upd.Email); err != nil {
		return err
	}
	if !usernamePattern.MatchString(upd.UserName) {
		return invalid("username must be 3 to 32 letters, digits, '_' or '.'")
	}
	if n := utf8.RuneCountInString(upd.DisplayName); n > 50 {
		return invalid("display name is too long")
	}
	return nil
}

func validateTitle(title string, max int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n == 0 {
		return invalid("title is required")
	}
	if n > max {
		return invalid("title is too long")
	}
	return nil
}

func validateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > 1000 {
		return invalid("description is too long")
	}
	return nil
}
