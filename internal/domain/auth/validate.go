package auth

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	apperrors "github.com/yanqian/skinscan/pkg/errors"
)

const (
	maxDisplayName    = 40
	minPasswordLength = 8
)

// normalize checks a registration and returns the account to store, without
// its password hash.
func (req RegisterRequest) normalize() (Clinician, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return Clinician{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid email address", err)
	}
	name, err := normalizeDisplayName(req.DisplayName)
	if err != nil {
		return Clinician{}, invalidInput(err)
	}
	if len(req.Password) < minPasswordLength {
		return Clinician{}, invalidInput(fmt.Errorf("password must be at least %d characters", minPasswordLength))
	}
	role, err := ParseRole(strings.TrimSpace(string(req.Role)))
	if err != nil {
		return Clinician{}, invalidInput(err)
	}
	return Clinician{Email: email, DisplayName: name, Role: role}, nil
}

func invalidInput(err error) error {
	return apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errors.New("email cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", err
	}
	return email, nil
}

// normalizeDisplayName collapses inner whitespace; names hold letters and spaces only.
func normalizeDisplayName(raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	switch {
	case name == "":
		return "", errors.New("display name cannot be empty")
	case len([]rune(name)) > maxDisplayName:
		return "", fmt.Errorf("display name cannot exceed %d characters", maxDisplayName)
	case strings.ContainsFunc(name, func(r rune) bool { return !unicode.IsLetter(r) && r != ' ' }):
		return "", errors.New("display name must contain only letters and spaces")
	}
	return name, nil
}
