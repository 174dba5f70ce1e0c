// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type UserID string

// Account is a registered user as seen by the identity adapter.
type Account struct {
	ID           UserID `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// NewAccount is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewAccount(name, email, passwordHash string) (*Account, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	id := UserID(uuid.NewString())
	return &Account{ID: id, Name: name, Email: email, PasswordHash: passwordHash}, nil
}

// NormalizeName trims a display name and checks its length in runes.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return "", ErrUsernameEmpty
	}
	if utf8.RuneCountInString(name) > MaxUsernameLen {
		return "", ErrUsernameTooLong
	}
	return name, nil
}
