package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain", "Alice", "Alice", nil},
		{"trimmed", "  Bob \n", "Bob", nil},
		{"empty", "", "", ErrUsernameEmpty},
		{"only spaces", "   ", "", ErrUsernameEmpty},
		{"too long", strings.Repeat("a", MaxUsernameLen+1), "", ErrUsernameTooLong},
		{"at limit", strings.Repeat("a", MaxUsernameLen), strings.Repeat("a", MaxUsernameLen), nil},
		{"multibyte at limit", strings.Repeat("名", MaxUsernameLen), strings.Repeat("名", MaxUsernameLen), nil},
		{"multibyte too long", strings.Repeat("é", MaxUsernameLen+1), "", ErrUsernameTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got, err := NormalizeName(tt.input)
			if tt.wantErr != nil {
				req.ErrorIs(err, tt.wantErr)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, got)
		})
	}
}

func TestNewAccount(t *testing.T) {
	req := require.New(t)
	acc, err := NewAccount(" Alice ", "alice@example.com", "hash")
	req.NoError(err)
	req.Equal("Alice", acc.Name)
	req.NotEmpty(acc.ID)

	_, err = NewAccount("", "x@example.com", "hash")
	req.ErrorIs(err, ErrUsernameEmpty)
}
