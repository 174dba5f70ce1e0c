// Package identity is an in-memory stand-in for the account service:
// it registers users, issues signed tokens and verifies them back into
// the display name the chat core needs at join time.
package identity

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUserExists         = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=36"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Service struct {
	mu       sync.RWMutex
	byEmail  map[string]*domain.Account
	validate *validator.Validate
	tokens   *TokenIssuer

	// Cost is the bcrypt work factor used for new accounts.
	Cost int
}

var (
	_ core.IdentityVerifier = (*Service)(nil)
	_ core.Directory        = (*Service)(nil)
)

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		byEmail:  make(map[string]*domain.Account),
		validate: validator.New(),
		tokens:   NewTokenIssuer(secret, ttl),
		Cost:     bcrypt.DefaultCost,
	}
}

func (s *Service) Register(_ context.Context, req RegisterRequest) (*domain.Account, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.Cost)
	if err != nil {
		return nil, fmt.Errorf("hashing failed: %w", err)
	}
	acc, err := domain.NewAccount(req.Name, email, string(hash))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return nil, ErrUserExists
	}
	s.byEmail[email] = acc
	log.Info().Str("module", "identity").Str("user", string(acc.ID)).Msg("registered")
	return acc, nil
}

// Login checks the password and returns a signed token. Unknown email and
// wrong password give the same error.
func (s *Service) Login(_ context.Context, req LoginRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.RLock()
	acc, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(acc)
}

func (s *Service) Verify(_ context.Context, token string) (core.Identity, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return core.Identity{}, err
	}
	return core.Identity{UserID: domain.UserID(claims.Subject), Name: claims.Name}, nil
}

// ListKnownUsers returns the names of every registered account, sorted.
func (s *Service) ListKnownUsers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := lo.MapToSlice(s.byEmail, func(_ string, acc *domain.Account) string {
		return acc.Name
	})
	slices.Sort(names)
	return names, nil
}
