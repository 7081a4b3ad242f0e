package identity

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/adampresley/weddinggallery/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

type StaticProviderConfig struct {
	Email        string
	PasswordHash string
}

// StaticProvider checks a single configured admin against a bcrypt hash.
type StaticProvider struct {
	email        string
	passwordHash []byte
}

func NewStaticProvider(config StaticProviderConfig) StaticProvider {
	return StaticProvider{
		email:        strings.ToLower(strings.TrimSpace(config.Email)),
		passwordHash: []byte(config.PasswordHash),
	}
}

func (p StaticProvider) SignIn(ctx context.Context, email, password string) (*models.Admin, error) {
	if p.email == "" || len(p.passwordHash) == 0 {
		return nil, ErrInvalidCredentials
	}

	normalized := strings.ToLower(strings.TrimSpace(email))

	if subtle.ConstantTimeCompare([]byte(normalized), []byte(p.email)) != 1 {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(p.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &models.Admin{
		UID:   "static:" + p.email,
		Email: p.email,
	}, nil
}
