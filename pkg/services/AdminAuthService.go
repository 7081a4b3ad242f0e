package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adampresley/weddinggallery/pkg/identity"
	"github.com/adampresley/weddinggallery/pkg/models"
)

var (
	ErrLoginLocked = fmt.Errorf("too many sign-in attempts")
)

/*
LoginError carries the throttle state of a failed sign-in so the login
page can tell the operator how many attempts are left.
*/
type LoginError struct {
	Err         error
	Attempts    int
	MaxAttempts int
	RetryAfter  time.Duration
}

func (e *LoginError) Error() string {
	return e.Err.Error()
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

type AdminAuthServicer interface {
	SignIn(ctx context.Context, key, email, password string) (*models.Admin, error)
}

type AdminAuthServiceConfig struct {
	Provider identity.Provider
	Throttle *LoginThrottle
}

type AdminAuthService struct {
	provider identity.Provider
	throttle *LoginThrottle
}

func NewAdminAuthService(config AdminAuthServiceConfig) AdminAuthService {
	if config.Throttle == nil {
		config.Throttle = NewLoginThrottle(LoginThrottleConfig{})
	}

	return AdminAuthService{
		provider: config.Provider,
		throttle: config.Throttle,
	}
}

/*
SignIn checks the throttle before contacting the identity provider. A
locked key is rejected without a provider call.
*/
func (s AdminAuthService) SignIn(ctx context.Context, key, email, password string) (*models.Admin, error) {
	var (
		err   error
		admin *models.Admin
	)

	if locked, remaining := s.throttle.Locked(key); locked {
		return nil, &LoginError{Err: ErrLoginLocked, MaxAttempts: s.throttle.MaxAttempts(), RetryAfter: remaining}
	}

	admin, err = s.provider.SignIn(ctx, strings.TrimSpace(email), password)

	if err == nil {
		s.throttle.RecordSuccess(key)
		return admin, nil
	}

	if !errors.Is(err, identity.ErrInvalidCredentials) {
		return nil, fmt.Errorf("error contacting identity provider: %w", err)
	}

	failures, locked := s.throttle.RecordFailure(key)
	slog.Warn("failed admin sign-in", "key", key, "attempts", failures, "locked", locked)

	if locked {
		_, remaining := s.throttle.Locked(key)
		return nil, &LoginError{Err: ErrLoginLocked, Attempts: failures, MaxAttempts: s.throttle.MaxAttempts(), RetryAfter: remaining}
	}

	return nil, &LoginError{Err: identity.ErrInvalidCredentials, Attempts: failures, MaxAttempts: s.throttle.MaxAttempts()}
}
