package identity

import (
	"context"
	"fmt"

	"github.com/adampresley/weddinggallery/pkg/models"
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
)

/*
Provider signs an operator in with email and password. Bad credentials
are reported as ErrInvalidCredentials so callers can tell them apart
from transport failures.
*/
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*models.Admin, error)
}
