package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultFirebaseEndpoint = "https://identitytoolkit.googleapis.com"
)

var invalidCredentialCodes = []string{
	"EMAIL_NOT_FOUND",
	"INVALID_PASSWORD",
	"INVALID_LOGIN_CREDENTIALS",
	"INVALID_EMAIL",
	"USER_DISABLED",
}

type FirebaseProviderConfig struct {
	ApiKey   string
	Endpoint string
	Timeout  time.Duration
}

/*
FirebaseProvider signs in against the Identity Toolkit REST API with
email and password.
*/
type FirebaseProvider struct {
	apiKey string
	client *resty.Client
}

type firebaseSignInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type firebaseSignInResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type firebaseErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewFirebaseProvider(config FirebaseProviderConfig) FirebaseProvider {
	if config.Endpoint == "" {
		config.Endpoint = DefaultFirebaseEndpoint
	}

	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(config.Endpoint, "/")).
		SetTimeout(config.Timeout)

	return FirebaseProvider{
		apiKey: config.ApiKey,
		client: client,
	}
}

func (p FirebaseProvider) SignIn(ctx context.Context, email, password string) (*models.Admin, error) {
	var (
		result    firebaseSignInResponse
		errResult firebaseErrorResponse
	)

	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	response, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetBody(firebaseSignInRequest{Email: email, Password: password, ReturnSecureToken: true}).
		SetResult(&result).
		SetError(&errResult).
		Post("/v1/accounts:signInWithPassword")

	if err != nil {
		return nil, fmt.Errorf("error calling identity service: %w", err)
	}

	if response.IsError() {
		message := errResult.Error.Message

		for _, code := range invalidCredentialCodes {
			if strings.HasPrefix(message, code) {
				return nil, ErrInvalidCredentials
			}
		}

		return nil, fmt.Errorf("identity service returned %d: %s", response.StatusCode(), message)
	}

	if result.LocalID == "" {
		return nil, fmt.Errorf("identity service returned no user id")
	}

	return &models.Admin{
		UID:   result.LocalID,
		Email: result.Email,
	}, nil
}
