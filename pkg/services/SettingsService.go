package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/rfberaldo/sqlz"
)

const headerSettingsKey = "header"

type SettingsServicer interface {
	GetHeader(ctx context.Context) (models.HeaderSettings, error)
	SaveHeader(ctx context.Context, title, backgroundURL string) (models.HeaderSettings, error)
}

type SettingsServiceConfig struct {
	DB  *sqlz.DB
	Now func() time.Time
}

type SettingsService struct {
	db  *sqlz.DB
	now func() time.Time
}

func NewSettingsService(config SettingsServiceConfig) SettingsService {
	now := config.Now

	if now == nil {
		now = time.Now
	}

	return SettingsService{
		db:  config.DB,
		now: now,
	}
}

// GetHeader returns the saved header, or the defaults when nothing was saved yet.
func (s SettingsService) GetHeader(ctx context.Context) (models.HeaderSettings, error) {
	var (
		err error
	)

	result := models.HeaderSettings{}

	sql := `
SELECT
   s.title
   , s.background_url
   , s.updated_at
FROM settings AS s
WHERE 1=1
   AND s.setting_key=?
`

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &result, sql, headerSettingsKey); err != nil {
		if sqlz.IsNotFound(err) {
			return models.HeaderSettings{Title: models.DefaultHeaderTitle}, nil
		}

		return result, fmt.Errorf("error querying for header settings: %w", err)
	}

	if result.Title == "" {
		result.Title = models.DefaultHeaderTitle
	}

	return result, nil
}

// SaveHeader overwrites the header record wholesale.
func (s SettingsService) SaveHeader(ctx context.Context, title, backgroundURL string) (models.HeaderSettings, error) {
	result := models.HeaderSettings{
		Title:         strings.TrimSpace(title),
		BackgroundURL: strings.TrimSpace(backgroundURL),
		UpdatedAt:     s.now().UnixMilli(),
	}

	sql := `
INSERT INTO settings (
   setting_key,
   title,
   background_url,
   updated_at
) VALUES (?, ?, ?, ?)
ON CONFLICT(setting_key) DO UPDATE SET
   title=excluded.title,
   background_url=excluded.background_url,
   updated_at=excluded.updated_at
`

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if _, err := s.db.Exec(ctx, sql, headerSettingsKey, result.Title, result.BackgroundURL, result.UpdatedAt); err != nil {
		return result, fmt.Errorf("error saving header settings: %w", err)
	}

	return result, nil
}
