package services

import (
	"context"
	"fmt"
	"time"

	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/rfberaldo/sqlz"
)

/*
PhotoField is a column the store can filter on with an equality
match.
*/
type PhotoField string

const (
	PhotoFieldClientSlug PhotoField = "client_slug"
	PhotoFieldAlbum      PhotoField = "album"
)

type PhotoStorer interface {
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
	GetAll(ctx context.Context) ([]*models.Photo, error)
	GetAllURLs(ctx context.Context) ([]string, error)
	GetByClient(ctx context.Context, clientSlug string) ([]*models.Photo, error)
	GetWhere(ctx context.Context, field PhotoField, value string) ([]*models.Photo, error)
	Insert(ctx context.Context, photo *models.Photo) error
	InsertMany(ctx context.Context, photos []*models.Photo) error
	MaxOrder(ctx context.Context) (int, error)
	UpdateOrders(ctx context.Context, updates []models.OrderUpdate) error
}

type PhotoServiceConfig struct {
	DB *sqlz.DB
}

type PhotoService struct {
	db *sqlz.DB
}

const photoColumns = `
   p.id
   , p.url
   , p.client_slug
   , p.album
   , p.sort_order
   , p.timestamp_ms
`

func NewPhotoService(config PhotoServiceConfig) PhotoService {
	return PhotoService{
		db: config.DB,
	}
}

func (s PhotoService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if _, err := s.db.Exec(ctx, `DELETE FROM photos WHERE id=?`, id); err != nil {
		return fmt.Errorf("error deleting photo %s: %w", id, err)
	}

	return nil
}

/*
DeleteMany removes every id in one transaction. Ids that do not exist
are ignored.
*/
func (s PhotoService) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	return s.inTx(ctx, func(tx *sqlz.Tx) error {
		for _, id := range ids {
			if _, err := tx.Exec(ctx, `DELETE FROM photos WHERE id=?`, id); err != nil {
				return fmt.Errorf("error deleting photo %s: %w", id, err)
			}
		}

		return nil
	})
}

func (s PhotoService) GetAll(ctx context.Context) ([]*models.Photo, error) {
	var (
		err error
	)

	result := []*models.Photo{}

	sql := `
SELECT` + photoColumns + `
FROM photos AS p
ORDER BY p.timestamp_ms DESC
`

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &result, sql); err != nil {
		return result, fmt.Errorf("error querying for all photos: %w", err)
	}

	return result, nil
}

func (s PhotoService) GetAllURLs(ctx context.Context) ([]string, error) {
	var (
		err error
	)

	result := []string{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &result, `SELECT url FROM photos`); err != nil {
		return result, fmt.Errorf("error querying for photo URLs: %w", err)
	}

	return result, nil
}

func (s PhotoService) GetByClient(ctx context.Context, clientSlug string) ([]*models.Photo, error) {
	return s.GetWhere(ctx, PhotoFieldClientSlug, models.NormalizeSlug(clientSlug))
}

func (s PhotoService) GetWhere(ctx context.Context, field PhotoField, value string) ([]*models.Photo, error) {
	var (
		err error
	)

	result := []*models.Photo{}

	switch field {
	case PhotoFieldClientSlug, PhotoFieldAlbum:
	default:
		return result, fmt.Errorf("cannot filter photos by '%s'", field)
	}

	sql := `
SELECT` + photoColumns + `
FROM photos AS p
WHERE 1=1
   AND p.` + string(field) + `=?
ORDER BY p.timestamp_ms DESC
`

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &result, sql, value); err != nil {
		return result, fmt.Errorf("error querying for photos by %s '%s': %w", field, value, err)
	}

	return result, nil
}

func (s PhotoService) Insert(ctx context.Context, photo *models.Photo) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if _, err := s.db.Exec(ctx, insertPhotoSql, insertPhotoParams(photo)...); err != nil {
		return fmt.Errorf("error inserting photo %s: %w", photo.URL, err)
	}

	return nil
}

/*
InsertMany writes all photos in one transaction. Either every row is
visible afterwards or none is.
*/
func (s PhotoService) InsertMany(ctx context.Context, photos []*models.Photo) error {
	if len(photos) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	return s.inTx(ctx, func(tx *sqlz.Tx) error {
		for _, photo := range photos {
			if _, err := tx.Exec(ctx, insertPhotoSql, insertPhotoParams(photo)...); err != nil {
				return fmt.Errorf("error inserting photo %s: %w", photo.URL, err)
			}
		}

		return nil
	})
}

func (s PhotoService) MaxOrder(ctx context.Context) (int, error) {
	var (
		err      error
		maxOrder int
	)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &maxOrder, `SELECT COALESCE(MAX(sort_order), 0) FROM photos`); err != nil {
		return 0, fmt.Errorf("error querying for max photo order: %w", err)
	}

	return maxOrder, nil
}

/*
UpdateOrders rewrites sort_order for every update in one transaction.
A missing photo fails the whole batch with ErrPhotoNotFound.
*/
func (s PhotoService) UpdateOrders(ctx context.Context, updates []models.OrderUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	return s.inTx(ctx, func(tx *sqlz.Tx) error {
		for _, update := range updates {
			result, err := tx.Exec(ctx, `UPDATE photos SET sort_order=? WHERE id=?`, update.Order, update.ID)

			if err != nil {
				return fmt.Errorf("error updating order for photo %s: %w", update.ID, err)
			}

			if affected, err := result.RowsAffected(); err == nil && affected == 0 {
				return fmt.Errorf("error updating order for photo %s: %w", update.ID, models.ErrPhotoNotFound)
			}
		}

		return nil
	})
}

func (s PhotoService) inTx(ctx context.Context, fn func(tx *sqlz.Tx) error) error {
	tx, err := s.db.Begin(ctx)

	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

const insertPhotoSql = `
INSERT INTO photos (
   id,
   url,
   client_slug,
   album,
   sort_order,
   timestamp_ms
) VALUES (?, ?, ?, ?, ?, ?)
`

func insertPhotoParams(photo *models.Photo) []any {
	var order any

	if photo.Order != nil {
		order = *photo.Order
	}

	return []any{
		photo.ID,
		photo.URL,
		photo.ClientSlug,
		photo.Album,
		order,
		photo.Timestamp,
	}
}
