package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/google/uuid"
)

var (
	ErrEmptyClientSlug = fmt.Errorf("client slug is required")
	ErrUnknownAlbum    = fmt.Errorf("unknown album")
)

type BatchCommitter interface {
	Commit(ctx context.Context, urls []string, clientSlug, album string) ([]*models.Photo, error)
}

type BatchCommitterConfig struct {
	Now         func() time.Time
	PhotoStore  PhotoStorer
	NewID       func() string
	CommitMutex *sync.Mutex
}

type BatchCommitterService struct {
	mu         *sync.Mutex
	newID      func() string
	now        func() time.Time
	photoStore PhotoStorer
}

func NewBatchCommitter(config BatchCommitterConfig) BatchCommitterService {
	result := BatchCommitterService{
		mu:         config.CommitMutex,
		newID:      config.NewID,
		now:        config.Now,
		photoStore: config.PhotoStore,
	}

	if result.mu == nil {
		result.mu = &sync.Mutex{}
	}

	if result.newID == nil {
		result.newID = func() string { return uuid.New().String() }
	}

	if result.now == nil {
		result.now = time.Now
	}

	return result
}

/*
Commit creates one photo record per URL in a single atomic write. The
i-th URL gets order baseOrder+i+1 and timestamp commitInstant+i, where
baseOrder is the highest order currently stored. Commits are
serialized so two uploads never read the same baseOrder.
*/
func (c BatchCommitterService) Commit(ctx context.Context, urls []string, clientSlug, album string) ([]*models.Photo, error) {
	var (
		err       error
		baseOrder int
	)

	slug := models.NormalizeSlug(clientSlug)

	if slug == "" {
		return nil, ErrEmptyClientSlug
	}

	if !models.IsValidAlbum(album) {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownAlbum, album)
	}

	if len(urls) == 0 {
		return []*models.Photo{}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if baseOrder, err = c.photoStore.MaxOrder(ctx); err != nil {
		return nil, fmt.Errorf("error reading current max order: %w", err)
	}

	commitInstant := c.now().UnixMilli()
	photos := make([]*models.Photo, 0, len(urls))

	for i, url := range urls {
		order := baseOrder + i + 1

		photos = append(photos, &models.Photo{
			ID:         c.newID(),
			URL:        url,
			ClientSlug: slug,
			Album:      album,
			Order:      &order,
			Timestamp:  commitInstant + int64(i),
		})
	}

	if err = c.photoStore.InsertMany(ctx, photos); err != nil {
		return nil, fmt.Errorf("error committing %d photos for client '%s': %w", len(photos), slug, err)
	}

	slog.Info("committed photo batch", "clientSlug", slug, "album", album, "count", len(photos), "baseOrder", baseOrder)
	return photos, nil
}
