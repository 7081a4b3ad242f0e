package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/alitto/pond/v2"
)

const (
	DefaultMaxParallelDeletes = 10
)

type DeleteServicer interface {
	DeleteAll(ctx context.Context) (int, error)
	DeleteOne(ctx context.Context, id string) error
	DeleteSelected(ctx context.Context, selection *models.Selection) (int, error)
}

type DeleteServiceConfig struct {
	MaxConcurrency int
	PhotoStore     PhotoStorer
}

type DeleteService struct {
	maxConcurrency int
	photoStore     PhotoStorer
}

func NewDeleteService(config DeleteServiceConfig) DeleteService {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultMaxParallelDeletes
	}

	return DeleteService{
		maxConcurrency: config.MaxConcurrency,
		photoStore:     config.PhotoStore,
	}
}

func (s DeleteService) DeleteOne(ctx context.Context, id string) error {
	return s.photoStore.Delete(ctx, id)
}

// DeleteSelected removes the whole selection in one atomic batch.
func (s DeleteService) DeleteSelected(ctx context.Context, selection *models.Selection) (int, error) {
	if selection == nil || selection.Len() == 0 {
		return 0, nil
	}

	ids := selection.IDs()

	if err := s.photoStore.DeleteMany(ctx, ids); err != nil {
		return 0, fmt.Errorf("error deleting %d selected photos: %w", len(ids), err)
	}

	return len(ids), nil
}

/*
DeleteAll reads every photo and deletes them one record at a time
through a bounded pool. It returns how many deletes succeeded along
with every delete error joined together.
*/
func (s DeleteService) DeleteAll(ctx context.Context) (int, error) {
	var (
		err     error
		photos  []*models.Photo
		mu      sync.Mutex
		deleted int
		errs    []error
	)

	if photos, err = s.photoStore.GetAll(ctx); err != nil {
		return 0, fmt.Errorf("error reading photos to delete: %w", err)
	}

	if len(photos) == 0 {
		return 0, nil
	}

	pool := pond.NewPool(min(s.maxConcurrency, len(photos)), pond.WithContext(ctx))

	for _, photo := range photos {
		pool.Submit(func() {
			err := s.photoStore.Delete(ctx, photo.ID)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				errs = append(errs, err)
				return
			}

			deleted++
		})
	}

	_ = pool.Stop().Wait()

	slog.Info("deleted all photos", "requested", len(photos), "deleted", deleted, "failed", len(errs))
	return deleted, errors.Join(errs...)
}
