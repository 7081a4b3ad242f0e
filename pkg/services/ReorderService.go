package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adampresley/weddinggallery/pkg/models"
)

const (
	ReorderFailedWarning = "Could not save the new order. The list was reloaded."
)

type ReorderServicer interface {
	ApplyOrder(ctx context.Context, current []*models.Photo, orderedIDs []string, reload ReloadFunc) (ReorderOutcome, error)
	Move(ctx context.Context, current []*models.Photo, activeID, overID string, reload ReloadFunc) (ReorderOutcome, error)
	Persist(ctx context.Context, photos []*models.Photo) error
}

// ReloadFunc reads the authoritative photo list from the store.
type ReloadFunc func(ctx context.Context) ([]*models.Photo, error)

/*
ReorderOutcome is what the admin view should show after a reorder.
When Reconciled is true the requested order could not be saved and
Photos holds a fresh read from the store.
*/
type ReorderOutcome struct {
	Photos     []*models.Photo
	Changed    bool
	Reconciled bool
	Warning    string
}

type ReorderServiceConfig struct {
	PhotoStore PhotoStorer
}

type ReorderService struct {
	photoStore PhotoStorer
}

func NewReorderService(config ReorderServiceConfig) ReorderService {
	return ReorderService{
		photoStore: config.PhotoStore,
	}
}

// Persist sets order to each photo's position in one atomic write.
func (s ReorderService) Persist(ctx context.Context, photos []*models.Photo) error {
	updates := make([]models.OrderUpdate, 0, len(photos))

	for index, photo := range photos {
		updates = append(updates, models.OrderUpdate{ID: photo.ID, Order: index})
	}

	if err := s.photoStore.UpdateOrders(ctx, updates); err != nil {
		return fmt.Errorf("error persisting order for %d photos: %w", len(photos), err)
	}

	return nil
}

/*
Move handles a single drag and drop of activeID onto overID. Dropping
a photo on itself is a no-op and nothing is written.
*/
func (s ReorderService) Move(ctx context.Context, current []*models.Photo, activeID, overID string, reload ReloadFunc) (ReorderOutcome, error) {
	oldIndex := indexOfPhoto(current, activeID)
	newIndex := indexOfPhoto(current, overID)

	if activeID == overID || oldIndex < 0 || newIndex < 0 {
		return ReorderOutcome{Photos: current}, nil
	}

	return s.commit(ctx, arrayMove(current, oldIndex, newIndex), reload)
}

/*
ApplyOrder handles a full permutation of the current list. Unknown ids
are dropped and photos missing from orderedIDs keep their relative
order after the listed ones.
*/
func (s ReorderService) ApplyOrder(ctx context.Context, current []*models.Photo, orderedIDs []string, reload ReloadFunc) (ReorderOutcome, error) {
	byID := make(map[string]*models.Photo, len(current))

	for _, p := range current {
		byID[p.ID] = p
	}

	next := make([]*models.Photo, 0, len(current))
	seen := make(map[string]bool, len(current))

	for _, id := range orderedIDs {
		if p, ok := byID[id]; ok && !seen[id] {
			next = append(next, p)
			seen[id] = true
		}
	}

	for _, p := range current {
		if !seen[p.ID] {
			next = append(next, p)
		}
	}

	if sameOrder(current, next) {
		return ReorderOutcome{Photos: current}, nil
	}

	return s.commit(ctx, next, reload)
}

/*
commit persists next with order set to each index. When the write fails
the store's order is returned instead, with a warning.
*/
func (s ReorderService) commit(ctx context.Context, next []*models.Photo, reload ReloadFunc) (ReorderOutcome, error) {
	optimistic := applyPositions(next)

	if err := s.Persist(ctx, optimistic); err != nil {
		slog.Error("error saving photo order, reconciling from store", "error", err)
		return s.Reconcile(ctx, reload)
	}

	return ReorderOutcome{Photos: optimistic, Changed: true}, nil
}

func (s ReorderService) Reconcile(ctx context.Context, reload ReloadFunc) (ReorderOutcome, error) {
	if reload == nil {
		reload = s.photoStore.GetAll
	}

	photos, err := reload(ctx)

	if err != nil {
		return ReorderOutcome{}, fmt.Errorf("error reloading photos after failed reorder: %w", err)
	}

	models.SortPhotos(photos)

	return ReorderOutcome{
		Photos:     photos,
		Reconciled: true,
		Warning:    ReorderFailedWarning,
	}, nil
}

func indexOfPhoto(photos []*models.Photo, id string) int {
	for index, p := range photos {
		if p.ID == id {
			return index
		}
	}

	return -1
}

func arrayMove(photos []*models.Photo, from, to int) []*models.Photo {
	result := make([]*models.Photo, 0, len(photos))
	result = append(result, photos[:from]...)
	result = append(result, photos[from+1:]...)

	moved := photos[from]
	result = append(result[:to], append([]*models.Photo{moved}, result[to:]...)...)
	return result
}

// applyPositions copies the photos with order set to their index.
func applyPositions(photos []*models.Photo) []*models.Photo {
	result := make([]*models.Photo, 0, len(photos))

	for index, p := range photos {
		order := index
		copied := *p
		copied.Order = &order
		result = append(result, &copied)
	}

	return result
}

func sameOrder(a, b []*models.Photo) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}

	return true
}
