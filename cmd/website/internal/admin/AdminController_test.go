package admin

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/adampresley/weddinggallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/adampresley/weddinggallery/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingRenderer struct {
	name string
	data any
}

func (r *capturingRenderer) Render(templateName string, data any, w io.Writer) error {
	r.name = templateName
	r.data = data
	return nil
}

func (r *capturingRenderer) RenderString(templateString string, data any, w io.Writer) error {
	return nil
}

func (r *capturingRenderer) dashboard(t *testing.T) viewmodels.AdminDashboard {
	t.Helper()
	require.Equal(t, "pages/admin/dashboard", r.name)

	result, ok := r.data.(viewmodels.AdminDashboard)
	require.True(t, ok)
	return result
}

// photoStore keeps photos in a slice and can refuse order writes
type photoStore struct {
	services.PhotoStorer

	photos          []*models.Photo
	updateOrdersErr error
}

func (s *photoStore) GetAll(ctx context.Context) ([]*models.Photo, error) {
	result := make([]*models.Photo, 0, len(s.photos))

	for _, p := range s.photos {
		copied := *p
		result = append(result, &copied)
	}

	return result, nil
}

func (s *photoStore) GetByClient(ctx context.Context, clientSlug string) ([]*models.Photo, error) {
	all, _ := s.GetAll(ctx)
	result := []*models.Photo{}

	for _, p := range all {
		if p.ClientSlug == clientSlug {
			result = append(result, p)
		}
	}

	return result, nil
}

func (s *photoStore) UpdateOrders(ctx context.Context, updates []models.OrderUpdate) error {
	if s.updateOrdersErr != nil {
		return s.updateOrdersErr
	}

	for _, u := range updates {
		for _, p := range s.photos {
			if p.ID == u.ID {
				order := u.Order
				p.Order = &order
			}
		}
	}

	return nil
}

func (s *photoStore) orderOf(id string) int {
	for _, p := range s.photos {
		if p.ID == id {
			return p.OrderValue()
		}
	}

	return -1
}

type headerSettings struct {
	services.SettingsServicer
}

func (headerSettings) GetHeader(ctx context.Context) (models.HeaderSettings, error) {
	return models.HeaderSettings{Title: "Smith wedding"}, nil
}

func newTestController(store *photoStore, renderer *capturingRenderer) AdminController {
	return NewAdminController(AdminControllerConfig{
		PhotoService:    store,
		Renderer:        renderer,
		ReorderService:  services.NewReorderService(services.ReorderServiceConfig{PhotoStore: store}),
		SettingsService: headerSettings{},
	})
}

func newStore() *photoStore {
	order := func(i int) *int { return &i }

	return &photoStore{photos: []*models.Photo{
		{ID: "a", URL: "https://cdn.example.com/a.jpg", ClientSlug: "smith", Order: order(0)},
		{ID: "b", URL: "https://cdn.example.com/b.jpg", ClientSlug: "smith", Order: order(1)},
		{ID: "c", URL: "https://cdn.example.com/c.jpg", ClientSlug: "smith", Order: order(2)},
	}}
}

func postForm(target string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func renderedIDs(view viewmodels.AdminDashboard) []string {
	ids := make([]string, 0, len(view.Photos))

	for _, p := range view.Photos {
		ids = append(ids, p.ID)
	}

	return ids
}

func TestReorderActionSavesPostedOrder(t *testing.T) {
	store := newStore()
	renderer := &capturingRenderer{}
	c := newTestController(store, renderer)

	form := url.Values{
		"client":   {"smith"},
		"id":       {"c", "a", "b"},
		"selected": {"b"},
	}

	c.ReorderAction(httptest.NewRecorder(), postForm("/admin/photos/order", form))

	view := renderer.dashboard(t)
	assert.Equal(t, []string{"c", "a", "b"}, renderedIDs(view))
	assert.False(t, view.IsWarning)
	assert.Equal(t, 1, view.SelectedCount)
	assert.True(t, view.Photos[2].Selected)

	assert.Equal(t, 0, store.orderOf("c"))
	assert.Equal(t, 1, store.orderOf("a"))
	assert.Equal(t, 2, store.orderOf("b"))
}

func TestReorderActionShowsStoredOrderWhenSaveFails(t *testing.T) {
	store := newStore()
	store.updateOrdersErr = errors.New("database is locked")
	renderer := &capturingRenderer{}
	c := newTestController(store, renderer)

	form := url.Values{
		"client": {"smith"},
		"id":     {"c", "a", "b"},
	}

	c.ReorderAction(httptest.NewRecorder(), postForm("/admin/photos/order", form))

	view := renderer.dashboard(t)
	assert.Equal(t, []string{"a", "b", "c"}, renderedIDs(view))
	assert.True(t, view.IsWarning)
	assert.Equal(t, services.ReorderFailedWarning, view.Message)
}

func TestMoveActionMovesOneStep(t *testing.T) {
	store := newStore()
	renderer := &capturingRenderer{}
	c := newTestController(store, renderer)

	form := url.Values{
		"client":   {"smith"},
		"activeId": {"c"},
		"overId":   {"b"},
	}

	c.MoveAction(httptest.NewRecorder(), postForm("/admin/photos/move", form))

	view := renderer.dashboard(t)
	require.Equal(t, []string{"a", "c", "b"}, renderedIDs(view))
	assert.Equal(t, "a", view.Photos[1].PrevID)
	assert.Equal(t, "b", view.Photos[1].NextID)
	assert.Equal(t, 1, store.orderOf("c"))
}

func TestDashboardPageStartsWithEmptySelection(t *testing.T) {
	store := newStore()
	renderer := &capturingRenderer{}
	c := newTestController(store, renderer)

	c.DashboardPage(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin", nil))

	view := renderer.dashboard(t)
	assert.Equal(t, 0, view.SelectedCount)
	assert.False(t, view.AllSelected)
	assert.Equal(t, "Smith wedding", view.Header.Title)
	assert.Len(t, view.Photos, 3)
}
