package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adampresley/weddinggallery/pkg/models"
)

// mockPhotoStore is an in-memory PhotoStorer
type mockPhotoStore struct {
	mu sync.Mutex

	photos map[string]*models.Photo

	deleteErr       error
	deleteErrFor    map[string]bool
	deleteManyErr   error
	getAllErr       error
	insertManyErr   error
	maxOrderErr     error
	updateOrdersErr error

	insertManyCalls   int
	updateOrdersCalls int
	deleteManyIDs     [][]string
}

func newMockPhotoStore(photos ...*models.Photo) *mockPhotoStore {
	m := &mockPhotoStore{photos: map[string]*models.Photo{}, deleteErrFor: map[string]bool{}}

	for _, p := range photos {
		copied := *p
		m.photos[p.ID] = &copied
	}

	return m
}

func (m *mockPhotoStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}

	if m.deleteErrFor[id] {
		return fmt.Errorf("delete failed for %s", id)
	}

	delete(m.photos, id)
	return nil
}

func (m *mockPhotoStore) DeleteMany(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteManyIDs = append(m.deleteManyIDs, ids)

	if m.deleteManyErr != nil {
		return m.deleteManyErr
	}

	for _, id := range ids {
		delete(m.photos, id)
	}

	return nil
}

func (m *mockPhotoStore) GetAll(ctx context.Context) ([]*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getAllErr != nil {
		return nil, m.getAllErr
	}

	result := make([]*models.Photo, 0, len(m.photos))

	for _, p := range m.photos {
		copied := *p
		result = append(result, &copied)
	}

	models.SortPhotos(result)
	return result, nil
}

func (m *mockPhotoStore) GetAllURLs(ctx context.Context) ([]string, error) {
	photos, err := m.GetAll(ctx)

	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(photos))

	for _, p := range photos {
		urls = append(urls, p.URL)
	}

	return urls, nil
}

func (m *mockPhotoStore) GetByClient(ctx context.Context, clientSlug string) ([]*models.Photo, error) {
	return m.GetWhere(ctx, PhotoFieldClientSlug, clientSlug)
}

func (m *mockPhotoStore) GetWhere(ctx context.Context, field PhotoField, value string) ([]*models.Photo, error) {
	all, err := m.GetAll(ctx)

	if err != nil {
		return nil, err
	}

	result := []*models.Photo{}

	for _, p := range all {
		if (field == PhotoFieldClientSlug && p.ClientSlug == value) || (field == PhotoFieldAlbum && p.Album == value) {
			result = append(result, p)
		}
	}

	return result, nil
}

func (m *mockPhotoStore) Insert(ctx context.Context, photo *models.Photo) error {
	return m.InsertMany(ctx, []*models.Photo{photo})
}

func (m *mockPhotoStore) InsertMany(ctx context.Context, photos []*models.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertManyCalls++

	if m.insertManyErr != nil {
		return m.insertManyErr
	}

	for _, p := range photos {
		copied := *p
		m.photos[p.ID] = &copied
	}

	return nil
}

func (m *mockPhotoStore) MaxOrder(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxOrderErr != nil {
		return 0, m.maxOrderErr
	}

	result := 0

	for _, p := range m.photos {
		if p.HasOrder() && p.OrderValue() > result {
			result = p.OrderValue()
		}
	}

	return result, nil
}

func (m *mockPhotoStore) UpdateOrders(ctx context.Context, updates []models.OrderUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateOrdersCalls++

	if m.updateOrdersErr != nil {
		return m.updateOrdersErr
	}

	for _, u := range updates {
		if _, ok := m.photos[u.ID]; !ok {
			return models.ErrPhotoNotFound
		}
	}

	for _, u := range updates {
		order := u.Order
		m.photos[u.ID].Order = &order
	}

	return nil
}

func (m *mockPhotoStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.photos)
}

func (m *mockPhotoStore) get(id string) *models.Photo {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.photos[id]
}

/*
mockUploader returns a URL derived from the file name. Files named in
failFor fail, and each upload waits for delay while tracking how many
uploads are in flight.
*/
type mockUploader struct {
	delay    time.Duration
	failFor  map[string]bool
	emptyFor map[string]bool

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	calls       atomic.Int32
}

func (m *mockUploader) Upload(ctx context.Context, file models.UploadFile) (string, error) {
	m.calls.Add(1)
	current := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)

	for {
		seen := m.maxInFlight.Load()

		if current <= seen || m.maxInFlight.CompareAndSwap(seen, current) {
			break
		}
	}

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if m.failFor[file.Name] {
		return "", fmt.Errorf("upload of %s rejected", file.Name)
	}

	if m.emptyFor[file.Name] {
		return "", nil
	}

	return "https://cdn.example.com/" + file.Name, nil
}

/*
gatedUploader blocks every upload until its file is released, and
reports each file name as it enters Upload.
*/
type gatedUploader struct {
	entered chan string
	gates   map[string]chan struct{}
}

func newGatedUploader(names ...string) *gatedUploader {
	g := &gatedUploader{
		entered: make(chan string, len(names)),
		gates:   make(map[string]chan struct{}, len(names)),
	}

	for _, name := range names {
		g.gates[name] = make(chan struct{})
	}

	return g
}

func (g *gatedUploader) Upload(ctx context.Context, file models.UploadFile) (string, error) {
	g.entered <- file.Name

	select {
	case <-g.gates[file.Name]:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return "https://cdn.example.com/" + file.Name, nil
}

func (g *gatedUploader) release(name string) {
	close(g.gates[name])
}

func makeFiles(names ...string) []models.UploadFile {
	result := make([]models.UploadFile, 0, len(names))

	for _, name := range names {
		result = append(result, models.UploadFile{
			Name: name,
			Size: int64(len(name)),
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader(name)), nil
			},
		})
	}

	return result
}

func intPtr(i int) *int {
	return &i
}

// mockCommitter records commits and returns commitErr when set
type mockCommitter struct {
	mu        sync.Mutex
	commitErr error
	urls      []string
	slug      string
	album     string
	calls     int
}

func (m *mockCommitter) Commit(ctx context.Context, urls []string, clientSlug, album string) ([]*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.urls = urls
	m.slug = clientSlug
	m.album = album

	if m.commitErr != nil {
		return nil, m.commitErr
	}

	return []*models.Photo{}, nil
}

// mockNotifier collects the jobs it was told about
type mockNotifier struct {
	mu   sync.Mutex
	jobs []models.UploadJob
}

func (m *mockNotifier) NotifyUploadFinished(job models.UploadJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobs = append(m.jobs, job)
	return nil
}
