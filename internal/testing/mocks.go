package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/desertthunder/reelx/internal/models"
)

// MockCatalog is a testify mock of services.Catalog.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FetchByCategory(ctx context.Context, category models.Category, page int) (*models.RawListPage, error) {
	args := m.Called(ctx, category, page)
	return listPage(args)
}

func (m *MockCatalog) Search(ctx context.Context, query string, page int) (*models.RawListPage, error) {
	args := m.Called(ctx, query, page)
	return listPage(args)
}

func (m *MockCatalog) Discover(ctx context.Context, params models.DiscoverParams) (*models.RawListPage, error) {
	args := m.Called(ctx, params)
	return listPage(args)
}

func (m *MockCatalog) FetchDetails(ctx context.Context, id int) (*models.RawMovie, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.RawMovie), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalog) FetchGenres(ctx context.Context) ([]models.Genre, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]models.Genre), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalog) FetchByGenre(ctx context.Context, genreID, page int) (*models.RawListPage, error) {
	args := m.Called(ctx, genreID, page)
	return listPage(args)
}

func listPage(args mock.Arguments) (*models.RawListPage, error) {
	if v := args.Get(0); v != nil {
		return v.(*models.RawListPage), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockIdentity is a testify mock of services.Identity.
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) Register(ctx context.Context, reg models.Registration) error {
	return m.Called(ctx, reg).Error(0)
}

func (m *MockIdentity) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	args := m.Called(ctx, creds)
	if v := args.Get(0); v != nil {
		return v.(*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

// Page builds a one-page list response from raw movies.
func Page(page, totalPages int, movies ...models.RawMovie) *models.RawListPage {
	return &models.RawListPage{Page: page, TotalPages: totalPages, Results: movies}
}

// FailingStorage satisfies storage.Storage and fails every write with Err.
type FailingStorage struct {
	Err error
}

func (f *FailingStorage) Get(context.Context, string) ([]byte, error) { return nil, f.Err }
func (f *FailingStorage) Set(context.Context, string, []byte) error   { return f.Err }
func (f *FailingStorage) Delete(context.Context, string) error        { return f.Err }
func (f *FailingStorage) Close() error                                { return nil }
