package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// CatalogService implements [Catalog] over the movie metadata REST API.
type CatalogService struct {
	api *APIService
}

// NewCatalogService wraps an [APIService] pointed at the catalog base URL.
func NewCatalogService(api *APIService) *CatalogService {
	return &CatalogService{api: api}
}

// WithToken returns a client that authenticates as the given session token.
func (c *CatalogService) WithToken(token string) *CatalogService {
	return &CatalogService{api: c.api.WithBearer(token)}
}

func pageQuery(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": {strconv.Itoa(page)}}
}

func (c *CatalogService) listPage(ctx context.Context, path string, q url.Values) (*models.RawListPage, error) {
	var page models.RawListPage
	if err := c.api.GetJSON(ctx, path, q, &page); err != nil {
		return nil, err
	}
	for i := range page.Results {
		page.Results[i].Kind = models.RawListItem
	}
	if page.Page == 0 {
		page.Page, _ = strconv.Atoi(q.Get("page"))
	}
	if page.TotalPages < 1 {
		page.TotalPages = 1
	}
	return &page, nil
}

// FetchByCategory calls GET /movies/{category}.
func (c *CatalogService) FetchByCategory(ctx context.Context, category models.Category, page int) (*models.RawListPage, error) {
	switch category {
	case models.CategoryPopular, models.CategoryTopRated, models.CategoryUpcoming:
	default:
		return nil, fmt.Errorf("%w: unknown category %q", shared.ErrInvalidArgument, category)
	}
	return c.listPage(ctx, "/movies/"+string(category), pageQuery(page))
}

// Search calls GET /movies/search.
func (c *CatalogService) Search(ctx context.Context, query string, page int) (*models.RawListPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, shared.ErrEmptyQuery
	}
	q := pageQuery(page)
	q.Set("query", query)
	return c.listPage(ctx, "/movies/search", q)
}

// Discover calls GET /movies/discover.
func (c *CatalogService) Discover(ctx context.Context, params models.DiscoverParams) (*models.RawListPage, error) {
	return c.listPage(ctx, "/movies/discover", params.Values())
}

// FetchDetails calls GET /movies/{id}.
func (c *CatalogService) FetchDetails(ctx context.Context, id int) (*models.RawMovie, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: movie id %d", shared.ErrInvalidArgument, id)
	}
	var movie models.RawMovie
	if err := c.api.GetJSON(ctx, "/movies/"+strconv.Itoa(id), nil, &movie); err != nil {
		return nil, err
	}
	movie.Kind = models.RawDetail
	return &movie, nil
}

// FetchGenres calls GET /movies/genres. The body may be a bare array or {"genres": [...]}.
func (c *CatalogService) FetchGenres(ctx context.Context) ([]models.Genre, error) {
	resp, err := c.api.Get(ctx, "/movies/genres", nil)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var genres []models.Genre
	if bytes.HasPrefix(bytes.TrimSpace(resp.Body), []byte("[")) {
		if err := resp.Decode(&genres); err != nil {
			return nil, err
		}
		return genres, nil
	}

	var wrapped struct {
		Genres *[]models.Genre `json:"genres"`
	}
	if err := json.Unmarshal(resp.Body, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: decode genres: %v", shared.ErrAPIRequest, err)
	}
	if wrapped.Genres == nil {
		return nil, fmt.Errorf("%w: genres response has no genres list", shared.ErrAPIRequest)
	}
	return *wrapped.Genres, nil
}

// FetchByGenre calls GET /movies/genre/{id}.
func (c *CatalogService) FetchByGenre(ctx context.Context, genreID, page int) (*models.RawListPage, error) {
	if genreID <= 0 {
		return nil, fmt.Errorf("%w: genre id %d", shared.ErrInvalidArgument, genreID)
	}
	return c.listPage(ctx, "/movies/genre/"+strconv.Itoa(genreID), pageQuery(page))
}
