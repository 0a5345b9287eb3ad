// package services defines the clients for the two remote HTTP APIs: the movie catalog and the identity service.
package services

import (
	"context"

	"github.com/desertthunder/reelx/internal/models"
)

// Catalog is the read-only movie metadata API.
//
// Every call is a single attempt: no retries, no caching.
type Catalog interface {
	// FetchByCategory loads one page of a fixed listing (popular, top-rated, upcoming).
	FetchByCategory(ctx context.Context, category models.Category, page int) (*models.RawListPage, error)

	// Search runs a free-text title search.
	Search(ctx context.Context, query string, page int) (*models.RawListPage, error)

	// Discover runs a filtered query.
	Discover(ctx context.Context, params models.DiscoverParams) (*models.RawListPage, error)

	// FetchDetails loads the full detail payload of one movie.
	FetchDetails(ctx context.Context, id int) (*models.RawMovie, error)

	// FetchGenres loads the genre id/name table.
	FetchGenres(ctx context.Context) ([]models.Genre, error)

	// FetchByGenre loads one page of movies in a genre.
	FetchByGenre(ctx context.Context, genreID, page int) (*models.RawListPage, error)
}

// Identity is the authentication API.
type Identity interface {
	// Register creates an account. It does not log the user in.
	Register(ctx context.Context, reg models.Registration) error

	// Login exchanges credentials for a session whose Payload holds the raw response.
	Login(ctx context.Context, creds models.Credentials) (*models.Session, error)
}
