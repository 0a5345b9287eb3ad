// Package services implements the clients for the two remote APIs the application talks to.
//
// # Catalog
//
// [CatalogService] implements [Catalog] against the movie metadata API:
//
//	GET /movies/{popular|top-rated|upcoming}?page=
//	GET /movies/search?query=&page=
//	GET /movies/discover?with_genres=&vote_average.gte=&primary_release_year=&sort_by=&page=
//	GET /movies/{id}
//	GET /movies/genres
//	GET /movies/genre/{id}?page=
//
// List results are returned as [models.RawListPage] with every item tagged [models.RawListItem];
// details are tagged [models.RawDetail]. Normalization happens elsewhere.
//
// # Identity
//
// [IdentityService] implements [Identity]: POST /api/auth/register and POST /api/auth/login.
// Failures are [shared.AuthError] values whose message is the server's message verbatim.
//
// # Transport
//
// Both clients sit on [APIService], which owns the rate limiter, the request id header,
// Prometheus counters and the error classification:
//   - [shared.NetworkError] : no response was received (matches [shared.ErrNetwork])
//   - [shared.APIError] : non-2xx response (matches [shared.ErrAPIRequest])
//
// Nothing here retries.
package services
