// Package models defines the data shared by the catalog, session and collection layers.
//
// The package contains three categories of types:
//
// 1. Wire shapes: movie objects exactly as the catalog API returns them
//   - [RawMovie] : a list item or a detail payload, tagged by [RawKind]
//   - [RawListPage] : one page of list results
//
// 2. Canonical records: what every surface renders
//   - [MovieRecord] : the normalized movie, with optional [MovieDetails]
//   - [Genre] : genre id/name pair used for lookups
//
// 3. Query and identity state
//   - [FilterState], [Category], [DiscoverParams] : catalog query construction
//   - [Session], [User], [Credentials], [Registration] : identity payloads
//   - [Activity] : entries of the recent activity feed
package models
