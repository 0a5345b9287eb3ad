// Package tasks holds the stateful, long-running operations that sit between the
// catalog gateway and the surfaces.
//
// # Listing controller
//
// [ListingController] owns one listing surface: category, search query, filters and page.
// Each change moves it to Loading and issues one request, chosen by [SelectMode]:
//
//   - any non-default filter: discover
//   - a non-empty query: search
//   - otherwise: the category listing
//
// Every load is tagged with a generation number; a response for an older generation is
// dropped so a slow request can never overwrite a newer one. State transitions are
// published as [StateUpdate] values on an optional channel using select with default.
//
// # Collection export
//
// [ResolveMovies] fetches details for a list of ids with a bounded worker pool and a rate
// limiter, keeping input order. [ExportCollection] resolves and then writes the records
// through the formatter package. Progress is reported with [ProgressUpdate].
package tasks
