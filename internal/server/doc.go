// Package server exposes the navigation surface over HTTP.
//
// # Routes
//
//	GET  /               category or discover listing (category, page, genre, year, rating, sort)
//	GET  /search?query=  search listing; an empty query redirects to /
//	GET  /movies/{id}    movie details merged with list fields and membership flags
//	POST /login          JSON credentials, starts a session
//	POST /register       JSON registration form, does not log in
//	POST /logout         ends the session
//	GET  /dashboard      session-gated; redirects to /login without one
//	POST /watchlist/{id} toggles watchlist membership
//	POST /favorites/{id} toggles favorites membership
//	GET  /metrics        Prometheus metrics
//
// # Middleware
//
// [Middleware] wraps handlers in the standard way. The chi router applies request IDs,
// panic recovery, request logging, CORS, per-IP rate limiting and the session gate, in that order.
//
// Each listing request builds its own tasks.ListingController, so requests never share
// listing state. Session, library and activity state are shared by the process.
package server
