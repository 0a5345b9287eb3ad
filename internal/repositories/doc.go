// Package repositories implements SQLite persistence on top of the goose-managed schema.
//
// Key Implementations:
//   - [SnapshotRepository] : the sqlite backend of storage.Storage, one row per snapshot key
//   - [ActivityRepository] : the recent activity feed (toggles, logins, exports)
//   - [ActivityLog] : a fire-and-forget recorder surfaces call after a successful action
package repositories
