// Package store persists news records, user checks, and training history in
// SQLite.
package store
