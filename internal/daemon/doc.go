// Package daemon runs the background services: RSS ingestion, the
// auto-retrain scheduler, and the HTTP API.
package daemon
