// Package ingest polls the configured RSS feed and turns new articles into
// classified news records.
package ingest
