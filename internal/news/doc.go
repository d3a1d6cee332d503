// Package news defines the Record model and the provenance transitions that
// control which records may feed model training.
package news
