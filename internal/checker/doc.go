// Package checker serves anonymous hoax checks for end users. Check traffic
// is analytics-only and never feeds the training queue.
package checker
