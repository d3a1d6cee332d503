// Package identity derives stable content-addressed identifiers for news
// records and user-check submissions.
package identity
