// Package api defines the wire types and service layer behind the HTTP
// endpoints and the CLI.
package api
