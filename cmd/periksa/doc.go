// Command periksa is the CLI client for the periksa daemon.
package main
