// Package daemon combines the HTTP API server and catalog store into a
// single lifecycle with flock-based locking to prevent multiple concurrent
// instances sharing one data directory.
package daemon
