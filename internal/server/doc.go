// Package server provides HTTP server lifecycle management: non-blocking
// Start, graceful Shutdown within a configured timeout, and an async error
// channel for the bridge API and its metrics endpoint to share.
package server
