// Package main is brigade's reference CLI. See main.go's doc comment for
// usage; cmd/brigade is intentionally thin — it exists to exercise the
// library end-to-end, not to be the primary integration point.
package main
