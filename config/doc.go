// Package config provides brigade's configuration loading: a Builder-style
// Loader that layers defaults, an optional YAML file, and environment
// variable overrides (prefix BRIGADE_ by default), followed by validation.
package config
