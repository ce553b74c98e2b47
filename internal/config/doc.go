// Package config resolves server settings and the calculation defaults from
// environment variables, an optional YAML file and CLI flags, in increasing
// order of precedence, and validates the result before the server starts.
package config
