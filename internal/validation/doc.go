// Package validation enforces the input ranges of a sizing request. The
// calculator itself accepts any number; every outer surface (HTTP API, CLI,
// batch import) runs these checks before invoking it.
package validation
