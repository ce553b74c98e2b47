// Package application wires storage, calculator, metrics, handlers, router
// and the HTTP server together so that cmd/server only has to parse flags and
// manage the process lifecycle.
package application
