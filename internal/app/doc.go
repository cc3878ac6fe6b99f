// Package app wires the score analyzer server together.
//
// New builds every component from a config.Config in order: data
// directories, OpenTelemetry, the SQLite store, the score and health
// services, the chi router and finally the http.Server. Run serves until
// SIGINT or SIGTERM and then shuts down gracefully, draining requests
// before the database is closed.
//
// Errors during construction are returned; the package never exits the
// process itself.
package app
