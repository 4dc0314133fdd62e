// Package server holds the HTTP gateway configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structure and the derived values the start command
// needs, such as the listen address and the request body limit.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key, the path of the
// Prometheus endpoint and the maximum request body size.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings
// and by the start command to configure Fiber.
package server
