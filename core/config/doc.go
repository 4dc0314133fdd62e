// Package config provides configuration management for the S3 client.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP gateway settings (port, API key, metrics path, body limit)
//   - Storage: provider driver, endpoint, credentials, addressing style, encoding
//   - Log: Logging level and format
//
// Defaults come from the `default` struct tags and are registered by reflection,
// so every key can be overridden by an environment variable such as
// STORAGE_PATH_STYLE or LOG_LEVEL.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Storage.Endpoint)
package config
