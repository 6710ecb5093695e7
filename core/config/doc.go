// Package config provides configuration management for catalog-sync.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults live in the `default` struct tags of each section.
//
// # Configuration Structure
//
//   - Sync: batch size, requests per minute, export timeout (the only pipeline tunables)
//   - Catalog: live catalog paths, destination schema profile, variant policy
//   - Editor: editor bridge executable and export preset name
//   - Library: AppleScript runner and the root folder mirrored into the library
//   - Workspace: local directory for the run lock, working copies and scratch exports
//   - Log: logging level and format
//   - Storage: optional S3/MinIO archive for degraded batches
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
