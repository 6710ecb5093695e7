package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"catalog-sync/core/logger"
	"catalog-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Sync holds the externally tunable pipeline parameters.
	Sync SyncConfig `mapstructure:"sync"`
	// Catalog locates the two catalogs and selects how they are read.
	Catalog CatalogConfig `mapstructure:"catalog"`
	// Editor configures the editing application's scripting bridge.
	Editor EditorConfig `mapstructure:"editor"`
	// Library configures the library application's scripting interface.
	Library LibraryConfig `mapstructure:"library"`
	// Workspace holds the local directory used for working copies and scratch output.
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Storage holds configuration for the optional degraded batch archive.
	Storage storage.Config `mapstructure:"storage"`
}

// SyncConfig holds the batching, throttling and timeout policy.
type SyncConfig struct {
	// BatchSize bounds the number of assets per export/import cycle.
	BatchSize int `mapstructure:"batch_size" default:"30"`
	// RequestsPerMinute caps the rate of external application commands.
	RequestsPerMinute int `mapstructure:"requests_per_minute" default:"60"`
	// ExportTimeoutSeconds bounds the wait for the editor's completion signal.
	ExportTimeoutSeconds int `mapstructure:"export_timeout_seconds" default:"600"`
}

// ExportTimeout returns the export wait bound as a duration.
func (c SyncConfig) ExportTimeout() time.Duration {
	return time.Duration(c.ExportTimeoutSeconds) * time.Second
}

// CatalogConfig locates the live catalogs.
type CatalogConfig struct {
	// SourcePath is the live editor catalog file.
	SourcePath string `mapstructure:"source_path" default:""`
	// DestinationPath is the live library database file.
	DestinationPath string `mapstructure:"destination_path" default:""`
	// DestinationProfile selects the library schema version (photos5..photos8).
	DestinationProfile string `mapstructure:"destination_profile" default:"photos8"`
	// VariantPolicy selects which edited variant of an asset is canonical (primary, latest).
	VariantPolicy string `mapstructure:"variant_policy" default:"primary"`
}

// EditorConfig configures the editor bridge.
type EditorConfig struct {
	// Bridge is the executable that forwards commands to the editor.
	Bridge string `mapstructure:"bridge" default:"lrc-bridge"`
	// ExportProfile is the named export preset whose destination is redirected per batch.
	ExportProfile string `mapstructure:"export_profile" default:"catalog-sync"`
}

// LibraryConfig configures the library application.
type LibraryConfig struct {
	// Osascript is the AppleScript runner.
	Osascript string `mapstructure:"osascript" default:"osascript"`
	// RootFolder is the top-level library folder that mirrors the source hierarchy.
	RootFolder string `mapstructure:"root_folder" default:"Lightroom"`
}

// WorkspaceConfig holds the local working directory.
type WorkspaceConfig struct {
	// Dir holds the run lock, catalog working copies and scratch exports.
	Dir string `mapstructure:"dir" default:".catalog-sync"`
	// KeepScratch leaves scratch directories on disk after a successful import.
	KeepScratch bool `mapstructure:"keep_scratch" default:"false"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SYNC_BATCH_SIZE -> sync.batch_size)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the tunables, required paths and the names the applications are driven by.
func (c *Config) Validate() error {
	var errs []error
	if c.Sync.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("sync.batch_size must be positive, got %d", c.Sync.BatchSize))
	}
	if c.Sync.RequestsPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("sync.requests_per_minute must be positive, got %d", c.Sync.RequestsPerMinute))
	}
	if c.Sync.ExportTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("sync.export_timeout_seconds must be positive, got %d", c.Sync.ExportTimeoutSeconds))
	}
	if strings.TrimSpace(c.Catalog.SourcePath) == "" {
		errs = append(errs, errors.New("catalog.source_path is required"))
	}
	if strings.TrimSpace(c.Catalog.DestinationPath) == "" {
		errs = append(errs, errors.New("catalog.destination_path is required"))
	}
	if strings.TrimSpace(c.Workspace.Dir) == "" {
		errs = append(errs, errors.New("workspace.dir is required"))
	}
	if strings.TrimSpace(c.Editor.ExportProfile) == "" {
		errs = append(errs, errors.New("editor.export_profile is required"))
	}
	if strings.TrimSpace(c.Library.RootFolder) == "" {
		errs = append(errs, errors.New("library.root_folder is required"))
	}
	return errors.Join(errs...)
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
