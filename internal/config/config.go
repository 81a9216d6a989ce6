// Package config loads runtime settings for the tabdav CLI.
//
// Sources are layered: built-in defaults, then an optional JSON file
// (-c/-config), then command-line flags. Later sources win.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Remote backend names.
const (
	BackendWebDAV = "webdav"
	BackendS3     = "s3"
)

// RemoteFileName is the fixed name of the sync document inside the remote
// sync directory.
const RemoteFileName = "data.json"

// Config holds runtime settings for the tabdav CLI.
type Config struct {
	// DBPath is the sqlite database file holding tabs, groups and the
	// sync snapshot.
	DBPath string

	// RemoteBackend selects the remote store implementation: "webdav" or
	// "s3". Exactly one remote is active at a time.
	RemoteBackend string

	// WebDAV settings.
	WebDAVURL      string // base URL including the sync directory path
	WebDAVUsername string
	WebDAVPassword string

	// S3 (or MinIO-compatible) settings.
	S3Endpoint  string // empty for AWS
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Prefix    string // key prefix acting as the sync directory

	// RemoteTimeout bounds each upload/download call. The in-memory merge
	// itself is never subject to a timeout.
	RemoteTimeout time.Duration

	// SyncInterval is the watch-mode period between sync runs.
	SyncInterval time.Duration

	// CleanupMaxAge is how long archived tabs are kept before the cleanup
	// command purges them. Zero disables age-based cleanup.
	CleanupMaxAge time.Duration

	// Watch-mode log file settings (stderr when LogFile is empty).
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBPath = defaultDBPath()
	c.RemoteBackend = BackendWebDAV
	c.S3Region = "us-east-1"
	c.RemoteTimeout = 30 * time.Second
	c.SyncInterval = 5 * time.Minute
	c.CleanupMaxAge = 30 * 24 * time.Hour
	c.LogMaxSizeMB = 10
	c.LogMaxBackups = 3
	c.LogMaxAgeDays = 28
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// IsConfigured reports whether the active remote backend has enough
// settings to attempt a connection.
func (c *Config) IsConfigured() bool {
	switch c.RemoteBackend {
	case BackendWebDAV:
		return c.WebDAVURL != "" && c.WebDAVUsername != "" && c.WebDAVPassword != ""
	case BackendS3:
		return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
	default:
		return false
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tabdav.db"
	}
	return filepath.Join(home, ".tabdav", "tabdav.db")
}
