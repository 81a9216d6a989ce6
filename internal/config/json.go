package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tabdav/tabdav/internal/flagx"
)

// duration lets JSON specify intervals as strings like "5m" or as integer
// nanoseconds.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

func (d duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// JsonConfig is a DTO used exclusively for JSON (un)marshalling. After
// parsing, non-zero values are copied into the runtime Config.
type JsonConfig struct {
	DBPath        string   `json:"db_path,omitempty"`
	RemoteBackend string   `json:"remote_backend,omitempty"`
	WebDAVURL     string   `json:"webdav_url,omitempty"`
	WebDAVUser    string   `json:"webdav_username,omitempty"`
	WebDAVPass    string   `json:"webdav_password,omitempty"`
	S3Endpoint    string   `json:"s3_endpoint,omitempty"`
	S3Region      string   `json:"s3_region,omitempty"`
	S3Bucket      string   `json:"s3_bucket,omitempty"`
	S3AccessKey   string   `json:"s3_access_key,omitempty"`
	S3SecretKey   string   `json:"s3_secret_key,omitempty"`
	S3Prefix      string   `json:"s3_prefix,omitempty"`
	RemoteTimeout duration `json:"remote_timeout,omitempty"`
	SyncInterval  duration `json:"sync_interval,omitempty"`
	CleanupMaxAge duration `json:"cleanup_max_age,omitempty"`
	LogFile       string   `json:"log_file,omitempty"`
	LogMaxSizeMB  int      `json:"log_max_size_mb,omitempty"`
	LogMaxBackups int      `json:"log_max_backups,omitempty"`
	LogMaxAgeDays int      `json:"log_max_age_days,omitempty"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config.
// No file flag means no JSON layer. Read or unmarshal errors panic; the
// binary cannot do anything useful with a broken config file.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	applyJson(cfg, data)
}

func applyJson(cfg *Config, data []byte) {
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.RemoteBackend != "" {
		cfg.RemoteBackend = jc.RemoteBackend
	}
	if jc.WebDAVURL != "" {
		cfg.WebDAVURL = jc.WebDAVURL
	}
	if jc.WebDAVUser != "" {
		cfg.WebDAVUsername = jc.WebDAVUser
	}
	if jc.WebDAVPass != "" {
		cfg.WebDAVPassword = jc.WebDAVPass
	}
	if jc.S3Endpoint != "" {
		cfg.S3Endpoint = jc.S3Endpoint
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3AccessKey != "" {
		cfg.S3AccessKey = jc.S3AccessKey
	}
	if jc.S3SecretKey != "" {
		cfg.S3SecretKey = jc.S3SecretKey
	}
	if jc.S3Prefix != "" {
		cfg.S3Prefix = jc.S3Prefix
	}
	if jc.RemoteTimeout.Duration != 0 {
		cfg.RemoteTimeout = jc.RemoteTimeout.Duration
	}
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = jc.SyncInterval.Duration
	}
	if jc.CleanupMaxAge.Duration != 0 {
		cfg.CleanupMaxAge = jc.CleanupMaxAge.Duration
	}
	if jc.LogFile != "" {
		cfg.LogFile = jc.LogFile
	}
	if jc.LogMaxSizeMB != 0 {
		cfg.LogMaxSizeMB = jc.LogMaxSizeMB
	}
	if jc.LogMaxBackups != 0 {
		cfg.LogMaxBackups = jc.LogMaxBackups
	}
	if jc.LogMaxAgeDays != 0 {
		cfg.LogMaxAgeDays = jc.LogMaxAgeDays
	}
}

// Save writes cfg as a JSON config file, creating parent directories. The
// file is written with 0600 permissions since it carries credentials.
func Save(path string, cfg *Config) error {
	jc := JsonConfig{
		DBPath:        cfg.DBPath,
		RemoteBackend: cfg.RemoteBackend,
		WebDAVURL:     cfg.WebDAVURL,
		WebDAVUser:    cfg.WebDAVUsername,
		WebDAVPass:    cfg.WebDAVPassword,
		S3Endpoint:    cfg.S3Endpoint,
		S3Region:      cfg.S3Region,
		S3Bucket:      cfg.S3Bucket,
		S3AccessKey:   cfg.S3AccessKey,
		S3SecretKey:   cfg.S3SecretKey,
		S3Prefix:      cfg.S3Prefix,
		RemoteTimeout: duration{cfg.RemoteTimeout},
		SyncInterval:  duration{cfg.SyncInterval},
		CleanupMaxAge: duration{cfg.CleanupMaxAge},
		LogFile:       cfg.LogFile,
		LogMaxSizeMB:  cfg.LogMaxSizeMB,
		LogMaxBackups: cfg.LogMaxBackups,
		LogMaxAgeDays: cfg.LogMaxAgeDays,
	}

	data, err := json.MarshalIndent(jc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
