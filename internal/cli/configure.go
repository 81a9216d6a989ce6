package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tabdav/tabdav/internal/config"
)

// cmdConfigure interactively collects remote settings and writes them to a
// config file (~/.tabdav/config.json by default). Passwords are read
// without echo.
func (a *App) cmdConfigure(ctx context.Context, args []string) error {
	path := defaultConfigPath()
	if len(args) > 0 {
		path = args[0]
	}

	backend, err := GetSimpleText(a.reader, "Remote backend (webdav or s3)", a.out)
	if err != nil {
		return err
	}

	cfg := *a.cfg
	cfg.RemoteBackend = backend

	switch backend {
	case config.BackendWebDAV:
		if cfg.WebDAVURL, err = GetSimpleText(a.reader, "WebDAV URL (including the sync directory)", a.out); err != nil {
			return err
		}
		if cfg.WebDAVUsername, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
			return err
		}
		if cfg.WebDAVPassword, err = GetPassword("Password", a.out); err != nil {
			return err
		}

	case config.BackendS3:
		if cfg.S3Endpoint, err = GetSimpleText(a.reader, "Endpoint URL (empty for AWS)", a.out); err != nil {
			return err
		}
		if cfg.S3Region, err = GetSimpleText(a.reader, "Region", a.out); err != nil {
			return err
		}
		if cfg.S3Bucket, err = GetSimpleText(a.reader, "Bucket", a.out); err != nil {
			return err
		}
		if cfg.S3Prefix, err = GetSimpleText(a.reader, "Key prefix (optional)", a.out); err != nil {
			return err
		}
		if cfg.S3AccessKey, err = GetSimpleText(a.reader, "Access key", a.out); err != nil {
			return err
		}
		if cfg.S3SecretKey, err = GetPassword("Secret key", a.out); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown backend: %q", backend)
	}

	if !cfg.IsConfigured() {
		return fmt.Errorf("configuration is incomplete")
	}
	if err := config.Save(path, &cfg); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Wrote %s\n", path)
	fmt.Fprintf(a.out, "Use it with: tabdav -c %s <command>\n", path)
	return nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(home, ".tabdav", "config.json")
}
