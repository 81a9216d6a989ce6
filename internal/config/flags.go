package config

import (
	"flag"
	"os"
	"time"

	"github.com/tabdav/tabdav/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-db string        path to the sqlite database file
//	-backend string   remote backend: webdav or s3
//	-url string       WebDAV base URL (including the sync directory)
//	-user string      WebDAV username
//	-pass string      WebDAV password
//	-interval int     watch-mode sync interval in seconds
//	-timeout int      remote call timeout in seconds
//	-logfile string   watch-mode log file (rotated)
//
// The function filters os.Args to only the flags it knows about, via
// flagx.FilterArgs, so the command words and flags owned by other packages
// pass through untouched.
func parseFlags(cfg *Config) {
	known := []string{"-db", "-backend", "-url", "-user", "-pass", "-interval", "-timeout", "-logfile"}
	args := flagx.FilterArgs(os.Args[1:], known)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the sqlite database file")
	fs.StringVar(&cfg.RemoteBackend, "backend", cfg.RemoteBackend, "remote backend (webdav or s3)")
	fs.StringVar(&cfg.WebDAVURL, "url", cfg.WebDAVURL, "WebDAV base URL")
	fs.StringVar(&cfg.WebDAVUsername, "user", cfg.WebDAVUsername, "WebDAV username")
	fs.StringVar(&cfg.WebDAVPassword, "pass", cfg.WebDAVPassword, "WebDAV password")
	interval := fs.Int("interval", int(cfg.SyncInterval.Seconds()), "watch-mode sync interval (in seconds)")
	timeout := fs.Int("timeout", int(cfg.RemoteTimeout.Seconds()), "remote call timeout (in seconds)")
	fs.StringVar(&cfg.LogFile, "logfile", cfg.LogFile, "watch-mode log file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SyncInterval = time.Duration(*interval) * time.Second
	cfg.RemoteTimeout = time.Duration(*timeout) * time.Second
}
