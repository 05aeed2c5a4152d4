package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/bea-ebooks/internal/flagx"
)

// parseFlags only sees the flags it declares; flagx.FilterArgs drops the rest
// so commands like "upload book.pdf" pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-m", "-dir"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the e-book API")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.Int64Var(&cfg.MaxFileSize, "m", cfg.MaxFileSize, "max upload size (bytes)")
	fs.StringVar(&cfg.SessionDir, "dir", cfg.SessionDir, "session directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
