package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/flagx"
)

// parseFlags overlays Config with -a (server URL), -m (marketplace),
// -s (session file) and -i (poll interval). Other arguments are ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-s", "-i"})

	fs := flag.NewFlagSet("shelfsync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "shelfsync server URL")
	fs.StringVar(&cfg.Marketplace, "m", cfg.Marketplace, "default marketplace")
	fs.StringVar(&cfg.SessionFile, "s", cfg.SessionFile, "session file")
	fs.Func("i", "sync status poll interval (2s, 500ms, or whole seconds)", func(s string) error {
		d, err := parseInterval(s)
		if err != nil {
			return err
		}
		cfg.PollInterval = d
		return nil
	})

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

// parseInterval accepts a Go duration or a bare number of seconds.
func parseInterval(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("poll interval must be positive, got %q", s)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("poll interval %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("poll interval must be positive, got %q", s)
	}
	return d, nil
}
