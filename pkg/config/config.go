package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPollInterval is how often reminders are matched and completed items swept.
// It is much finer than the one-minute matching resolution so missed ticks are harmless.
const DefaultPollInterval = 10 * time.Second

var (
	ErrInvalidPollInterval = errors.New("poll interval must be positive")
	ErrInvalidLogLevel     = errors.New("unknown log level")
)

// Config holds everything needed to start a session.
type Config struct {
	DBFilename   string
	LogFilename  string
	LogLevel     string
	MongoURI     string
	MongoDB      string
	PollInterval time.Duration
	// PurgeUndated makes the sweeper drop completed items that carry no completion time.
	PurgeUndated bool
}

// Default returns a Config rooted in $HOME/.remindlist.
func Default() Config {
	dir := DefaultDir()

	return Config{
		DBFilename:   filepath.Join(dir, "remindlist.sqlite"),
		LogFilename:  filepath.Join(dir, "debug.log"),
		LogLevel:     zerolog.InfoLevel.String(),
		MongoDB:      "remindlist",
		PollInterval: DefaultPollInterval,
	}
}

// DefaultDir is the directory holding the default db and log files.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".remindlist"
	}

	return filepath.Join(home, ".remindlist")
}

// Validate checks the values that cannot be fixed up silently.
func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPollInterval, c.PollInterval)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level parses LogLevel. An empty value means info.
func (c Config) Level() (zerolog.Level, error) {
	name := strings.ToLower(strings.TrimSpace(c.LogLevel))
	if name == "" {
		return zerolog.InfoLevel, nil
	}

	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	return level, nil
}

// UseMongo reports whether storage should go to MongoDB instead of SQLite.
func (c Config) UseMongo() bool {
	return strings.TrimSpace(c.MongoURI) != ""
}

// EnvOr returns the environment value for key, or def when unset.
func EnvOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}

	return def
}
