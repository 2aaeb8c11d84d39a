package config_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matt-steen/remindlist/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	cfg := config.Default()
	assert.Nil(cfg.Validate())
	assert.Equal(config.DefaultPollInterval, cfg.PollInterval)
	assert.True(strings.HasSuffix(cfg.DBFilename, "remindlist.sqlite"))
	assert.False(cfg.UseMongo())
	assert.False(cfg.PurgeUndated)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	cfg := config.Default()
	cfg.PollInterval = 0
	assert.True(errors.Is(cfg.Validate(), config.ErrInvalidPollInterval))

	cfg = config.Default()
	cfg.LogLevel = "loud"
	assert.True(errors.Is(cfg.Validate(), config.ErrInvalidLogLevel))

	cfg.LogLevel = " DEBUG "
	level, err := cfg.Level()
	assert.Nil(err)
	assert.Equal(zerolog.DebugLevel, level)

	cfg.PollInterval = time.Second
	assert.Nil(cfg.Validate())
}

func TestEmptyLogLevelIsInfo(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	cfg := config.Default()
	cfg.LogLevel = "  "
	assert.Nil(cfg.Validate())

	level, err := cfg.Level()
	assert.Nil(err)
	assert.Equal(zerolog.InfoLevel, level)
}

func TestUseMongo(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	cfg := config.Default()
	cfg.MongoURI = "mongodb://localhost:27017"
	assert.True(cfg.UseMongo())

	cfg.MongoURI = "   "
	assert.False(cfg.UseMongo())
}

func TestEnvOr(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("REMINDLIST_TEST_ENV_OR", "/tmp/x.sqlite")
	assert.Equal("/tmp/x.sqlite", config.EnvOr("REMINDLIST_TEST_ENV_OR", "fallback"))

	t.Setenv("REMINDLIST_TEST_ENV_OR", " ")
	assert.Equal("fallback", config.EnvOr("REMINDLIST_TEST_ENV_OR", "fallback"))

	assert.Equal("fallback", config.EnvOr("REMINDLIST_TEST_ENV_OR_UNSET", "fallback"))
}
