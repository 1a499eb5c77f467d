package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) Config {
	t.Helper()

	return Config{
		SigningSecret:        "app-test-signing-secret",
		AccessTokenTTL:       15 * time.Minute,
		RefreshTokenTTL:      time.Hour,
		DatabaseFile:         filepath.Join(t.TempDir(), "app.db"),
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		Port:                 8080,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func TestNew_RequiresSigningSecret(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.SigningSecret = ""

	_, err := New(cfg)
	require.Error(t, err)
}

func TestRun_CleansUpWhenServerFails(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Port = -1 // ListenAndServe fails immediately on an invalid port

	app, err := New(cfg)
	require.NoError(t, err)

	err = app.Run()
	require.Error(t, err)

	// The failure path releases resources the same way a signal does,
	// so the database must be closed by the time Run returns.
	assert.Error(t, app.db.Ping(context.Background()))
}
