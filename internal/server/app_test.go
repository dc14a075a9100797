package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/dmitrijs2005/shelfsync/internal/server/config"
	"github.com/dmitrijs2005/shelfsync/internal/server/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubArchive struct{}

func (stubArchive) Store(context.Context, string, []byte) (string, error) { return "key", nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.DatabaseDSN = "sqlite://" + filepath.Join(t.TempDir(), "shelfsync.db")
	c.MasterKey = "master-key"
	c.JWTSecret = "jwt-secret"
	c.SyncCommand = "true"
	return c
}

func TestNewApp_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.MasterKey = ""

	app, err := NewApp(context.Background(), c, &bytes.Buffer{})
	require.Error(t, err)
	assert.Nil(t, app)
	assert.ErrorIs(t, err, common.ErrMissingMasterKey)
}

func TestNewApp_BadLogLevel(t *testing.T) {
	c := testConfig(t)
	c.LogLevel = "loud"

	_, err := NewApp(context.Background(), c, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger init error")
}

func TestNewApp_UnsupportedDSN(t *testing.T) {
	c := testConfig(t)
	c.DatabaseDSN = "mysql://nope"

	_, err := NewApp(context.Background(), c, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database dsn")
}

func TestNewApp_ServesHealth(t *testing.T) {
	var logs bytes.Buffer
	app, err := NewApp(context.Background(), testConfig(t), &logs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	rec := httptest.NewRecorder()
	app.http.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.Contains(t, logs.String(), "App initialized")
}

func TestNewApp_S3Archive(t *testing.T) {
	orig := newLogArchive
	t.Cleanup(func() { newLogArchive = orig })

	t.Run("bucket set", func(t *testing.T) {
		var got jobs.S3Config
		newLogArchive = func(_ context.Context, cfg jobs.S3Config) (jobs.LogArchive, error) {
			got = cfg
			return stubArchive{}, nil
		}
		c := testConfig(t)
		c.S3Bucket = "logs"
		c.S3BaseEndpoint = "http://minio:9000"

		app, err := NewApp(context.Background(), c, &bytes.Buffer{})
		require.NoError(t, err)
		t.Cleanup(func() { _ = app.db.Close() })
		assert.Equal(t, "logs", got.Bucket)
		assert.Equal(t, "http://minio:9000", got.Endpoint)
		assert.Equal(t, "us-east-1", got.Region)
	})

	t.Run("archive failure", func(t *testing.T) {
		newLogArchive = func(context.Context, jobs.S3Config) (jobs.LogArchive, error) {
			return nil, errors.New("no creds")
		}
		c := testConfig(t)
		c.S3Bucket = "logs"

		_, err := NewApp(context.Background(), c, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log archive init error")
	})

	t.Run("no bucket skips archive", func(t *testing.T) {
		called := false
		newLogArchive = func(context.Context, jobs.S3Config) (jobs.LogArchive, error) {
			called = true
			return stubArchive{}, nil
		}
		app, err := NewApp(context.Background(), testConfig(t), &bytes.Buffer{})
		require.NoError(t, err)
		t.Cleanup(func() { _ = app.db.Close() })
		assert.False(t, called)
	})
}

func TestNewApp_CreatesSyncWorkDir(t *testing.T) {
	c := testConfig(t)
	c.SyncWorkDir = filepath.Join(t.TempDir(), "work", "sync")

	app, err := NewApp(context.Background(), c, &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	assert.DirExists(t, c.SyncWorkDir)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	var logs bytes.Buffer
	app, err := NewApp(context.Background(), testConfig(t), &logs)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Contains(t, logs.String(), "App stopped")
}
