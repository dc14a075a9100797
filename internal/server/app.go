// Package server wires the shelfsync components together and runs the
// HTTP API until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/cryptox"
	"github.com/dmitrijs2005/shelfsync/internal/filex"
	"github.com/dmitrijs2005/shelfsync/internal/logging"
	"github.com/dmitrijs2005/shelfsync/internal/server/auth"
	"github.com/dmitrijs2005/shelfsync/internal/server/challenges"
	"github.com/dmitrijs2005/shelfsync/internal/server/config"
	"github.com/dmitrijs2005/shelfsync/internal/server/httpapi"
	"github.com/dmitrijs2005/shelfsync/internal/server/jobs"
	"github.com/dmitrijs2005/shelfsync/internal/server/provider"
	"github.com/dmitrijs2005/shelfsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/shelfsync/internal/server/services"
	"github.com/dmitrijs2005/shelfsync/internal/server/syncer"
)

const janitorInterval = time.Minute

// openDatabase is a seam for tests.
var openDatabase = repomanager.Open

// newLogArchive is a seam for tests.
var newLogArchive = func(ctx context.Context, cfg jobs.S3Config) (jobs.LogArchive, error) {
	return jobs.NewS3LogArchive(ctx, cfg)
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	challenges  *challenges.MemoryStore
	coordinator *syncer.Coordinator
	http        *httpapi.HTTPServer
}

// NewApp validates c and builds every component. Logs go to w.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(w, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	vault, err := cryptox.NewVault([]byte(c.MasterKey))
	if err != nil {
		return nil, fmt.Errorf("vault init error: %w", err)
	}
	issuer, err := auth.NewIssuer([]byte(c.JWTSecret), c.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	db, m, err := openDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	job, err := newSyncJob(ctx, c, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var bridgeOpts []provider.BridgeOption
	if c.OAuthClientID != "" {
		bridgeOpts = append(bridgeOpts, provider.WithRefresher(provider.NewOAuthRefresher(c.OAuthClientID, nil)))
	}
	client := provider.NewBridgeClient(c.BridgeURL, bridgeOpts...)

	store := challenges.NewMemoryStore(c.ChallengeTTL, logger)
	as := services.NewAuthService(db, m, vault, client, store, issuer, logger)

	coordinator := syncer.NewCoordinator(syncer.NewMemoryStatusStore(), job, m.Accounts(db), logger,
		syncer.WithTimeout(c.SyncTimeout))

	hs := httpapi.NewHTTPServer(c.HTTPAddr, logger, as, coordinator, issuer, db, httpapi.Options{
		CookieSecure:       c.CookieSecure,
		SessionTTL:         c.SessionTTL,
		LoginRatePerMinute: c.LoginRatePerMinute,
	})

	logger.Info(ctx, "App initialized", "dialect", string(m.Dialect()), "bridge", c.BridgeURL)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		challenges:  store,
		coordinator: coordinator,
		http:        hs,
	}, nil
}

func newSyncJob(ctx context.Context, c *config.Config, logger logging.Logger) (*jobs.CommandJob, error) {
	opts := []jobs.CommandOption{jobs.WithLogger(logger)}

	if c.SyncWorkDir != "" {
		dir, err := filex.EnsureDir(c.SyncWorkDir, 0o750)
		if err != nil {
			return nil, fmt.Errorf("sync workdir: %w", err)
		}
		opts = append(opts, jobs.WithDir(dir))
	}

	if c.S3Bucket != "" {
		archive, err := newLogArchive(ctx, jobs.S3Config{
			Region:    c.S3Region,
			Endpoint:  c.S3BaseEndpoint,
			AccessKey: c.S3RootUser,
			SecretKey: c.S3RootPassword,
			Bucket:    c.S3Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("log archive init error: %w", err)
		}
		opts = append(opts, jobs.WithArchive(archive))
	}

	job, err := jobs.NewCommandJob(strings.Fields(c.SyncCommand), opts...)
	if err != nil {
		return nil, fmt.Errorf("sync job init error: %w", err)
	}
	return job, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// waits for in-flight sync jobs and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	app.challenges.StartJanitor(ctx, janitorInterval)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "Waiting for sync jobs...")
	app.coordinator.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
