package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/shelfsync/internal/client/api"
	"github.com/dmitrijs2005/shelfsync/internal/client/config"
)

// apiClient is the slice of api.Client the commands use.
type apiClient interface {
	Login(ctx context.Context, username string, password []byte, marketplace string) (*api.LoginResponse, error)
	VerifyOTP(ctx context.Context, sessionID, code string) (*api.LoginResponse, error)
	Me(ctx context.Context) (*api.MeResponse, error)
	Logout(ctx context.Context) error
	TestAccess(ctx context.Context) (*api.MessageResponse, error)
	TriggerSync(ctx context.Context) (*api.MessageResponse, error)
	ResetSync(ctx context.Context) (*api.MessageResponse, error)
	SyncStatus(ctx context.Context) (*api.SyncStatus, error)
	Health(ctx context.Context) (*api.Health, error)
}

type App struct {
	config   *config.Config
	api      apiClient
	reader   *bufio.Reader
	out      io.Writer
	userName string
}

func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	client := api.NewClient(c.ServerURL, api.WithSessionStore(api.NewFileSession(c.SessionFile)))
	return &App{config: c, api: client, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return "(logged out)"
	}
	return fmt.Sprintf("(%s)", a.userName)
}

// Run restores a saved session, if still valid, and starts the REPL.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to shelfsync CLI (type 'help' for commands)")
	_ = a.Me(ctx)
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}
