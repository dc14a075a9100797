package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/client/api"
	"github.com/dmitrijs2005/shelfsync/internal/client/config"
)

type fakeAPI struct {
	loginUser, loginPass, loginMarket string
	loginRes                          *api.LoginResponse
	loginErr                          error

	otpSession, otpCode string
	otpRes              *api.LoginResponse
	otpErr              error

	me    *api.MeResponse
	meErr error

	logoutCalls int
	logoutErr   error

	msg    *api.MessageResponse
	msgErr error

	statuses    []*api.SyncStatus
	statusCalls int
	statusErr   error

	health    *api.Health
	healthErr error
}

func (f *fakeAPI) Login(_ context.Context, username string, password []byte, marketplace string) (*api.LoginResponse, error) {
	f.loginUser, f.loginPass, f.loginMarket = username, string(password), marketplace
	return f.loginRes, f.loginErr
}

func (f *fakeAPI) VerifyOTP(_ context.Context, sessionID, code string) (*api.LoginResponse, error) {
	f.otpSession, f.otpCode = sessionID, code
	return f.otpRes, f.otpErr
}

func (f *fakeAPI) Me(context.Context) (*api.MeResponse, error) { return f.me, f.meErr }

func (f *fakeAPI) Logout(context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAPI) TestAccess(context.Context) (*api.MessageResponse, error) { return f.msg, f.msgErr }
func (f *fakeAPI) TriggerSync(context.Context) (*api.MessageResponse, error) {
	return f.msg, f.msgErr
}
func (f *fakeAPI) ResetSync(context.Context) (*api.MessageResponse, error) { return f.msg, f.msgErr }

// SyncStatus replays statuses in order and then repeats the last one.
func (f *fakeAPI) SyncStatus(context.Context) (*api.SyncStatus, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	i := f.statusCalls
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	f.statusCalls++
	return f.statuses[i], nil
}

func (f *fakeAPI) Health(context.Context) (*api.Health, error) { return f.health, f.healthErr }

func newTestApp(f *fakeAPI, input string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{
		config: &config.Config{Marketplace: "us", PollInterval: time.Millisecond},
		api:    f,
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    &out,
	}, &out
}
