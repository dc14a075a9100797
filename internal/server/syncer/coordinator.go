package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/dmitrijs2005/shelfsync/internal/logging"
	"github.com/dmitrijs2005/shelfsync/internal/server/models"
)

// Job fetches the library of one user. The returned message, if any,
// replaces the default completion message.
//
// Run must return soon after ctx is done. The coordinator reports a run
// that outlives its timeout as timed out, but the user stays in the syncing
// state until Run returns, so a job that ignores ctx holds the slot.
// jobs.CommandJob kills its process at the deadline and returns within a
// couple of seconds.
type Job interface {
	Run(ctx context.Context, userID string) (string, error)
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context, userID string) (string, error)

func (f JobFunc) Run(ctx context.Context, userID string) (string, error) { return f(ctx, userID) }

// Accounts is the durable side of the sync status.
type Accounts interface {
	Get(ctx context.Context, userID string) (*models.Account, error)
	UpdateSyncStatus(ctx context.Context, userID string, status models.SyncStatus, lastSync *time.Time) error
}

// TriggerResult tells whether Trigger started a job.
type TriggerResult int

const (
	Started TriggerResult = iota
	AlreadyRunning
)

func (r TriggerResult) String() string {
	if r == AlreadyRunning {
		return "already_running"
	}
	return "started"
}

// Coordinator runs sync jobs in supervised goroutines.
type Coordinator struct {
	store    StatusStore
	job      Job
	accounts Accounts
	log      logging.Logger
	timeout  time.Duration
	now      func() time.Time

	wg sync.WaitGroup
}

type Option func(*Coordinator)

// WithTimeout bounds each job run (common.SyncTimeout by default).
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewCoordinator(store StatusStore, job Job, accounts Accounts, log logging.Logger, opts ...Option) *Coordinator {
	if log == nil {
		log = logging.Nop()
	}
	c := &Coordinator{
		store:    store,
		job:      job,
		accounts: accounts,
		log:      log,
		timeout:  common.SyncTimeout,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Trigger starts a sync for userID unless one is already running.
// Job failures are never returned here; they are reported through Status.
func (c *Coordinator) Trigger(ctx context.Context, userID string) (TriggerResult, error) {
	if userID == "" {
		return AlreadyRunning, errors.New("syncer: empty user id")
	}
	if !c.store.TryBegin(userID, MessageStarting) {
		c.log.Info(ctx, "sync already in progress", "user_id", userID)
		return AlreadyRunning, nil
	}

	// The job outlives the request that started it.
	jobCtx := context.WithoutCancel(ctx)

	c.wg.Add(1)
	go c.run(jobCtx, userID)

	c.log.Info(ctx, "sync started", "user_id", userID)
	return Started, nil
}

// Status returns the user's sync status, filling LastSync from the durable
// record when the process has not seen a sync for the user yet.
func (c *Coordinator) Status(ctx context.Context, userID string) Status {
	s := c.store.Get(userID)
	if s.LastSync != nil || c.accounts == nil {
		return s
	}

	acc, err := c.accounts.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			c.log.Warn(ctx, "load last sync", "user_id", userID, "error", err)
		}
		return s
	}
	if acc.LastSync == nil {
		return s
	}

	last := *acc.LastSync
	c.store.Update(userID, func(st *Status) {
		if st.LastSync == nil {
			st.LastSync = &last
		}
	})
	return c.store.Get(userID)
}

// Reset puts a finished record back to idle. It refuses while a job runs.
func (c *Coordinator) Reset(userID string) error {
	var running bool
	c.store.Update(userID, func(s *Status) {
		if s.IsSyncing {
			running = true
			return
		}
		s.State = StateIdle
		s.Message = MessageReady
	})
	if running {
		return common.ErrSyncAlreadyRunning
	}
	return nil
}

// Wait blocks until all started jobs have finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) run(ctx context.Context, userID string) {
	defer c.wg.Done()
	defer c.store.Finish(userID)

	c.persist(ctx, userID, models.SyncStatusSyncing, nil)

	jobCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.runJob(jobCtx, userID)
	if err == nil && jobCtx.Err() == nil {
		now := c.now()
		if msg == "" {
			msg = MessageCompleted
		}
		c.store.Update(userID, func(s *Status) {
			s.State = StateCompleted
			s.Message = msg
			s.LastSync = &now
		})
		c.persist(ctx, userID, models.SyncStatusCompleted, &now)
		c.log.Info(ctx, "sync completed", "user_id", userID)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(jobCtx.Err(), context.DeadlineExceeded) {
		c.store.Update(userID, func(s *Status) {
			s.State = StateTimedOut
			s.Message = "Sync timed out after " + humanDuration(c.timeout)
		})
		c.persist(ctx, userID, models.SyncStatusTimedOut, nil)
		c.log.Warn(ctx, "sync timed out", "user_id", userID, "timeout", c.timeout, "error", common.ErrSyncTimeout)
		return
	}

	if err == nil {
		err = jobCtx.Err()
	}
	c.store.Update(userID, func(s *Status) {
		s.State = StateFailed
		s.Message = "Sync failed: " + detail(err)
	})
	c.persist(ctx, userID, models.SyncStatusFailed, nil)
	c.log.Error(ctx, "sync failed", "user_id", userID, "error", err)
}

func (c *Coordinator) runJob(ctx context.Context, userID string) (msg string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return c.job.Run(ctx, userID)
}

func (c *Coordinator) persist(ctx context.Context, userID string, status models.SyncStatus, at *time.Time) {
	if c.accounts == nil {
		return
	}
	if err := c.accounts.UpdateSyncStatus(ctx, userID, status, at); err != nil {
		c.log.Warn(ctx, "persist sync status", "user_id", userID, "status", status, "error", err)
	}
}

const maxDetail = 500

func detail(err error) string {
	return common.TruncateRunes(strings.TrimSpace(err.Error()), maxDetail, "...")
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Minute && d%time.Minute == 0:
		n := int(d / time.Minute)
		if n == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", n)
	case d >= time.Second && d%time.Second == 0:
		return fmt.Sprintf("%d seconds", int(d/time.Second))
	default:
		return d.String()
	}
}
