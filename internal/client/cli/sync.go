package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/client/api"
)

func (a *App) Sync(ctx context.Context) error {
	res, err := a.api.TriggerSync(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Message)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	st, err := a.api.SyncStatus(ctx)
	if err != nil {
		return err
	}
	a.printStatus(st)
	return nil
}

// Wait polls the sync status every PollInterval until no sync is running.
func (a *App) Wait(ctx context.Context) error {
	interval := a.config.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := ""
	for {
		st, err := a.api.SyncStatus(ctx)
		if err != nil {
			return err
		}
		if st.StatusMessage != last {
			fmt.Fprintln(a.out, st.StatusMessage)
			last = st.StatusMessage
		}
		if !st.IsSyncing {
			a.printStatus(st)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *App) Reset(ctx context.Context) error {
	res, err := a.api.ResetSync(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Message)
	return nil
}

func (a *App) Health(ctx context.Context) error {
	h, err := a.api.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "server: %s, database: %s\n", h.Status, h.Database)
	return nil
}

func (a *App) printStatus(st *api.SyncStatus) {
	last := "never"
	if st.LastSync != nil {
		last = st.LastSync.Local().Format(time.RFC1123)
	}
	fmt.Fprintf(a.out, "state: %s, syncing: %t, last sync: %s\n%s\n", st.State, st.IsSyncing, last, st.StatusMessage)
}
