// Package jobs runs the library fetch as an external command and archives
// its output.
package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/dmitrijs2005/shelfsync/internal/logging"
)

const (
	waitDelay      = 2 * time.Second
	maxStderrInErr = 2000
)

// CommandJob runs argv with "--user-id <id>" appended.
type CommandJob struct {
	argv    []string
	dir     string
	archive LogArchive
	log     logging.Logger
}

type CommandOption func(*CommandJob)

// WithDir sets the working directory of the command.
func WithDir(dir string) CommandOption {
	return func(j *CommandJob) { j.dir = dir }
}

// WithArchive stores the command output of every run.
func WithArchive(a LogArchive) CommandOption {
	return func(j *CommandJob) { j.archive = a }
}

func WithLogger(l logging.Logger) CommandOption {
	return func(j *CommandJob) { j.log = l }
}

func NewCommandJob(argv []string, opts ...CommandOption) (*CommandJob, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, errors.New("jobs: empty sync command")
	}
	j := &CommandJob{argv: append([]string(nil), argv...), log: logging.Nop()}
	for _, o := range opts {
		o(j)
	}
	return j, nil
}

// Run executes the command for userID. A non-zero exit is returned as an
// error carrying the tail of the command's stderr; an expired ctx yields
// ctx.Err(). Once ctx is done the process is killed and Run returns within
// waitDelay, even if a child process still holds the output pipes. Only the
// last maxOutputBytes of each stream are kept.
func (j *CommandJob) Run(ctx context.Context, userID string) (string, error) {
	args := append(append([]string(nil), j.argv[1:]...), "--user-id", userID)

	cmd := exec.CommandContext(ctx, j.argv[0], args...)
	cmd.Dir = j.dir
	cmd.WaitDelay = waitDelay

	stdout, stderr := newTailBuffer(maxOutputBytes), newTailBuffer(maxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	started := time.Now()
	runErr := cmd.Run()
	j.log.Debug(ctx, "sync command finished", "user_id", userID, "elapsed", time.Since(started), "error", runErr)

	j.store(ctx, userID, stdout.Bytes(), stderr.Bytes())

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = "no error output"
			}
			msg = common.TailRunes(msg, maxStderrInErr)
			return "", fmt.Errorf("exit status %d: %s", exitErr.ExitCode(), msg)
		}
		return "", fmt.Errorf("start sync command: %w", runErr)
	}

	return "", nil
}

func (j *CommandJob) store(ctx context.Context, userID string, stdout, stderr []byte) {
	if j.archive == nil {
		return
	}

	var buf bytes.Buffer
	buf.WriteString("== stdout ==\n")
	buf.Write(stdout)
	buf.WriteString("\n== stderr ==\n")
	buf.Write(stderr)

	// The run context may already be expired; archiving gets its own budget.
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	key, err := j.archive.Store(actx, userID, buf.Bytes())
	if err != nil {
		j.log.Warn(ctx, "archive sync output", "user_id", userID, "error", err)
		return
	}
	j.log.Debug(ctx, "sync output archived", "user_id", userID, "key", key)
}
