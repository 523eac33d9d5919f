package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/Cyclone1070/mfdeploy/internal/config"
)

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
	Duration  time.Duration
}

// OSCommandExecutor implements command execution using os/exec for real system commands.
type OSCommandExecutor struct {
	config config.BuildConfig
}

// NewOSCommandExecutor creates a new OSCommandExecutor with injected config.
func NewOSCommandExecutor(cfg *config.Config) *OSCommandExecutor {
	if cfg == nil {
		panic("cfg is required")
	}
	return &OSCommandExecutor{config: cfg.Build}
}

// Run executes a command with a timeout and graceful shutdown.
// A non-nil error is returned for start failures, non-zero exits, timeouts and cancellation;
// the Result is still populated with whatever output was captured.
func (f *OSCommandExecutor) Run(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}

	// Not CommandContext: cancellation and timeout are handled below so the process gets an interrupt first.
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil

	grace := time.Duration(f.config.GracefulShutdownMs) * time.Millisecond

	// Plain writers, not *os.File: Wait returns only after both streams are
	// fully copied. WaitDelay bounds that when a grandchild keeps a pipe open.
	stdout := newCollector(int(f.config.MaxOutputSize))
	stderr := newCollector(int(f.config.MaxOutputSize))
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = grace

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var execErr error
	select {
	case err := <-done:
		execErr = err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		execErr = ctx.Err()
	case <-time.After(timeout):
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(grace):
			_ = cmd.Process.Kill()
			<-done
		}
		execErr = ErrTimeout
	}

	// The process exited cleanly but left a descendant holding the output open.
	if errors.Is(execErr, exec.ErrWaitDelay) {
		execErr = nil
	}

	exitCode := 0
	if execErr != nil {
		exitCode = getExitCode(execErr)
		if errors.Is(execErr, ErrTimeout) {
			exitCode = -1
		}
		execErr = &CommandError{Cmd: command[0], Cause: execErr, Stage: "wait"}
	}

	return &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ExitCode:  exitCode,
		Truncated: stdout.Truncated() || stderr.Truncated(),
		Duration:  time.Since(start),
	}, execErr
}

func getExitCode(err error) int {
	type exitCoder interface {
		ExitCode() int
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}
