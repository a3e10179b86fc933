package remote

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"sync"

	apperrors "github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/errors"
)

// LocalExecutor runs commands on the controller host itself. It satisfies the
// same contract as the SSH executor so tools and tests can swap them freely.
type LocalExecutor struct {
	osOnce sync.Once
	osType OS
}

// NewLocalExecutor returns an executor for the current host.
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{}
}

// Run executes the command through the platform shell.
func (e *LocalExecutor) Run(ctx context.Context, command string) (string, string, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return stdout.String(), stderr.String(),
			apperrors.Wrap(apperrors.CodeTimeout, "command cancelled", ctx.Err())
	}
	if _, ok := err.(*exec.ExitError); ok {
		// Tools inspect stderr for non-zero exits, matching the SSH path.
		return stdout.String(), stderr.String(), nil
	}
	if err != nil {
		return stdout.String(), stderr.String(),
			apperrors.Wrap(apperrors.CodeToolExecution, "run local command", err)
	}
	return stdout.String(), stderr.String(), nil
}

// OS reports the local operating system, probed once via the same commands
// used against remote hosts so behavior matches in tests.
func (e *LocalExecutor) OS(ctx context.Context) OS {
	e.osOnce.Do(func() {
		if runtime.GOOS == "windows" {
			e.osType = OSWindows
			return
		}
		e.osType = detectOS(ctx, e)
	})
	return e.osType
}

// Close is a no-op for local execution.
func (e *LocalExecutor) Close() error { return nil }
