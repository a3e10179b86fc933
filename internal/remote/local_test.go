package remote

import (
	"context"
	"runtime"
	"strings"
	"testing"
)

func TestLocalExecutorRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell assumptions differ on windows")
	}
	ex := NewLocalExecutor()
	defer ex.Close()

	stdout, stderr, err := ex.Run(context.Background(), "echo hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(stdout) != "hello" {
		t.Fatalf("unexpected stdout: %q", stdout)
	}
	if stderr != "" {
		t.Fatalf("unexpected stderr: %q", stderr)
	}
}

func TestLocalExecutorNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell assumptions differ on windows")
	}
	ex := NewLocalExecutor()

	// Non-zero exits surface through stderr, not the error value, matching
	// the SSH executor contract.
	_, stderr, err := ex.Run(context.Background(), "echo oops >&2; exit 3")
	if err != nil {
		t.Fatalf("expected nil error on non-zero exit, got %v", err)
	}
	if strings.TrimSpace(stderr) != "oops" {
		t.Fatalf("unexpected stderr: %q", stderr)
	}
}

func TestLocalExecutorCancelled(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell assumptions differ on windows")
	}
	ex := NewLocalExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := ex.Run(ctx, "sleep 5"); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestLocalExecutorOS(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("probing differs on windows")
	}
	ex := NewLocalExecutor()
	if got := ex.OS(context.Background()); got != OSLinux {
		t.Skipf("host reports %s, expected linux runner", got)
	}
}
