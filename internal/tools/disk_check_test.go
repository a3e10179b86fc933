package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestDiskCheckLinuxSuccess(t *testing.T) {
	ex := (&fakeExecutor{osType: remote.OSLinux}).
		on("df -Pm", "/dev/sda1 40960 10240 30720 25% /\n", "")

	result := DiskCheck(context.Background(), ex, nil, DiskCheckParams{}, testLogger())

	if result.Status != StatusSuccess {
		t.Fatalf("expected Success, got %s: %s", result.Status, result.Details)
	}
	if result.Metrics["free_mb"] != 30720 {
		t.Fatalf("expected free_mb 30720, got %v", result.Metrics["free_mb"])
	}
	if !ex.ran("df -Pm '/'") {
		t.Fatalf("expected df against /, got %v", ex.commands)
	}
}

func TestDiskCheckLinuxBelowThreshold(t *testing.T) {
	ex := (&fakeExecutor{osType: remote.OSLinux}).
		on("df -Pm", "/dev/sda1 4096 3584 512 88% /\n", "")

	result := DiskCheck(context.Background(), ex, nil, DiskCheckParams{MinFreeMB: 1024}, testLogger())

	if result.Status != StatusFailed {
		t.Fatalf("expected Failed, got %s", result.Status)
	}
	if !strings.Contains(result.Details, "below threshold") {
		t.Fatalf("unexpected details: %s", result.Details)
	}
}

func TestDiskCheckWindowsParsesMetrics(t *testing.T) {
	ex := (&fakeExecutor{osType: remote.OSWindows}).
		on("Win32_LogicalDisk", "TOTAL=102400;FREE=51200\r\n", "")

	section := config.Section{
		"windows": map[string]interface{}{"path": `D:\apps`, "min_free_mb": 1024},
	}
	result := DiskCheck(context.Background(), ex, section, DiskCheckParams{}, testLogger())

	if result.Status != StatusSuccess {
		t.Fatalf("expected Success, got %s: %s", result.Status, result.Details)
	}
	if result.Metrics["used_mb"] != 51200 {
		t.Fatalf("expected derived used_mb, got %v", result.Metrics)
	}
	if !ex.ran("DeviceID='D:'") {
		t.Fatalf("expected drive D: in command, got %v", ex.commands)
	}
}

func TestDiskCheckWindowsDiskNotFound(t *testing.T) {
	ex := (&fakeExecutor{osType: remote.OSWindows}).
		on("Win32_LogicalDisk", "ERROR:DiskNotFound", "")

	result := DiskCheck(context.Background(), ex, nil, DiskCheckParams{}, testLogger())
	if result.Status != StatusFailed {
		t.Fatalf("expected Failed, got %s", result.Status)
	}
}

func TestDiskCheckUnsupportedOS(t *testing.T) {
	ex := &fakeExecutor{osType: remote.OSUnknown}
	result := DiskCheck(context.Background(), ex, nil, DiskCheckParams{}, testLogger())
	if result.Status != StatusFailed {
		t.Fatalf("expected Failed for unknown OS, got %s", result.Status)
	}
}

func TestParseSemicolonMetrics(t *testing.T) {
	metrics := parseSemicolonMetrics("TOTAL=100;FREE=40")
	if metrics == nil {
		t.Fatal("expected metrics")
	}
	if metrics["used_mb"] != 60 {
		t.Fatalf("expected used_mb 60, got %v", metrics["used_mb"])
	}
	if parseSemicolonMetrics("garbage") != nil {
		t.Fatal("expected nil for unparseable payload")
	}
}
