package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

const ssListening8080 = `State  Recv-Q Send-Q Local Address:Port
LISTEN 0      100        0.0.0.0:8080
`

func startSection() config.Section {
	return config.Section{
		"port":          8080,
		"ready_timeout": 1,
	}
}

func TestTomcatStartLinux(t *testing.T) {
	ex := (&fakeExecutor{osType: remote.OSLinux}).
		on("startup.sh", "Tomcat process started", "").
		on("ss -ltn", ssListening8080, "")

	result := TomcatStart(context.Background(), ex, startSection(),
		TomcatStartParams{TomcatHome: "/opt/tomcat"}, testLogger())

	if result.Status != StatusSuccess {
		t.Fatalf("expected Success, got %s: %s", result.Status, result.Details)
	}
	if result.TomcatHome != "/opt/tomcat" {
		t.Fatalf("expected tomcat_home carried through, got %q", result.TomcatHome)
	}
	if !ex.ran("nohup ./startup.sh") {
		t.Fatalf("expected detached startup, got %v", ex.commands)
	}
}

func TestTomcatStartStderrIsWarning(t *testing.T) {
	ex := (&fakeExecutor{osType: remote.OSLinux}).
		on("startup.sh", "", "Warning: Tomcat process not detected yet").
		on("ss -ltn", ssListening8080, "")

	result := TomcatStart(context.Background(), ex, startSection(),
		TomcatStartParams{TomcatHome: "/opt/tomcat"}, testLogger())

	if result.Status != StatusWarning {
		t.Fatalf("expected Warning on launch stderr, got %s", result.Status)
	}
}

func TestTomcatStartPortTimeout(t *testing.T) {
	// Only port 22 listens, so readiness never arrives.
	ex := (&fakeExecutor{osType: remote.OSLinux}).
		on("ss -ltn", "LISTEN 0 128 0.0.0.0:22 \n", "")

	result := TomcatStart(context.Background(), ex, startSection(),
		TomcatStartParams{TomcatHome: "/opt/tomcat"}, testLogger())

	if result.Status != StatusFailed {
		t.Fatalf("expected Failed on readiness timeout, got %s", result.Status)
	}
	if !strings.Contains(result.Details, "Timed out waiting for Tomcat port 8080") {
		t.Fatalf("unexpected details: %s", result.Details)
	}
}

func TestTomcatStartCustomCommandTemplate(t *testing.T) {
	section := config.Section{
		"port":          8080,
		"ready_timeout": 1,
		"start_command": "systemctl start tomcat@{tomcat_home}",
	}
	ex := (&fakeExecutor{osType: remote.OSLinux}).
		on("ss -ltn", ssListening8080, "")

	result := TomcatStart(context.Background(), ex, section,
		TomcatStartParams{TomcatHome: "/opt/tomcat"}, testLogger())

	if result.Status != StatusSuccess {
		t.Fatalf("expected Success, got %s: %s", result.Status, result.Details)
	}
	if !ex.ran("systemctl start tomcat@/opt/tomcat") {
		t.Fatalf("expected templated command, got %v", ex.commands)
	}
}

func TestTomcatStartWindows(t *testing.T) {
	ex := (&fakeExecutor{osType: remote.OSWindows}).
		on("startup.bat", "Tomcat process started", "").
		on("netstat -ano", "  TCP    0.0.0.0:8080           0.0.0.0:0              LISTENING       1234\n", "")

	result := TomcatStart(context.Background(), ex, startSection(),
		TomcatStartParams{TomcatHome: `C:\Tomcat`}, testLogger())

	if result.Status != StatusSuccess {
		t.Fatalf("expected Success, got %s: %s", result.Status, result.Details)
	}
	if !ex.ran("Start-Process -FilePath 'cmd.exe'") {
		t.Fatalf("expected hidden cmd launch, got %v", ex.commands)
	}
}

func TestTomcatStartMissingHome(t *testing.T) {
	ex := &fakeExecutor{osType: remote.OSLinux}

	result := TomcatStart(context.Background(), ex, nil, TomcatStartParams{}, testLogger())
	if result.Status != StatusFailed {
		t.Fatalf("expected Failed, got %s", result.Status)
	}
}

func TestResolveSeconds(t *testing.T) {
	osCfg := config.Section{"ready_timeout": 30}
	section := config.Section{"ready_timeout": 60}
	if got := resolveSeconds(osCfg, section, "ready_timeout", 120); got.Seconds() != 30 {
		t.Fatalf("expected OS block to win, got %v", got)
	}
	if got := resolveSeconds(nil, section, "ready_timeout", 120); got.Seconds() != 60 {
		t.Fatalf("expected tool block fallback, got %v", got)
	}
	if got := resolveSeconds(nil, nil, "ready_timeout", 120); got.Seconds() != 120 {
		t.Fatalf("expected default, got %v", got)
	}
}
