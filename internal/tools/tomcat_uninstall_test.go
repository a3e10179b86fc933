package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

func TestTomcatUninstallLinux(t *testing.T) {
	section := config.Section{
		"linux": map[string]interface{}{
			"logs_dir": "/var/log/tomcat",
		},
	}
	ex := &fakeExecutor{osType: remote.OSLinux}

	result := TomcatUninstall(context.Background(), ex, section,
		TomcatUninstallParams{TomcatHome: "/opt/tomcat"}, testLogger())

	if result.Status != StatusSuccess {
		t.Fatalf("expected Success, got %s: %s", result.Status, result.Details)
	}
	if !ex.ran("'/opt/tomcat/bin/shutdown.sh'") {
		t.Fatalf("expected best-effort stop before removal, got %v", ex.commands)
	}
	if !ex.ran("rm -rf '/opt/tomcat'") {
		t.Fatalf("expected home removal, got %v", ex.commands)
	}
	if !ex.ran("rm -rf '/var/log/tomcat'") {
		t.Fatalf("expected logs removal, got %v", ex.commands)
	}
}

func TestTomcatUninstallKeepsLogsWhenDisabled(t *testing.T) {
	section := config.Section{
		"linux": map[string]interface{}{
			"logs_dir": "/var/log/tomcat",
		},
	}
	ex := &fakeExecutor{osType: remote.OSLinux}
	keep := false

	result := TomcatUninstall(context.Background(), ex, section,
		TomcatUninstallParams{TomcatHome: "/opt/tomcat", CleanupLogs: &keep}, testLogger())

	if result.Status != StatusSuccess {
		t.Fatalf("expected Success, got %s", result.Status)
	}
	if ex.ran("/var/log/tomcat") {
		t.Fatalf("expected logs directory untouched, got %v", ex.commands)
	}
}

func TestTomcatUninstallWindows(t *testing.T) {
	ex := &fakeExecutor{osType: remote.OSWindows}

	result := TomcatUninstall(context.Background(), ex, nil,
		TomcatUninstallParams{TomcatHome: `C:\Tomcat\apache-tomcat-10.1.30`}, testLogger())

	if result.Status != StatusSuccess {
		t.Fatalf("expected Success, got %s: %s", result.Status, result.Details)
	}
	if !ex.ran("Remove-Item -LiteralPath 'C:\\Tomcat\\apache-tomcat-10.1.30' -Recurse -Force") {
		t.Fatalf("expected removal command, got %v", ex.commands)
	}
}

func TestTomcatUninstallHomeFromSettings(t *testing.T) {
	section := config.Section{
		"linux": map[string]interface{}{
			"tomcat_home": "/srv/tomcat",
		},
	}
	ex := &fakeExecutor{osType: remote.OSLinux}

	result := TomcatUninstall(context.Background(), ex, section, TomcatUninstallParams{}, testLogger())
	if result.Status != StatusSuccess {
		t.Fatalf("expected Success, got %s", result.Status)
	}
	if !ex.ran("rm -rf '/srv/tomcat'") {
		t.Fatalf("expected configured home removal, got %v", ex.commands)
	}
}

func TestTomcatUninstallMissingHome(t *testing.T) {
	ex := &fakeExecutor{osType: remote.OSLinux}

	result := TomcatUninstall(context.Background(), ex, nil, TomcatUninstallParams{}, testLogger())
	if result.Status != StatusFailed {
		t.Fatalf("expected Failed, got %s", result.Status)
	}
	if !strings.Contains(result.Details, "not supplied") {
		t.Fatalf("unexpected details: %s", result.Details)
	}
	if len(ex.commands) != 0 {
		t.Fatalf("expected no commands, got %v", ex.commands)
	}
}
