package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

func TestTomcatInstallLinux(t *testing.T) {
	section := config.Section{
		"linux": map[string]interface{}{
			"download_url": "https://example.org/apache-tomcat-10.1.30.tar.gz",
			"archive_path": "/tmp/tomcat.tar.gz",
			"install_root": "/opt/tomcat",
		},
	}
	ex := &fakeExecutor{osType: remote.OSLinux}

	result := TomcatInstall(context.Background(), ex, section, testLogger())

	if result.Status != StatusSuccess {
		t.Fatalf("expected Success, got %s: %s", result.Status, result.Details)
	}
	if result.TomcatHome != "/opt/tomcat" {
		t.Fatalf("expected tomcat_home /opt/tomcat, got %q", result.TomcatHome)
	}
	for _, want := range []string{
		"mkdir -p /opt/tomcat",
		"wget -O /tmp/tomcat.tar.gz",
		"tar -xzf /tmp/tomcat.tar.gz -C /opt/tomcat --strip-components=1",
		"rm -f /tmp/tomcat.tar.gz",
		"chmod +x /opt/tomcat/bin/*.sh",
	} {
		if !ex.ran(want) {
			t.Fatalf("expected command %q, got %v", want, ex.commands)
		}
	}
}

func TestTomcatInstallLinuxFinalDirectory(t *testing.T) {
	section := config.Section{
		"linux": map[string]interface{}{
			"download_url":    "https://example.org/tomcat.tar.gz",
			"archive_path":    "/tmp/tomcat.tar.gz",
			"install_root":    "/opt",
			"final_directory": "/opt/apache-tomcat-10.1.30",
			"cleanup_archive": false,
		},
	}
	ex := &fakeExecutor{osType: remote.OSLinux}

	result := TomcatInstall(context.Background(), ex, section, testLogger())

	if result.TomcatHome != "/opt/apache-tomcat-10.1.30" {
		t.Fatalf("expected configured final directory, got %q", result.TomcatHome)
	}
	if ex.ran("rm -f") {
		t.Fatalf("expected archive kept, got %v", ex.commands)
	}
}

func TestTomcatInstallWindows(t *testing.T) {
	section := config.Section{
		"windows": map[string]interface{}{
			"download_url":      "https://example.org/tomcat.zip",
			"archive_path":      `C:\temp\tomcat.zip`,
			"install_root":      `C:\Tomcat`,
			"min_download_size": 1000,
		},
	}
	ex := (&fakeExecutor{osType: remote.OSWindows}).
		on("Get-Item", "500000\r\n", "").
		on("Get-ChildItem -Path $destination -Directory", "apache-tomcat-10.1.30\r\n", "")

	result := TomcatInstall(context.Background(), ex, section, testLogger())

	if result.Status != StatusSuccess {
		t.Fatalf("expected Success, got %s: %s", result.Status, result.Details)
	}
	if result.TomcatHome != `C:\Tomcat\apache-tomcat-10.1.30` {
		t.Fatalf("unexpected tomcat_home %q", result.TomcatHome)
	}
	if !ex.ran("Remove-Item -Force $archive") {
		t.Fatalf("expected archive cleanup, got %v", ex.commands)
	}
}

func TestTomcatInstallLinuxDownloadErrorFails(t *testing.T) {
	section := config.Section{
		"linux": map[string]interface{}{
			"download_url": "https://example.org/tomcat.tar.gz",
			"archive_path": "/tmp/tomcat.tar.gz",
			"install_root": "/opt/tomcat",
		},
	}
	// A timed-out transfer must not report a completed install.
	ex := (&fakeExecutor{osType: remote.OSLinux}).
		onErr("wget", errors.New("command timed out after 2m0s: wget"))

	result := TomcatInstall(context.Background(), ex, section, testLogger())

	if result.Status != StatusFailed {
		t.Fatalf("expected Failed on download error, got %s: %s", result.Status, result.Details)
	}
	if result.TomcatHome != "" {
		t.Fatalf("tomcat_home must stay empty on failure, got %q", result.TomcatHome)
	}
	if ex.ran("tar -x") {
		t.Fatalf("extraction must not run after a failed download, got %v", ex.commands)
	}
}

func TestTomcatInstallLinuxExtractErrorFails(t *testing.T) {
	section := config.Section{
		"linux": map[string]interface{}{
			"download_url": "https://example.org/tomcat.tar.gz",
			"archive_path": "/tmp/tomcat.tar.gz",
			"install_root": "/opt/tomcat",
		},
	}
	ex := (&fakeExecutor{osType: remote.OSLinux}).
		onErr("tar -xzf", errors.New("connection lost"))

	result := TomcatInstall(context.Background(), ex, section, testLogger())

	if result.Status != StatusFailed {
		t.Fatalf("expected Failed on extract error, got %s", result.Status)
	}
	if ex.ran("chmod +x") {
		t.Fatalf("permissions step must not run after a failed extract, got %v", ex.commands)
	}
}

func TestTomcatInstallMissingConfig(t *testing.T) {
	ex := &fakeExecutor{osType: remote.OSWindows}
	result := TomcatInstall(context.Background(), ex, nil, testLogger())
	if result.Status != StatusFailed {
		t.Fatalf("expected Failed, got %s", result.Status)
	}
}

func TestJoinRemotePath(t *testing.T) {
	cases := []struct {
		base, leaf, want string
	}{
		{`C:\Tomcat`, "apache-tomcat-10", `C:\Tomcat\apache-tomcat-10`},
		{"/opt", "tomcat", "/opt/tomcat"},
		{"/opt/", "tomcat", "/opt/tomcat"},
		{"/opt", "", "/opt"},
	}
	for _, tc := range cases {
		if got := joinRemotePath(tc.base, tc.leaf); got != tc.want {
			t.Errorf("joinRemotePath(%q, %q) = %q, want %q", tc.base, tc.leaf, got, tc.want)
		}
	}
}
