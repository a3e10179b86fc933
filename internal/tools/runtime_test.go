package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

func allToolsPolicy() Policy {
	return PolicyFromLists([]string{
		listServersName,
		diskCheckName,
		ramCheckName,
		portCheckName,
		javaCheckName,
		javaInstallName,
		tomcatInstallName,
		tomcatUninstallName,
		tomcatStartName,
		tomcatStopName,
		tomcatValidateName,
	}, nil, nil)
}

func testInventory(servers ...config.Server) *config.Inventory {
	if len(servers) == 0 {
		servers = []config.Server{{Name: "web-01", Host: "192.0.2.10", Username: "tomcat"}}
	}
	return &config.Inventory{Servers: servers}
}

func decodeResult(t *testing.T, payload string) *Result {
	t.Helper()
	var result Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		t.Fatalf("decode result %q: %v", payload, err)
	}
	return &result
}

func TestRuntimeToolDialsAndCloses(t *testing.T) {
	ex := (&fakeExecutor{osType: remote.OSLinux}).
		on("df -Pm", "/dev/sda1 40960 10240 30720 25% /\n", "")
	rt := NewRuntime(&config.Settings{}, testInventory(), func(context.Context, *config.Server) (remote.Executor, error) {
		return ex, nil
	}, testLogger())
	r := NewRegistry(allToolsPolicy())
	rt.RegisterAll(r)

	out := r.Execute(context.Background(), diskCheckName, nil)
	if out.Error != nil {
		t.Fatalf("unexpected error: %v", out.Error)
	}
	result := decodeResult(t, out.Result)
	if result.Status != StatusSuccess {
		t.Fatalf("expected Success, got %s: %s", result.Status, result.Details)
	}
	if !ex.closed {
		t.Fatal("expected executor closed after the call")
	}
}

func TestRuntimeDialFailureBecomesResult(t *testing.T) {
	rt := NewRuntime(&config.Settings{}, testInventory(), func(context.Context, *config.Server) (remote.Executor, error) {
		return nil, errors.New("connection refused")
	}, testLogger())
	r := NewRegistry(allToolsPolicy())
	rt.RegisterAll(r)

	out := r.Execute(context.Background(), diskCheckName, nil)
	// Connection problems surface as Failed results, not tool errors, so the
	// model can read them.
	if out.Error != nil {
		t.Fatalf("expected nil error, got %v", out.Error)
	}
	result := decodeResult(t, out.Result)
	if result.Status != StatusFailed {
		t.Fatalf("expected Failed, got %s", result.Status)
	}
	if !strings.Contains(result.Details, "unable to connect to web-01") {
		t.Fatalf("unexpected details: %s", result.Details)
	}
}

func TestRuntimeAmbiguousServer(t *testing.T) {
	inv := testInventory(
		config.Server{Name: "web-01", Host: "192.0.2.10", Username: "tomcat"},
		config.Server{Name: "web-02", Host: "192.0.2.11", Username: "tomcat"},
	)
	rt := NewRuntime(&config.Settings{}, inv, func(context.Context, *config.Server) (remote.Executor, error) {
		t.Fatal("dial must not run when the server is ambiguous")
		return nil, nil
	}, testLogger())
	r := NewRegistry(allToolsPolicy())
	rt.RegisterAll(r)

	out := r.Execute(context.Background(), diskCheckName, nil)
	if out.Error != nil {
		t.Fatalf("expected nil error, got %v", out.Error)
	}
	result := decodeResult(t, out.Result)
	if result.Status != StatusFailed {
		t.Fatalf("expected Failed, got %s", result.Status)
	}
}

func TestRuntimeRegistersAllTools(t *testing.T) {
	rt := NewRuntime(&config.Settings{}, testInventory(), nil, testLogger())
	r := NewRegistry(allToolsPolicy())
	rt.RegisterAll(r)

	names := r.GetToolNames()
	if len(names) != 11 {
		t.Fatalf("expected 11 tools, got %d: %v", len(names), names)
	}
	for _, name := range []string{listServersName, javaInstallName, tomcatValidateName} {
		found := false
		for _, n := range names {
			if n == name {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing tool %s in %v", name, names)
		}
	}
}

func TestInventoryToolOmitsCredentials(t *testing.T) {
	inv := testInventory(config.Server{
		Name: "web-01", Host: "192.0.2.10", Username: "tomcat", Password: "hunter2",
	})
	rt := NewRuntime(&config.Settings{}, inv, nil, testLogger())
	r := NewRegistry(allToolsPolicy())
	rt.RegisterAll(r)

	out := r.Execute(context.Background(), listServersName, nil)
	if out.Error != nil {
		t.Fatalf("unexpected error: %v", out.Error)
	}
	if strings.Contains(out.Result, "hunter2") {
		t.Fatal("password leaked into tool output")
	}
	if !strings.Contains(out.Result, "web-01") {
		t.Fatalf("expected server listed, got %q", out.Result)
	}
}
