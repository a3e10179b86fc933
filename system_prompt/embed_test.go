package systemprompt

import (
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	prompt, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "TomcatBot") {
		t.Fatal("expected persona section in prompt")
	}
	if !strings.Contains(prompt, "list_servers") {
		t.Fatal("expected operating rules in prompt")
	}
	if !strings.HasSuffix(prompt, "\n") {
		t.Fatal("expected trailing newline")
	}
}
