package config

import (
	"strings"
	"testing"
)

const inventoryINI = `
[defaults]
port = 22
username = tomcat

[web-01]
host = 192.0.2.10

[web-02]
host = 192.0.2.11
username = deploy
key_path = /home/deploy/.ssh/id_ed25519
key_passphrase = correct horse
os = Linux
insecure_skip_host_key_checking = true
`

func TestLoadInventory(t *testing.T) {
	path := writeFile(t, "servers.ini", inventoryINI)

	inv, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inv.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(inv.Servers))
	}

	first := inv.Servers[0]
	if first.Name != "web-01" || first.Host != "192.0.2.10" {
		t.Fatalf("unexpected first server: %+v", first)
	}
	if first.Port != "22" || first.Username != "tomcat" {
		t.Fatalf("defaults not merged: %+v", first)
	}

	second := inv.Servers[1]
	if second.Username != "deploy" {
		t.Fatalf("section value should win over defaults: %+v", second)
	}
	if second.OSHint != "linux" {
		t.Fatalf("expected lowercased os hint, got %q", second.OSHint)
	}
	if second.KeyPath != "/home/deploy/.ssh/id_ed25519" || second.KeyPassphrase != "correct horse" {
		t.Fatalf("key settings not loaded: %+v", second)
	}
	if !second.InsecureSkipHostKeyChecking {
		t.Fatal("expected host key checking disabled for web-02")
	}
}

func TestLoadInventoryMissingFields(t *testing.T) {
	path := writeFile(t, "servers.ini", "[web-01]\nport = 22\n")

	_, err := LoadInventory(path)
	if err == nil {
		t.Fatal("expected error for missing host/username")
	}
	if !strings.Contains(err.Error(), "host") || !strings.Contains(err.Error(), "username") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadInventoryEmpty(t *testing.T) {
	path := writeFile(t, "servers.ini", "[defaults]\nport = 22\n")

	if _, err := LoadInventory(path); err == nil {
		t.Fatal("expected error for empty inventory")
	}
}

func TestLookup(t *testing.T) {
	inv := &Inventory{Servers: []Server{
		{Name: "web-01", Host: "192.0.2.10"},
		{Name: "web-02", Host: "192.0.2.11"},
	}}

	if srv, err := inv.Lookup("web-02"); err != nil || srv.Host != "192.0.2.11" {
		t.Fatalf("lookup by name failed: %v %v", srv, err)
	}
	if srv, err := inv.Lookup("192.0.2.10"); err != nil || srv.Name != "web-01" {
		t.Fatalf("lookup by host failed: %v %v", srv, err)
	}
	if _, err := inv.Lookup(""); err == nil {
		t.Fatal("expected error for empty name with multiple servers")
	}
	if _, err := inv.Lookup("web-99"); err == nil {
		t.Fatal("expected error for unknown server")
	}

	single := &Inventory{Servers: []Server{{Name: "only", Host: "192.0.2.20"}}}
	if srv, err := single.Lookup(""); err != nil || srv.Name != "only" {
		t.Fatalf("single-server default lookup failed: %v %v", srv, err)
	}

	var nilInv *Inventory
	if _, err := nilInv.Lookup("web-01"); err == nil {
		t.Fatal("expected error on nil inventory")
	}
}

func TestNamesOrder(t *testing.T) {
	inv := &Inventory{Servers: []Server{{Name: "b"}, {Name: "a"}}}
	names := inv.Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Fatalf("expected file order preserved, got %v", names)
	}
}
