package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Server is one target host from the INI inventory.
type Server struct {
	Name     string
	Host     string
	Port     string
	Username string
	Password string
	KeyPath  string
	// KeyPassphrase unlocks an encrypted private key at KeyPath.
	KeyPassphrase string
	// OSHint optionally pins the operating system ("linux"/"windows") so the
	// executor can skip probing; empty means detect.
	OSHint string
	// InsecureSkipHostKeyChecking disables known_hosts verification for this
	// host only.
	InsecureSkipHostKeyChecking bool
}

// Inventory is the ordered list of configured servers.
type Inventory struct {
	Servers []Server
}

// LoadInventory parses the INI inventory. A [defaults] section provides
// values merged under every other section; each server section must carry at
// least host and username after the merge.
func LoadInventory(path string) (*Inventory, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("server inventory: %w", err)
	}

	defaults := map[string]string{}
	if section, err := file.GetSection("defaults"); err == nil {
		defaults = section.KeysHash()
	}

	inv := &Inventory{}
	for _, section := range file.Sections() {
		name := section.Name()
		if name == ini.DefaultSection || strings.EqualFold(name, "defaults") {
			continue
		}

		values := make(map[string]string, len(defaults))
		for k, v := range defaults {
			values[k] = v
		}
		for k, v := range section.KeysHash() {
			values[k] = v
		}

		var missing []string
		for _, required := range []string{"host", "username"} {
			if values[required] == "" {
				missing = append(missing, required)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("section %q missing required fields: %s", name, strings.Join(missing, ", "))
		}

		server := Server{
			Name:          name,
			Host:          values["host"],
			Port:          values["port"],
			Username:      values["username"],
			Password:      values["password"],
			KeyPath:       values["key_path"],
			KeyPassphrase: values["key_passphrase"],
			OSHint:        strings.ToLower(values["os"]),
		}
		if v := values["insecure_skip_host_key_checking"]; v != "" {
			server.InsecureSkipHostKeyChecking = strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
		}
		inv.Servers = append(inv.Servers, server)
	}

	if len(inv.Servers) == 0 {
		return nil, fmt.Errorf("server inventory %s defines no servers", path)
	}
	return inv, nil
}

// Lookup resolves a server by name. An empty name resolves only when the
// inventory holds exactly one server.
func (inv *Inventory) Lookup(name string) (*Server, error) {
	if inv == nil || len(inv.Servers) == 0 {
		return nil, fmt.Errorf("no servers configured")
	}
	if name == "" {
		if len(inv.Servers) == 1 {
			return &inv.Servers[0], nil
		}
		return nil, fmt.Errorf("multiple servers configured, specify one of: %s", strings.Join(inv.Names(), ", "))
	}
	for i := range inv.Servers {
		if inv.Servers[i].Name == name || inv.Servers[i].Host == name {
			return &inv.Servers[i], nil
		}
	}
	return nil, fmt.Errorf("server %q not found in inventory", name)
}

// Names returns the configured server names in file order.
func (inv *Inventory) Names() []string {
	names := make([]string, 0, len(inv.Servers))
	for _, server := range inv.Servers {
		names = append(names, server.Name)
	}
	return names
}
