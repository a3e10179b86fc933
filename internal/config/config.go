// Copyright (C) 2025 Mohammad Gayas Khan
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the agent application configuration.
type Config struct {
	APIKey      string       `yaml:"api_key"`
	APIURL      string       `yaml:"api_url,omitempty"`
	Model       string       `yaml:"model"`
	Temperature *float32     `yaml:"temperature,omitempty"`
	MaxTokens   *int         `yaml:"max_tokens,omitempty"`
	Tools       ToolSettings `yaml:"tools,omitempty"`

	SettingsFile string `yaml:"settings_file,omitempty"`
	ServersFile  string `yaml:"servers_file,omitempty"`

	HistoryFile        string `yaml:"history_file,omitempty"`
	HistoryMaxMessages int    `yaml:"history_max_messages,omitempty"`
}

// ToolSettings describes tool allow/ask/deny lists.
type ToolSettings struct {
	Allow []string `yaml:"allow"`
	Ask   []string `yaml:"ask,omitempty"`
	Deny  []string `yaml:"deny,omitempty"`
}

// DefaultConfig returns a config with default values. Read-only checks run
// freely; anything that mutates a host sits on the ask list.
func DefaultConfig() *Config {
	return &Config{
		Model:              "gpt-4o-mini",
		APIURL:             "https://api.openai.com/v1",
		SettingsFile:       "configs/settings.yaml",
		ServersFile:        "configs/servers.ini",
		HistoryMaxMessages: 100,
		Tools: ToolSettings{
			Allow: []string{
				"list_servers",
				"remote_disk_check",
				"remote_ram_check",
				"remote_port_check",
				"remote_java_check",
				"remote_tomcat_validate",
			},
			Ask: []string{
				"remote_java_install",
				"remote_tomcat_install",
				"remote_tomcat_uninstall",
				"remote_tomcat_start",
				"remote_tomcat_stop",
			},
		},
	}
}

// LoadConfig loads configuration from a YAML file, applies env overrides, and
// validates required fields. A missing file falls back to defaults so the
// agent can run from environment variables alone.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		config.APIKey = val
	}
	if val := os.Getenv("OPENAI_API_URL"); val != "" {
		config.APIURL = val
	}
	if val := os.Getenv("TOMCATBOT_MODEL"); val != "" {
		config.Model = val
	}

	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.APIURL == "" {
		config.APIURL = "https://api.openai.com/v1"
	}

	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required (set api_key in the config file or OPENAI_API_KEY)")
	}

	return config, nil
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
}

// Validate checks the configuration against the registered tool names and
// returns warnings for entries that will never match.
func (c *Config) Validate(registered []string) []ValidationWarning {
	var warnings []ValidationWarning

	if c.Temperature != nil {
		temp := *c.Temperature
		if temp < 0 || temp > 2 {
			warnings = append(warnings, ValidationWarning{
				Field:   "temperature",
				Message: fmt.Sprintf("temperature %.2f is outside recommended range [0, 2]", temp),
			})
		}
	}

	if c.MaxTokens != nil && *c.MaxTokens <= 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "max_tokens",
			Message: fmt.Sprintf("max_tokens %d must be positive", *c.MaxTokens),
		})
	}

	known := make(map[string]bool, len(registered))
	for _, name := range registered {
		known[name] = true
	}
	lists := []struct {
		field string
		names []string
	}{
		{"tools.allow", c.Tools.Allow},
		{"tools.ask", c.Tools.Ask},
		{"tools.deny", c.Tools.Deny},
	}
	for _, list := range lists {
		for _, name := range list.names {
			if !known[name] {
				warnings = append(warnings, ValidationWarning{
					Field:   list.field,
					Message: fmt.Sprintf("tool %q in %s is not registered", name, list.field),
				})
			}
		}
	}

	if c.HistoryMaxMessages <= 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "history_max_messages",
			Message: fmt.Sprintf("history_max_messages %d should be positive, using default", c.HistoryMaxMessages),
		})
	}

	return warnings
}
