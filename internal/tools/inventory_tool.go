package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

const listServersName = "list_servers"

type ListServersParams struct{}

// registerInventoryTool exposes the configured inventory to the model so it
// can resolve vague server references. Credentials never leave this process.
func (rt *Runtime) registerInventoryTool(r *Registry) {
	r.RegisterTool(&ToolDefinition{
		NameValue:        listServersName,
		DescriptionValue: "List the configured target servers (name, host, port, username). Use this to resolve which server the user means.",
		ParametersValue:  mustSchemaParametersFor[ListServersParams](),
		ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
			type serverInfo struct {
				Name     string `json:"name"`
				Host     string `json:"host"`
				Port     string `json:"port,omitempty"`
				Username string `json:"username"`
				OSHint   string `json:"os_hint,omitempty"`
			}

			var servers []serverInfo
			for _, name := range rt.Inventory.Names() {
				srv, err := rt.Inventory.Lookup(name)
				if err != nil {
					continue
				}
				servers = append(servers, serverInfo{
					Name:     srv.Name,
					Host:     srv.Host,
					Port:     srv.Port,
					Username: srv.Username,
					OSHint:   srv.OSHint,
				})
			}

			raw, err := json.MarshalIndent(map[string]interface{}{
				"count":   len(servers),
				"servers": servers,
			}, "", "  ")
			if err != nil {
				return "", fmt.Errorf("render inventory: %w", err)
			}
			return string(raw), nil
		},
	})
}
