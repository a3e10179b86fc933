package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

// DialFunc opens an executor for one inventory server. Swapped out in tests.
type DialFunc func(ctx context.Context, server *config.Server) (remote.Executor, error)

// DialSSH is the production DialFunc.
func DialSSH(ctx context.Context, server *config.Server) (remote.Executor, error) {
	return remote.Connect(remote.SSHConfig{
		Host:                        server.Host,
		Port:                        server.Port,
		User:                        server.Username,
		Password:                    server.Password,
		KeyPath:                     server.KeyPath,
		Passphrase:                  []byte(server.KeyPassphrase),
		OSHint:                      server.OSHint,
		InsecureSkipHostKeyChecking: server.InsecureSkipHostKeyChecking,
		ConnectTimeout:              15 * time.Second,
	})
}

// Runtime binds the provisioning tools to their environment: stage settings,
// the server inventory, a dialer, and a logger.
type Runtime struct {
	Settings  *config.Settings
	Inventory *config.Inventory
	Dial      DialFunc
	Logger    zerolog.Logger
}

// NewRuntime builds a Runtime; a nil dial falls back to SSH.
func NewRuntime(settings *config.Settings, inventory *config.Inventory, dial DialFunc, logger zerolog.Logger) *Runtime {
	if dial == nil {
		dial = DialSSH
	}
	return &Runtime{
		Settings:  settings,
		Inventory: inventory,
		Dial:      dial,
		Logger:    logger,
	}
}

// RegisterAll wires every provisioning tool into the registry.
func (rt *Runtime) RegisterAll(r *Registry) {
	rt.registerInventoryTool(r)
	rt.registerDiskCheck(r)
	rt.registerRAMCheck(r)
	rt.registerPortCheck(r)
	rt.registerJavaCheck(r)
	rt.registerJavaInstall(r)
	rt.registerTomcatInstall(r)
	rt.registerTomcatUninstall(r)
	rt.registerTomcatStart(r)
	rt.registerTomcatStop(r)
	rt.registerTomcatValidate(r)
}

// withServer resolves the named server, dials it, runs fn, and renders the
// outcome. Connection problems become Failed results so the model sees them.
func (rt *Runtime) withServer(ctx context.Context, toolName, serverName string, fn func(ex remote.Executor, srv *config.Server) *Result) (string, error) {
	server, err := rt.Inventory.Lookup(serverName)
	if err != nil {
		return failure(toolName, err.Error(), nil).Render(), nil
	}

	rt.Logger.Debug().Str("tool", toolName).Str("server", server.Name).Msg("dialing target")
	ex, err := rt.Dial(ctx, server)
	if err != nil {
		return failure(toolName, fmt.Sprintf("unable to connect to %s: %v", server.Name, err), nil).Render(), nil
	}
	defer ex.Close()

	result := fn(ex, server)
	rt.Logger.Info().
		Str("tool", toolName).
		Str("server", server.Name).
		Str("status", string(result.Status)).
		Msg(result.Details)
	return result.Render(), nil
}

// section fetches one tool's stage config block.
func (rt *Runtime) section(stage, tool string) config.Section {
	return rt.Settings.Stage(stage, tool)
}
