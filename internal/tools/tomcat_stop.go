package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

const tomcatStopName = "remote_tomcat_stop"

// TomcatStopParams carries the caller-facing stop knobs.
type TomcatStopParams struct {
	Server     string `json:"server,omitempty" jsonschema:"description=Inventory server name (optional when only one server is configured)"`
	TomcatHome string `json:"tomcat_home,omitempty" jsonschema:"description=Tomcat home directory on the remote host"`
}

func (rt *Runtime) registerTomcatStop(r *Registry) {
	r.RegisterTool(&ToolDefinition{
		NameValue:        tomcatStopName,
		DescriptionValue: "Stop Apache Tomcat on the remote host using the configured stop command.",
		ParametersValue:  mustSchemaParametersFor[TomcatStopParams](),
		ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
			var p TomcatStopParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			return rt.withServer(ctx, tomcatStopName, p.Server, func(ex remote.Executor, _ *config.Server) *Result {
				return TomcatStop(ctx, ex, rt.section("post_install", "tomcat_stop"), p, rt.Logger)
			})
		},
	})
}

// TomcatStop runs the configured stop_command template against the resolved
// Tomcat home. Stderr downgrades Success to Warning; a missing template or
// home is a failure.
func TomcatStop(ctx context.Context, ex remote.Executor, section config.Section, p TomcatStopParams, logger zerolog.Logger) *Result {
	var logs []string

	osType := ex.OS(ctx)
	logs = append(logs, fmt.Sprintf("Detected OS: %s", osType))

	osCfg := section.OS(string(osType))
	home := p.TomcatHome
	if home == "" {
		home = osCfg.String("tomcat_home", section.String("tomcat_home", ""))
	}
	if home == "" {
		return failure(tomcatStopName, "Tomcat home directory not supplied", logs)
	}

	template := osCfg.String("stop_command", section.String("stop_command", ""))
	if template == "" {
		return failure(tomcatStopName, "stop_command not configured", logs)
	}

	command := strings.ReplaceAll(template, "{tomcat_home}", home)
	logs = append(logs, "Executing stop command: "+command)

	stdout, stderr, err := ex.Run(ctx, command)
	if err != nil {
		logs = append(logs, err.Error())
		return failure(tomcatStopName, err.Error(), logs)
	}
	logs = appendOutput(logs, stdout, stderr)

	status := StatusSuccess
	details := "Tomcat stop command executed"
	if s := strings.TrimSpace(stderr); s != "" {
		status = StatusWarning
		details = "Tomcat stop command completed with stderr: " + s
	}

	return &Result{
		Name:       tomcatStopName,
		Status:     status,
		Command:    command,
		Details:    details,
		Output:     joinLogs(logs),
		TomcatHome: home,
	}
}
