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
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

const tomcatStartName = "remote_tomcat_start"

// TomcatStartParams carries the caller-facing start knobs.
type TomcatStartParams struct {
	Server     string `json:"server,omitempty" jsonschema:"description=Inventory server name (optional when only one server is configured)"`
	TomcatHome string `json:"tomcat_home,omitempty" jsonschema:"description=Tomcat home directory on the remote host"`
}

func (rt *Runtime) registerTomcatStart(r *Registry) {
	r.RegisterTool(&ToolDefinition{
		NameValue:        tomcatStartName,
		DescriptionValue: "Start Apache Tomcat on the remote host and wait for the connector port to listen.",
		ParametersValue:  mustSchemaParametersFor[TomcatStartParams](),
		ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
			var p TomcatStartParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			return rt.withServer(ctx, tomcatStartName, p.Server, func(ex remote.Executor, _ *config.Server) *Result {
				return TomcatStart(ctx, ex, rt.section("post_install", "tomcat_start"), p, rt.Logger)
			})
		},
	})
}

// TomcatStart launches startup.bat/startup.sh detached and then polls the
// connector port. Stderr from the launch downgrades Success to Warning; a
// readiness timeout is a hard failure regardless.
func TomcatStart(ctx context.Context, ex remote.Executor, section config.Section, p TomcatStartParams, logger zerolog.Logger) *Result {
	var logs []string

	osType := ex.OS(ctx)
	logs = append(logs, fmt.Sprintf("Detected OS: %s", osType))

	osCfg := section.OS(string(osType))
	home := p.TomcatHome
	if home == "" {
		home = osCfg.String("tomcat_home", section.String("tomcat_home", ""))
	}
	if home == "" {
		return failure(tomcatStartName, "Tomcat home directory not supplied", logs)
	}

	readyTimeout := resolveSeconds(osCfg, section, "ready_timeout", 120)
	port := osCfg.Int("port", section.Int("port", 8080))
	logs = append(logs, fmt.Sprintf("Readiness timeout set to %ds", int(readyTimeout.Seconds())))
	logs = append(logs, fmt.Sprintf("Target port: %d", port))

	var command string
	template := osCfg.String("start_command", section.String("start_command", ""))
	switch {
	case template != "":
		command = strings.ReplaceAll(template, "{tomcat_home}", home)
	case osType == remote.OSWindows:
		command = startCommandWindows(home)
	case osType == remote.OSLinux:
		command = startCommandLinux(home)
	default:
		logs = append(logs, "Unsupported operating system detected")
		return failure(tomcatStartName, "Unsupported operating system", logs)
	}

	logs = append(logs, "Executing start command: "+command)
	stdout, stderr, err := ex.Run(ctx, command)
	if err != nil {
		logs = append(logs, err.Error())
		return failure(tomcatStartName, err.Error(), logs)
	}
	logs = appendOutput(logs, stdout, stderr)

	status := StatusSuccess
	if strings.TrimSpace(stderr) != "" {
		status = StatusWarning
	}

	logger.Debug().Str("tool", tomcatStartName).Int("port", port).Msg("waiting for connector")
	if err := remote.WaitForPort(ctx, ex, osType, port, readyTimeout); err != nil {
		logs = append(logs, err.Error())
		return &Result{
			Name:       tomcatStartName,
			Status:     StatusFailed,
			Command:    command,
			Details:    fmt.Sprintf("Timed out waiting for Tomcat port %d", port),
			Output:     joinLogs(logs),
			TomcatHome: home,
		}
	}
	logs = append(logs, fmt.Sprintf("Port %d is listening.", port))

	return &Result{
		Name:       tomcatStartName,
		Status:     status,
		Command:    command,
		Details:    fmt.Sprintf("Tomcat started and port %d is listening", port),
		Output:     joinLogs(logs),
		TomcatHome: home,
	}
}

func startCommandWindows(home string) string {
	psHome := strings.ReplaceAll(home, `\`, `\\`)
	return `powershell -NoProfile -Command ` +
		`"if (-not (Test-Path '` + psHome + `')) { Write-Error 'Tomcat directory not found'; exit 1 }; ` +
		`$bin = '` + psHome + `\\bin'; ` +
		`$startup = Join-Path $bin 'startup.bat'; ` +
		`if (-not (Test-Path $startup)) { Write-Error 'startup.bat not found'; exit 1 }; ` +
		`Start-Process -FilePath 'cmd.exe' -ArgumentList '/c', $startup -WorkingDirectory $bin -WindowStyle Hidden; ` +
		`Start-Sleep -Seconds 3; ` +
		`if (Get-Process -Name java -ErrorAction SilentlyContinue) { Write-Output 'Tomcat process started' } else { Write-Warning 'Java process not detected yet' }"`
}

func startCommandLinux(home string) string {
	root := strings.TrimRight(home, "/")
	quoted := shQuote(root)
	script := "if [ ! -d " + quoted + " ]; then " +
		"echo 'Tomcat directory not found: " + root + "' >&2; exit 1; fi; " +
		"cd " + quoted + "/bin && " +
		"chmod +x startup.sh && " +
		"nohup ./startup.sh >/dev/null 2>&1 & " +
		"sleep 3; " +
		"if pgrep -f 'catalina|tomcat' >/dev/null; then " +
		"echo 'Tomcat process started'; else echo 'Warning: Tomcat process not detected yet' >&2; fi"
	return "bash -lc " + shQuote(script)
}

// resolveSeconds reads a positive seconds value from the OS block first, then
// the tool block, falling back to def.
func resolveSeconds(osCfg, section config.Section, key string, def int) time.Duration {
	value := osCfg.Int(key, section.Int(key, def))
	if value <= 0 {
		value = def
	}
	return time.Duration(value) * time.Second
}
