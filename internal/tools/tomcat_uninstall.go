package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

const tomcatUninstallName = "remote_tomcat_uninstall"

// TomcatUninstallParams carries the caller-facing knobs for removal.
type TomcatUninstallParams struct {
	Server      string `json:"server,omitempty" jsonschema:"description=Inventory server name (optional when only one server is configured)"`
	TomcatHome  string `json:"tomcat_home,omitempty" jsonschema:"description=Path to the Tomcat installation directory to remove"`
	CleanupLogs *bool  `json:"cleanup_logs,omitempty" jsonschema:"description=Also remove the log files directory"`
}

func (rt *Runtime) registerTomcatUninstall(r *Registry) {
	r.RegisterTool(&ToolDefinition{
		NameValue:        tomcatUninstallName,
		DescriptionValue: "Remove a Tomcat installation from the remote host, optionally including its logs directory.",
		ParametersValue:  mustSchemaParametersFor[TomcatUninstallParams](),
		ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
			var p TomcatUninstallParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			return rt.withServer(ctx, tomcatUninstallName, p.Server, func(ex remote.Executor, _ *config.Server) *Result {
				return TomcatUninstall(ctx, ex, rt.section("install", "tomcat_uninstall"), p, rt.Logger)
			})
		},
	})
}

// TomcatUninstall removes the Tomcat directory (and optionally a separate
// logs directory). The home comes from the params or the settings block.
func TomcatUninstall(ctx context.Context, ex remote.Executor, section config.Section, p TomcatUninstallParams, logger zerolog.Logger) *Result {
	var logs []string

	osType := ex.OS(ctx)
	logs = append(logs, fmt.Sprintf("Detected OS: %s", osType))

	osCfg := section.OS(string(osType))
	tomcatHome := p.TomcatHome
	if tomcatHome == "" {
		tomcatHome = osCfg.String("tomcat_home", section.String("tomcat_home", ""))
	}
	if tomcatHome == "" {
		return failure(tomcatUninstallName, "Tomcat home directory not supplied", logs)
	}

	cleanupLogs := osCfg.Bool("cleanup_logs", section.Bool("cleanup_logs", true))
	if p.CleanupLogs != nil {
		cleanupLogs = *p.CleanupLogs
	}
	logsDir := osCfg.String("logs_dir", section.String("logs_dir", ""))

	switch osType {
	case remote.OSWindows:
		return tomcatUninstallWindows(ctx, ex, tomcatHome, logsDir, cleanupLogs, logs)
	case remote.OSLinux:
		return tomcatUninstallLinux(ctx, ex, tomcatHome, logsDir, cleanupLogs, logs)
	default:
		return failure(tomcatUninstallName, "Unsupported operating system", logs)
	}
}

func tomcatUninstallWindows(ctx context.Context, ex remote.Executor, tomcatHome, logsDir string, cleanupLogs bool, logs []string) *Result {
	// Best-effort stop before removal; a dead shutdown script is fine.
	logs = append(logs, "Stopping Tomcat if running...")
	shutdown := psString(joinRemotePath(tomcatHome, `bin\shutdown.bat`))
	ex.Run(ctx, "powershell -NoProfile -Command "+
		"if (Test-Path -LiteralPath "+shutdown+") { & "+shutdown+" }")

	logs = append(logs, "Removing directory "+tomcatHome)
	stdout, stderr, err := ex.Run(ctx, removeDirWindowsCmd(tomcatHome))
	if err != nil {
		logs = append(logs, err.Error())
		return failure(tomcatUninstallName, err.Error(), logs)
	}
	logs = appendOutput(logs, stdout, stderr)

	if cleanupLogs && logsDir != "" {
		logs = append(logs, "Removing logs directory "+logsDir)
		stdout, stderr, err = ex.Run(ctx, removeDirWindowsCmd(logsDir))
		if err != nil {
			logs = append(logs, err.Error())
			return failure(tomcatUninstallName, err.Error(), logs)
		}
		logs = appendOutput(logs, stdout, stderr)
	}

	return uninstallSuccess(tomcatHome, logs)
}

func tomcatUninstallLinux(ctx context.Context, ex remote.Executor, tomcatHome, logsDir string, cleanupLogs bool, logs []string) *Result {
	// Best-effort stop before removal; a dead shutdown script is fine.
	logs = append(logs, "Stopping Tomcat if running...")
	shutdown := shQuote(strings.TrimRight(tomcatHome, "/") + "/bin/shutdown.sh")
	ex.Run(ctx, "test -x "+shutdown+" && "+shutdown+" || true")

	logs = append(logs, "Removing directory "+tomcatHome)
	stdout, stderr, err := ex.Run(ctx, "rm -rf "+shQuote(tomcatHome))
	if err != nil {
		logs = append(logs, err.Error())
		return failure(tomcatUninstallName, err.Error(), logs)
	}
	logs = appendOutput(logs, stdout, stderr)

	if cleanupLogs && logsDir != "" {
		logs = append(logs, "Removing logs directory "+logsDir)
		stdout, stderr, err = ex.Run(ctx, "rm -rf "+shQuote(logsDir))
		if err != nil {
			logs = append(logs, err.Error())
			return failure(tomcatUninstallName, err.Error(), logs)
		}
		logs = appendOutput(logs, stdout, stderr)
	}

	return uninstallSuccess(tomcatHome, logs)
}

func removeDirWindowsCmd(path string) string {
	literal := psString(path)
	return "powershell -NoProfile -Command " +
		"if (Test-Path -LiteralPath " + literal + ") " +
		"{ Remove-Item -LiteralPath " + literal + " -Recurse -Force }"
}

func uninstallSuccess(tomcatHome string, logs []string) *Result {
	return &Result{
		Name:    tomcatUninstallName,
		Status:  StatusSuccess,
		Command: "Remove Tomcat at " + tomcatHome,
		Details: "Removed Tomcat directory " + tomcatHome,
		Output:  joinLogs(logs),
	}
}
