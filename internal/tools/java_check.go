package tools

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

const javaCheckName = "remote_java_check"

// JavaCheckParams are the caller-facing overrides for the Java check.
type JavaCheckParams struct {
	Server   string `json:"server,omitempty" jsonschema:"description=Inventory server name (optional when only one server is configured)"`
	MinMajor int    `json:"min_major,omitempty" jsonschema:"description=Minimum acceptable Java major version"`
}

func (rt *Runtime) registerJavaCheck(r *Registry) {
	r.RegisterTool(&ToolDefinition{
		NameValue:        javaCheckName,
		DescriptionValue: "Check whether Java is installed on the remote host and report its version.",
		ParametersValue:  mustSchemaParametersFor[JavaCheckParams](),
		ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
			var p JavaCheckParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			return rt.withServer(ctx, javaCheckName, p.Server, func(ex remote.Executor, _ *config.Server) *Result {
				return JavaCheck(ctx, ex, rt.section("pre_install", "java_check"), p, rt.Logger)
			})
		},
	})
}

// JavaCheck runs java -version on the target and optionally validates the
// major version against a minimum.
func JavaCheck(ctx context.Context, ex remote.Executor, section config.Section, p JavaCheckParams, logger zerolog.Logger) *Result {
	var logs []string

	osType := ex.OS(ctx)
	logs = append(logs, fmt.Sprintf("Detected OS: %s", osType))

	var command string
	switch osType {
	case remote.OSWindows:
		command = `powershell -Command "java -version"`
	case remote.OSLinux:
		command = `bash -lc "java -version"`
	default:
		return failure(javaCheckName, "Unsupported operating system", logs)
	}

	// java -version writes to stderr.
	stdout, stderr, err := ex.Run(ctx, command)
	if err != nil {
		logs = append(logs, err.Error())
		return failure(javaCheckName, err.Error(), logs)
	}
	payload := stdout + stderr
	logs = appendOutput(logs, stdout, stderr)

	if !strings.Contains(strings.ToLower(payload), "version") {
		return failure(javaCheckName, "Java not found on the remote host", logs)
	}

	minMajor := p.MinMajor
	if minMajor <= 0 {
		minMajor = section.Int("min_major", 0)
	}

	major, version := parseJavaVersion(payload)
	details := "Java is installed"
	if version != "" {
		details = fmt.Sprintf("Java %s is installed", version)
	}

	status := StatusSuccess
	if minMajor > 0 {
		if major == 0 {
			status = StatusWarning
			details += fmt.Sprintf("; unable to parse version for minimum check (want >= %d)", minMajor)
		} else if major < minMajor {
			status = StatusFailed
			details = fmt.Sprintf("Java %s is below required major version %d", version, minMajor)
		} else {
			details += fmt.Sprintf(" and meets required major version %d", minMajor)
		}
	}

	result := &Result{
		Name:    javaCheckName,
		Status:  status,
		Command: command,
		Details: details,
		Output:  joinLogs(logs),
	}
	if major > 0 {
		result.Metrics = map[string]float64{"major_version": float64(major)}
	}
	return result
}

var javaVersionPattern = regexp.MustCompile(`version "([0-9][^"]*)"`)

// parseJavaVersion extracts the major version, mapping legacy 1.x to x.
func parseJavaVersion(payload string) (int, string) {
	m := javaVersionPattern.FindStringSubmatch(payload)
	if m == nil {
		return 0, ""
	}
	version := m[1]
	parts := strings.SplitN(version, ".", 3)
	major, err := strconv.Atoi(strings.SplitN(parts[0], "_", 2)[0])
	if err != nil {
		return 0, version
	}
	if major == 1 && len(parts) > 1 {
		if legacy, err := strconv.Atoi(parts[1]); err == nil {
			major = legacy
		}
	}
	return major, version
}
