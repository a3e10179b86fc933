package tools

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

const portCheckName = "remote_port_check"

// defaultTomcatPorts are the connector, shutdown, and AJP ports.
var defaultTomcatPorts = []int{8080, 8005, 8009}

// PortCheckParams are the caller-facing overrides for the port check.
type PortCheckParams struct {
	Server string `json:"server,omitempty" jsonschema:"description=Inventory server name (optional when only one server is configured)"`
	Ports  []int  `json:"ports,omitempty" jsonschema:"description=Override list of ports to inspect"`
}

func (rt *Runtime) registerPortCheck(r *Registry) {
	r.RegisterTool(&ToolDefinition{
		NameValue:        portCheckName,
		DescriptionValue: "Check whether specified ports are occupied on the remote host (Windows/Linux).",
		ParametersValue:  mustSchemaParametersFor[PortCheckParams](),
		ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
			var p PortCheckParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			return rt.withServer(ctx, portCheckName, p.Server, func(ex remote.Executor, _ *config.Server) *Result {
				return PortCheck(ctx, ex, rt.section("pre_install", "port_check"), p, rt.Logger)
			})
		},
	})
}

// PortCheck inspects the configured ports and reports per-port free/in-use
// status, including the owning process where it can be resolved.
func PortCheck(ctx context.Context, ex remote.Executor, section config.Section, p PortCheckParams, logger zerolog.Logger) *Result {
	var logs []string

	osType := ex.OS(ctx)
	logs = append(logs, fmt.Sprintf("Detected OS: %s", osType))

	ports := normalizePorts(p.Ports)
	if len(ports) == 0 {
		ports = normalizePorts(section.OS(string(osType)).Ints("ports"))
	}
	if len(ports) == 0 {
		ports = defaultTomcatPorts
	}

	switch osType {
	case remote.OSWindows:
		return portCheckWindows(ctx, ex, ports, logs)
	case remote.OSLinux:
		return portCheckLinux(ctx, ex, ports, logs)
	default:
		return failure(portCheckName, "Unsupported operating system", logs)
	}
}

func portCheckWindows(ctx context.Context, ex remote.Executor, ports []int, logs []string) *Result {
	stdout, stderr, err := ex.Run(ctx, "netstat -ano")
	if err != nil {
		logs = append(logs, err.Error())
		return failure(portCheckName, err.Error(), logs)
	}
	lines := strings.Split(stdout+"\n"+stderr, "\n")

	var summary []string
	for _, port := range ports {
		matches := matchingPortLines(lines, port)
		if len(matches) == 0 {
			summary = append(summary, fmt.Sprintf("Port %d: free", port))
			continue
		}
		summary = append(summary, fmt.Sprintf("Port %d: IN USE", port))
		for _, line := range matches {
			summary = append(summary, "  "+strings.TrimSpace(line))
			if pid := extractPID(line); pid != "" {
				taskOut, taskErr, _ := ex.Run(ctx, fmt.Sprintf(`tasklist /FI "PID eq %s"`, pid))
				if info := strings.TrimSpace(taskOut + "\n" + taskErr); info != "" {
					summary = append(summary, "    "+info)
				}
			}
		}
	}

	return portSummaryResult("netstat -ano", summary, logs)
}

func portCheckLinux(ctx context.Context, ex remote.Executor, ports []int, logs []string) *Result {
	stdout, stderr, err := ex.Run(ctx, `bash -lc "ss -ltnp"`)
	if err != nil {
		logs = append(logs, err.Error())
		return failure(portCheckName, err.Error(), logs)
	}
	content := strings.TrimSpace(stdout + "\n" + stderr)
	if content == "" {
		stdout, stderr, err = ex.Run(ctx, `bash -lc "netstat -tulpn"`)
		if err != nil {
			logs = append(logs, err.Error())
			return failure(portCheckName, err.Error(), logs)
		}
		content = strings.TrimSpace(stdout + "\n" + stderr)
	}
	lines := strings.Split(content, "\n")

	var summary []string
	for _, port := range ports {
		matches := matchingPortLines(lines, port)
		if len(matches) == 0 {
			summary = append(summary, fmt.Sprintf("Port %d: free", port))
			continue
		}
		summary = append(summary, fmt.Sprintf("Port %d: IN USE", port))
		for _, line := range matches {
			summary = append(summary, "  "+strings.TrimSpace(line))
			if pid := extractPID(line); pid != "" {
				procOut, procErr, _ := ex.Run(ctx, fmt.Sprintf(`bash -lc "ps -p %s -o pid,cmd --no-headers"`, pid))
				if info := strings.TrimSpace(procOut + "\n" + procErr); info != "" {
					summary = append(summary, "    "+info)
				}
			}
		}
	}

	return portSummaryResult("ss -ltnp | netstat -tulpn", summary, logs)
}

func portSummaryResult(command string, summary, logs []string) *Result {
	status := StatusSuccess
	for _, line := range summary {
		if strings.HasPrefix(line, "Port") && !strings.Contains(strings.ToLower(line), "free") {
			status = StatusFailed
			break
		}
	}
	logs = append(logs, summary...)
	return &Result{
		Name:    portCheckName,
		Status:  status,
		Command: command,
		Details: strings.Join(summary, "\n"),
		Output:  joinLogs(logs),
	}
}

func matchingPortLines(lines []string, port int) []string {
	pattern := regexp.MustCompile(fmt.Sprintf(`:%d(\s|$)`, port))
	var matches []string
	for _, line := range lines {
		if pattern.MatchString(line) {
			matches = append(matches, line)
		}
	}
	return matches
}

var pidEqualsPattern = regexp.MustCompile(`pid=(\d+)`)

// extractPID digs the owning PID out of an ss ("pid=123") or netstat (last
// column) line.
func extractPID(line string) string {
	if m := pidEqualsPattern.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	for _, c := range last {
		if c < '0' || c > '9' {
			return ""
		}
	}
	return last
}

func normalizePorts(ports []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, port := range ports {
		if port > 0 && !seen[port] {
			seen[port] = true
			out = append(out, port)
		}
	}
	sort.Ints(out)
	return out
}
