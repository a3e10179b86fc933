package tools

import (
	"encoding/json"
	"strings"
)

// Status classifies a tool outcome.
type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
	StatusWarning Status = "Warning"
	StatusSkipped Status = "Skipped"
)

// Result is the uniform outcome record every provisioning tool produces:
// which tool ran, how it went, the command it issued, and the captured logs.
type Result struct {
	Name       string             `json:"name"`
	Status     Status             `json:"status"`
	Command    string             `json:"command,omitempty"`
	Details    string             `json:"details,omitempty"`
	Output     string             `json:"output,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	TomcatHome string             `json:"tomcat_home,omitempty"`
	URL        string             `json:"url,omitempty"`
	StatusCode int                `json:"status_code,omitempty"`
}

// Render serializes the result for the model (and for --json output).
func (r *Result) Render() string {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return r.Details
	}
	return string(raw)
}

// OK reports whether the result counts as a passing step.
func (r *Result) OK() bool {
	return r != nil && (r.Status == StatusSuccess || r.Status == StatusWarning)
}

// failure builds a Failed result carrying the accumulated log lines.
func failure(name, message string, logs []string) *Result {
	return &Result{
		Name:    name,
		Status:  StatusFailed,
		Command: name,
		Details: message,
		Output:  strings.Join(logs, "\n"),
	}
}

// joinLogs flattens log lines, dropping empties.
func joinLogs(logs []string) string {
	filtered := logs[:0:0]
	for _, line := range logs {
		if strings.TrimSpace(line) != "" {
			filtered = append(filtered, line)
		}
	}
	return strings.Join(filtered, "\n")
}

// appendOutput records non-empty stdout/stderr into the log trail.
func appendOutput(logs []string, stdout, stderr string) []string {
	if s := strings.TrimSpace(stdout); s != "" {
		logs = append(logs, s)
	}
	if s := strings.TrimSpace(stderr); s != "" {
		logs = append(logs, "stderr: "+s)
	}
	return logs
}
