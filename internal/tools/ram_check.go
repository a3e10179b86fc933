package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

const ramCheckName = "remote_ram_check"

// RAMCheckParams are the caller-facing overrides for the memory check.
type RAMCheckParams struct {
	Server string `json:"server,omitempty" jsonschema:"description=Inventory server name (optional when only one server is configured)"`
	MinMB  int    `json:"min_mb,omitempty" jsonschema:"description=Override for the minimum total RAM in MB"`
}

func (rt *Runtime) registerRAMCheck(r *Registry) {
	r.RegisterTool(&ToolDefinition{
		NameValue:        ramCheckName,
		DescriptionValue: "Validate remote physical memory against configured thresholds.",
		ParametersValue:  mustSchemaParametersFor[RAMCheckParams](),
		ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
			var p RAMCheckParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			return rt.withServer(ctx, ramCheckName, p.Server, func(ex remote.Executor, _ *config.Server) *Result {
				return RAMCheck(ctx, ex, rt.section("pre_install", "ram_check"), p, rt.Logger)
			})
		},
	})
}

// RAMCheck compares total physical memory on the target against the
// configured threshold (default 2048 MB).
func RAMCheck(ctx context.Context, ex remote.Executor, section config.Section, p RAMCheckParams, logger zerolog.Logger) *Result {
	var logs []string

	osType := ex.OS(ctx)
	logs = append(logs, fmt.Sprintf("Detected OS: %s", osType))

	threshold := p.MinMB
	if threshold <= 0 {
		threshold = section.OS(string(osType)).Int("min_mb", 2048)
	}

	switch osType {
	case remote.OSWindows:
		return ramCheckWindows(ctx, ex, threshold, logs)
	case remote.OSLinux:
		return ramCheckLinux(ctx, ex, threshold, logs)
	default:
		return failure(ramCheckName, "Unsupported operating system", logs)
	}
}

func ramCheckWindows(ctx context.Context, ex remote.Executor, threshold int, logs []string) *Result {
	command := `powershell -NoProfile -Command "` +
		`$cs = Get-CimInstance Win32_ComputerSystem;` +
		`$os = Get-CimInstance Win32_OperatingSystem;` +
		`$total = [math]::Round($cs.TotalPhysicalMemory/1MB,0);` +
		`$free = [math]::Round($os.FreePhysicalMemory/1KB,0);` +
		`Write-Output (\"TOTAL=$total;FREE=$free\");"`

	stdout, stderr, err := ex.Run(ctx, command)
	if err != nil {
		logs = append(logs, err.Error())
		return failure(ramCheckName, err.Error(), logs)
	}
	payload := strings.TrimSpace(stdout + stderr)
	if payload == "" {
		logs = append(logs, "No output")
	} else {
		logs = append(logs, payload)
	}

	metrics := parseSemicolonMetrics(payload)
	if metrics == nil {
		return failure(ramCheckName, "Unable to parse memory details", logs)
	}

	return ramResult(command, metrics, threshold, logs)
}

func ramCheckLinux(ctx context.Context, ex remote.Executor, threshold int, logs []string) *Result {
	command := `bash -lc "free -m"`
	stdout, stderr, err := ex.Run(ctx, command)
	if err != nil {
		logs = append(logs, err.Error())
		return failure(ramCheckName, err.Error(), logs)
	}
	logs = appendOutput(logs, stdout, stderr)

	metrics := parseFreeOutput(stdout)
	if metrics == nil {
		return failure(ramCheckName, "Unable to parse free -m output", logs)
	}

	return ramResult(command, metrics, threshold, logs)
}

func ramResult(command string, metrics map[string]float64, threshold int, logs []string) *Result {
	status := StatusSuccess
	details := fmt.Sprintf("Total RAM %.0f MB meets threshold %d MB", metrics["total_mb"], threshold)
	if metrics["total_mb"] < float64(threshold) {
		status = StatusFailed
		details = fmt.Sprintf("Total RAM %.0f MB below threshold %d MB", metrics["total_mb"], threshold)
	}
	return &Result{
		Name:    ramCheckName,
		Status:  status,
		Command: command,
		Details: details,
		Output:  joinLogs(logs),
		Metrics: metrics,
	}
}

// parseFreeOutput reads the "Mem:" row of free -m.
func parseFreeOutput(out string) map[string]float64 {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "Mem:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil
		}
		total, err1 := strconv.ParseFloat(fields[1], 64)
		used, err2 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil {
			return nil
		}
		metrics := map[string]float64{
			"total_mb": total,
			"used_mb":  used,
		}
		if len(fields) > 3 {
			if free, err := strconv.ParseFloat(fields[3], 64); err == nil {
				metrics["free_mb"] = free
			}
		}
		return metrics
	}
	return nil
}
