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

const diskCheckName = "remote_disk_check"

// DiskCheckParams are the caller-facing overrides for the disk check.
type DiskCheckParams struct {
	Server    string `json:"server,omitempty" jsonschema:"description=Inventory server name (optional when only one server is configured)"`
	Path      string `json:"path,omitempty" jsonschema:"description=Override for the path or drive to inspect"`
	MinFreeMB int    `json:"min_free_mb,omitempty" jsonschema:"description=Override for the minimum free space threshold in MB"`
}

func (rt *Runtime) registerDiskCheck(r *Registry) {
	r.RegisterTool(&ToolDefinition{
		NameValue:        diskCheckName,
		DescriptionValue: "Inspect free disk space on the remote host and validate against configured thresholds.",
		ParametersValue:  mustSchemaParametersFor[DiskCheckParams](),
		ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
			var p DiskCheckParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			return rt.withServer(ctx, diskCheckName, p.Server, func(ex remote.Executor, _ *config.Server) *Result {
				return DiskCheck(ctx, ex, rt.section("pre_install", "disk_check"), p, rt.Logger)
			})
		},
	})
}

// DiskCheck measures free space on the target and compares it to the
// configured threshold (default 2048 MB).
func DiskCheck(ctx context.Context, ex remote.Executor, section config.Section, p DiskCheckParams, logger zerolog.Logger) *Result {
	var logs []string

	osType := ex.OS(ctx)
	logs = append(logs, fmt.Sprintf("Detected OS: %s", osType))

	osCfg := section.OS(string(osType))
	targetPath := p.Path
	if targetPath == "" {
		targetPath = osCfg.String("path", "")
	}
	if targetPath == "" {
		if osType == remote.OSWindows {
			targetPath = `C:\`
		} else {
			targetPath = "/"
		}
	}

	threshold := p.MinFreeMB
	if threshold <= 0 {
		threshold = osCfg.Int("min_free_mb", 2048)
	}

	switch osType {
	case remote.OSWindows:
		return diskCheckWindows(ctx, ex, targetPath, threshold, logs)
	case remote.OSLinux:
		return diskCheckLinux(ctx, ex, targetPath, threshold, logs)
	default:
		return failure(diskCheckName, "Unsupported operating system", logs)
	}
}

func diskCheckWindows(ctx context.Context, ex remote.Executor, targetPath string, threshold int, logs []string) *Result {
	drive := windowsDriveOf(targetPath)
	logs = append(logs, fmt.Sprintf("Inspecting drive %s on Windows host", drive))

	command := `powershell -NoProfile -Command "` +
		`$disk = Get-CimInstance Win32_LogicalDisk -Filter \"DeviceID='` + drive + `'\";` +
		`if ($disk) {` +
		`  $totalMB = [math]::Round($disk.Size/1MB,2);` +
		`  $freeMB = [math]::Round($disk.FreeSpace/1MB,2);` +
		`  Write-Output (\"TOTAL=$totalMB;FREE=$freeMB\");` +
		`} else { Write-Output 'ERROR:DiskNotFound'; }"`

	stdout, stderr, err := ex.Run(ctx, command)
	if err != nil {
		logs = append(logs, err.Error())
		return failure(diskCheckName, err.Error(), logs)
	}
	payload := strings.TrimSpace(stdout + stderr)
	logs = append(logs, payload)

	if strings.Contains(strings.ToUpper(payload), "ERROR") {
		return failure(diskCheckName, "Unable to retrieve disk details", logs)
	}

	metrics := parseSemicolonMetrics(payload)
	if metrics == nil {
		return failure(diskCheckName, "Unrecognized disk output", logs)
	}

	status := StatusSuccess
	details := fmt.Sprintf("Free space %.2f MB meets threshold %d MB", metrics["free_mb"], threshold)
	if metrics["free_mb"] < float64(threshold) {
		status = StatusFailed
		details = fmt.Sprintf("Free space %.2f MB below threshold %d MB", metrics["free_mb"], threshold)
	}

	return &Result{
		Name:    diskCheckName,
		Status:  status,
		Command: command,
		Details: details,
		Output:  joinLogs(logs),
		Metrics: metrics,
	}
}

func diskCheckLinux(ctx context.Context, ex remote.Executor, targetPath string, threshold int, logs []string) *Result {
	logs = append(logs, fmt.Sprintf("Inspecting path %s on Linux host", targetPath))

	command := fmt.Sprintf(`bash -lc "df -Pm %s | tail -1"`, shQuote(targetPath))
	stdout, stderr, err := ex.Run(ctx, command)
	if err != nil {
		logs = append(logs, err.Error())
		return failure(diskCheckName, err.Error(), logs)
	}
	logs = appendOutput(logs, stdout, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[len(lines)-1]) == "" {
		return failure(diskCheckName, "No output from df command", logs)
	}

	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 4 {
		return failure(diskCheckName, "Unexpected df output", logs)
	}

	totalMB, err1 := strconv.ParseFloat(fields[1], 64)
	usedMB, err2 := strconv.ParseFloat(fields[2], 64)
	freeMB, err3 := strconv.ParseFloat(fields[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return failure(diskCheckName, "Unexpected df output", logs)
	}

	status := StatusSuccess
	details := fmt.Sprintf("Free space %.2f MB meets threshold %d MB", freeMB, threshold)
	if freeMB < float64(threshold) {
		status = StatusFailed
		details = fmt.Sprintf("Free space %.2f MB below threshold %d MB", freeMB, threshold)
	}

	return &Result{
		Name:    diskCheckName,
		Status:  status,
		Command: command,
		Details: details,
		Output:  joinLogs(logs),
		Metrics: map[string]float64{
			"total_mb": totalMB,
			"used_mb":  usedMB,
			"free_mb":  freeMB,
		},
	}
}

// parseSemicolonMetrics decodes "TOTAL=123;FREE=45" payloads into *_mb keys.
func parseSemicolonMetrics(payload string) map[string]float64 {
	metrics := map[string]float64{}
	for _, part := range strings.Split(strings.ReplaceAll(payload, "\r", ""), ";") {
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			continue
		}
		metrics[strings.ToLower(strings.TrimSpace(key))+"_mb"] = parsed
	}
	total, haveTotal := metrics["total_mb"]
	free, haveFree := metrics["free_mb"]
	if !haveTotal || !haveFree {
		return nil
	}
	if _, ok := metrics["used_mb"]; !ok {
		metrics["used_mb"] = total - free
	}
	return metrics
}
