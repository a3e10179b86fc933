package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

// Shared remote transfer helpers used by the Java and Tomcat installers.
// Windows hosts get curl.exe plus Expand-Archive via PowerShell; paths that
// start with a variable reference ($env:TEMP\...) survive as Join-Path
// expressions so the variable still expands on the remote side.

// curlDownload fetches url to destination on a Windows host and verifies the
// resulting file is at least minSize bytes.
func curlDownload(ctx context.Context, ex remote.Executor, url, destination string, minSize int, extraArgs string) ([]string, bool) {
	var logs []string

	destLiteral := psLiteral(destination)
	argsSegment := ""
	if s := strings.TrimSpace(extraArgs); s != "" {
		argsSegment = " " + s
	}
	command := `powershell -Command "` +
		`$destination = ` + destLiteral + `;` +
		`$url = ` + psString(url) + `;` +
		`curl.exe -L $url -o $destination` + argsSegment + `;"`

	stdout, stderr, err := ex.Run(ctx, command)
	if err != nil {
		logs = append(logs, err.Error())
		return logs, false
	}
	logs = appendOutput(logs, stdout, stderr)

	sizeCmd := `powershell -Command "` +
		`$destination = ` + destLiteral + `;` +
		`(Get-Item $destination -ErrorAction SilentlyContinue).Length"`
	sizeOut, sizeErr, err := ex.Run(ctx, sizeCmd)
	if err != nil {
		logs = append(logs, err.Error())
		return logs, false
	}
	if s := strings.TrimSpace(sizeErr); s != "" {
		logs = append(logs, s)
	}

	if minSize < 0 {
		minSize = 0
	}
	sizeValue := strings.TrimSpace(sizeOut)
	size, parseErr := strconv.ParseInt(sizeValue, 10, 64)
	if parseErr != nil || size < int64(minSize) {
		logs = append(logs, fmt.Sprintf("Expected at least %d bytes but got '%s'.", minSize, sizeValue))
		return logs, false
	}
	logs = append(logs, fmt.Sprintf("Download size verified: %s bytes", sizeValue))
	return logs, true
}

// zipExtract expands source into destination and, when folderPattern is set,
// resolves the most recently written directory matching it. An empty folder
// name with a pattern supplied counts as failure.
func zipExtract(ctx context.Context, ex remote.Executor, source, destination, folderPattern string) (string, []string, bool) {
	var logs []string

	sourceLiteral := psLiteral(source)
	destLiteral := psLiteral(destination)

	expandCmd := `powershell -Command "` +
		`$source = ` + sourceLiteral + `;` +
		`$destination = ` + destLiteral + `;` +
		`Expand-Archive -LiteralPath $source -DestinationPath $destination -Force"`
	stdout, stderr, err := ex.Run(ctx, expandCmd)
	if err != nil {
		logs = append(logs, err.Error())
		return "", logs, false
	}
	logs = appendOutput(logs, stdout, stderr)
	expandFailed := strings.TrimSpace(stderr) != ""

	folderName := ""
	if folderPattern != "" {
		detectCmd := `powershell -Command "` +
			`$destination = ` + destLiteral + `;` +
			`$pattern = ` + psString(folderPattern) + `;` +
			`$dirs = Get-ChildItem -Path $destination -Directory;` +
			`if ($pattern) { $dirs = $dirs | Where-Object { $_.Name -match $pattern }; }` +
			`$match = $dirs | Sort-Object LastWriteTime -Descending | Select-Object -First 1;` +
			`if ($match) { $match.Name }"`
		folderOut, folderErr, err := ex.Run(ctx, detectCmd)
		if err != nil {
			logs = append(logs, err.Error())
			return "", logs, false
		}
		if s := strings.TrimSpace(folderErr); s != "" {
			logs = append(logs, s)
		}
		folderName = strings.TrimSpace(folderOut)
		if folderName != "" {
			logs = append(logs, "Detected extracted folder: "+folderName)
		} else {
			logs = append(logs, "No folder matched the supplied pattern.")
		}
	}

	if expandFailed || (folderPattern != "" && folderName == "") {
		return folderName, logs, false
	}
	return folderName, logs, true
}

// ensureDirWindows creates path if missing; errors are swallowed because the
// install steps that follow surface a clearer failure.
func ensureDirWindows(ctx context.Context, ex remote.Executor, path string) {
	command := `powershell -Command "` +
		`$path = ` + psLiteral(path) + `;` +
		`if (!(Test-Path -Path $path)) {` +
		`    New-Item -ItemType Directory -Force -Path $path | Out-Null` +
		`}"`
	ex.Run(ctx, command)
}
