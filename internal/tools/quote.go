package tools

import "strings"

// shQuote wraps a value in single quotes for POSIX shells, escaping embedded
// single quotes with the '"'"' dance.
func shQuote(value string) string {
	if value == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

// psLiteral renders a remote path as a PowerShell literal. Paths that start
// with a variable reference ($env:TEMP\...) become Join-Path expressions so
// the variable still expands; plain paths become quoted literals with single
// quotes doubled.
func psLiteral(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "''"
	}
	if strings.HasPrefix(trimmed, "$") {
		parts := []string{}
		for _, p := range strings.Split(trimmed, `\`) {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			return trimmed
		}
		expr := parts[0]
		for _, segment := range parts[1:] {
			expr = "(Join-Path " + expr + " '" + strings.ReplaceAll(segment, "'", "''") + "')"
		}
		return expr
	}
	return "'" + strings.ReplaceAll(trimmed, "'", "''") + "'"
}

// psString quotes a plain PowerShell string value (not a path expression).
func psString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// windowsDriveOf extracts the drive letter ("C:") from a Windows path,
// defaulting to C: when the path carries none.
func windowsDriveOf(path string) string {
	candidate := strings.SplitN(strings.TrimSpace(path), ":", 2)[0]
	if candidate != "" {
		c := candidate[0]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return strings.ToUpper(string(c)) + ":"
		}
	}
	return "C:"
}

// parentDirWindows returns everything before the final backslash.
func parentDirWindows(path string) string {
	if idx := strings.LastIndex(path, `\`); idx > 0 {
		return path[:idx]
	}
	return path
}

// joinWindows joins path segments with a backslash.
func joinWindows(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, `\`)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, `\`)
}
