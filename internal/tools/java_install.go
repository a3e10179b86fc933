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

	"github.com/rs/zerolog"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

const javaInstallName = "remote_java_install"

// JavaInstallParams carries caller overrides; everything else comes from the
// pre_install.java settings block.
type JavaInstallParams struct {
	Server string `json:"server,omitempty" jsonschema:"description=Inventory server name (optional when only one server is configured)"`
}

func (rt *Runtime) registerJavaInstall(r *Registry) {
	r.RegisterTool(&ToolDefinition{
		NameValue:        javaInstallName,
		DescriptionValue: "Install Java on the remote host using configuration-driven settings. Skips when Java is already present.",
		ParametersValue:  mustSchemaParametersFor[JavaInstallParams](),
		ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
			var p JavaInstallParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			return rt.withServer(ctx, javaInstallName, p.Server, func(ex remote.Executor, _ *config.Server) *Result {
				return JavaInstall(ctx, ex, rt.section("pre_install", "java"), rt.Logger)
			})
		},
	})
}

// JavaInstall provisions a JDK on the target. A host that already answers
// java -version succeeds without touching anything.
func JavaInstall(ctx context.Context, ex remote.Executor, section config.Section, logger zerolog.Logger) *Result {
	var logs []string

	logs = append(logs, "Detecting remote operating system...")
	osType := ex.OS(ctx)
	logs = append(logs, fmt.Sprintf("Detected OS: %s", osType))

	switch osType {
	case remote.OSLinux:
		return javaInstallLinux(ctx, ex, section.OS("linux"), logs)
	case remote.OSWindows:
		return javaInstallWindows(ctx, ex, section.OS("windows"), logs, logger)
	default:
		return failure(javaInstallName, "Unsupported operating system", logs)
	}
}

func javaInstallLinux(ctx context.Context, ex remote.Executor, cfg config.Section, logs []string) *Result {
	downloadURL := cfg.String("download_url", "")
	archivePath := cfg.String("archive_path", "~/jdk.tar.gz")
	installDir := cfg.String("install_dir", "~/java")
	versionCheck := cfg.String("version_check", `bash -lc '$HOME/java/*/bin/java -version'`)
	packages := cfg.Strings("packages")
	if packages == nil {
		packages = []string{"wget", "tar"}
	}

	if downloadURL == "" {
		return missingConfig(javaInstallName, "linux.download_url", logs)
	}

	logs = append(logs, "Checking existing Java...")
	stdout, stderr, err := ex.Run(ctx, "java -version")
	if err != nil {
		logs = append(logs, err.Error())
		return failure(javaInstallName, err.Error(), logs)
	}
	if strings.Contains(strings.ToLower(stdout+stderr), "version") {
		logs = append(logs, "Java already installed.")
		return &Result{
			Name:    javaInstallName,
			Status:  StatusSuccess,
			Command: "java -version",
			Details: joinLogs(logs),
			Output:  stdout + stderr,
		}
	}

	logs = append(logs, "Installing Java on Linux...")
	if len(packages) > 0 {
		ex.Run(ctx, cfg.String("package_update_command", "sudo apt update -y"))
		pkgCmd := cfg.String("package_install_command", "sudo apt install -y {packages}")
		ex.Run(ctx, strings.ReplaceAll(pkgCmd, "{packages}", strings.Join(packages, " ")))
	}

	ex.Run(ctx, fmt.Sprintf("wget -O %s %s", archivePath, downloadURL))
	ex.Run(ctx, fmt.Sprintf("mkdir -p %s", installDir))
	ex.Run(ctx, fmt.Sprintf("tar -xvf %s -C %s", archivePath, installDir))
	stdout, stderr, err = ex.Run(ctx, versionCheck)
	if err != nil {
		logs = append(logs, err.Error())
		return failure(javaInstallName, err.Error(), logs)
	}

	status := StatusFailed
	if strings.Contains(strings.ToLower(stdout+stderr), "version") {
		status = StatusSuccess
	}
	return &Result{
		Name:    javaInstallName,
		Status:  status,
		Command: "java -version",
		Details: joinLogs(logs),
		Output:  stdout + stderr,
	}
}

func javaInstallWindows(ctx context.Context, ex remote.Executor, cfg config.Section, logs []string, logger zerolog.Logger) *Result {
	jdkURL := cfg.String("download_url", "")
	archivePath := cfg.String("archive_path", "")
	installRoot := cfg.String("install_root", "")
	folderPattern := cfg.String("folder_pattern", `^(jdk|microsoft-jdk|msopenjdk)-`)
	minSize := cfg.Int("min_download_size", 50000)
	setEnv := cfg.Bool("set_environment", true)

	if jdkURL == "" || archivePath == "" || installRoot == "" {
		return missingConfig(javaInstallName, "windows.(download_url/archive_path/install_root)", logs)
	}

	logs = append(logs, "Checking existing Java...")
	stdout, stderr, err := ex.Run(ctx, `powershell -Command "java -version"`)
	if err != nil {
		logs = append(logs, err.Error())
		return failure(javaInstallName, err.Error(), logs)
	}
	if strings.Contains(strings.ToLower(stdout+stderr), "version") {
		logs = append(logs, "Java already installed.")
		return &Result{
			Name:    javaInstallName,
			Status:  StatusSuccess,
			Command: "java -version",
			Details: joinLogs(logs),
			Output:  stdout + stderr,
		}
	}
	logs = append(logs, "Java not found, installing...")

	logs = append(logs, "Ensuring folders exist...")
	archiveDir := cfg.String("archive_dir", "")
	if archiveDir == "" {
		archiveDir = parentDirWindows(archivePath)
	}
	ensureDirWindows(ctx, ex, archiveDir)
	ensureDirWindows(ctx, ex, installRoot)

	logs = append(logs, "Downloading JDK archive...")
	dlLogs, ok := curlDownload(ctx, ex, jdkURL, archivePath, minSize, cfg.String("curl_extra_args", ""))
	logs = append(logs, dlLogs...)
	if !ok {
		return failure(javaInstallName, "JDK download failed", logs)
	}
	logs = append(logs, "JDK download successful.")

	logs = append(logs, "Extracting JDK archive...")
	jdkFolder, exLogs, ok := zipExtract(ctx, ex, archivePath, installRoot, folderPattern)
	logs = append(logs, exLogs...)
	if !ok || jdkFolder == "" {
		return failure(javaInstallName, "JDK extraction failed", logs)
	}
	logs = append(logs, "Extraction complete. Folder: "+jdkFolder)

	javaHomeExpr := cfg.String("java_home_expression", "")
	if javaHomeExpr != "" {
		javaHomeExpr = strings.ReplaceAll(javaHomeExpr, "{folder}", jdkFolder)
	} else {
		javaHomeExpr = fmt.Sprintf("(Join-Path %s %s)", psString(installRoot), psString(jdkFolder))
	}

	if setEnv {
		logs = append(logs, "Setting JAVA_HOME and PATH...")
		envScope := cfg.String("environment_scope", "User")
		setEnvCmd := `powershell -Command "` +
			`$javaHome = ` + javaHomeExpr + `;` +
			`[Environment]::SetEnvironmentVariable('JAVA_HOME', $javaHome, '` + envScope + `')"`
		_, stderr, _ = ex.Run(ctx, setEnvCmd)
		if s := strings.TrimSpace(stderr); s != "" {
			logs = append(logs, s)
		}

		pathCmd := `powershell -Command "` +
			`$bin = Join-Path (` + javaHomeExpr + `) 'bin';` +
			`$old=[Environment]::GetEnvironmentVariable('PATH','` + envScope + `');` +
			`if ($old -notlike '*'+$bin+'*') {` +
			`    [Environment]::SetEnvironmentVariable('PATH',$bin+';'+$old,'` + envScope + `');` +
			`}"`
		_, stderr, _ = ex.Run(ctx, pathCmd)
		if s := strings.TrimSpace(stderr); s != "" {
			logs = append(logs, s)
		}
	}

	logs = append(logs, "Testing Java installation...")
	versionCommand := cfg.String("version_command", "")
	if versionCommand != "" {
		versionCommand = strings.ReplaceAll(versionCommand, "{folder}", jdkFolder)
	} else {
		versionCommand = fmt.Sprintf(`powershell -Command "& (Join-Path (%s) 'bin\java.exe') -version"`, javaHomeExpr)
	}
	stdout, stderr, err = ex.Run(ctx, versionCommand)
	if err != nil {
		logs = append(logs, err.Error())
		return failure(javaInstallName, err.Error(), logs)
	}
	logs = append(logs, strings.TrimSpace(stdout+stderr))

	status := StatusFailed
	details := "Java installation could not be verified"
	if strings.Contains(strings.ToLower(stdout+stderr), "version") {
		status = StatusSuccess
		details = "Java installed and verified"
	}
	logger.Debug().Str("tool", javaInstallName).Str("folder", jdkFolder).Msg("install finished")
	return &Result{
		Name:    javaInstallName,
		Status:  status,
		Command: "java -version",
		Details: details + "\n" + joinLogs(logs),
		Output:  stdout + stderr,
	}
}

func missingConfig(name, path string, logs []string) *Result {
	logs = append(logs, "Missing required configuration: "+path)
	return failure(name, "Missing required configuration: "+path, logs)
}
