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

const tomcatInstallName = "remote_tomcat_install"

type TomcatInstallParams struct {
	Server string `json:"server,omitempty" jsonschema:"description=Inventory server name (optional when only one server is configured)"`
}

func (rt *Runtime) registerTomcatInstall(r *Registry) {
	r.RegisterTool(&ToolDefinition{
		NameValue:        tomcatInstallName,
		DescriptionValue: "Download and install Apache Tomcat on the remote host using configuration-driven settings.",
		ParametersValue:  mustSchemaParametersFor[TomcatInstallParams](),
		ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
			var p TomcatInstallParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			return rt.withServer(ctx, tomcatInstallName, p.Server, func(ex remote.Executor, _ *config.Server) *Result {
				return TomcatInstall(ctx, ex, rt.section("install", "tomcat"), rt.Logger)
			})
		},
	})
}

// TomcatInstall downloads and unpacks Tomcat on the target, reporting the
// resolved installation directory as tomcat_home on success.
func TomcatInstall(ctx context.Context, ex remote.Executor, section config.Section, logger zerolog.Logger) *Result {
	var logs []string

	logs = append(logs, "Detecting remote operating system...")
	osType := ex.OS(ctx)
	logs = append(logs, fmt.Sprintf("Detected OS: %s", osType))

	switch osType {
	case remote.OSWindows:
		return tomcatInstallWindows(ctx, ex, section.OS("windows"), logs)
	case remote.OSLinux:
		return tomcatInstallLinux(ctx, ex, section.OS("linux"), logs)
	default:
		logs = append(logs, "Unsupported operating system detected")
		return failure(tomcatInstallName, "Unsupported OS", logs)
	}
}

func tomcatInstallWindows(ctx context.Context, ex remote.Executor, cfg config.Section, logs []string) *Result {
	downloadURL := cfg.String("download_url", "")
	archivePath := cfg.String("archive_path", "")
	installRoot := cfg.String("install_root", "")
	folderPattern := cfg.String("folder_pattern", "^apache-tomcat-")
	minSize := cfg.Int("min_download_size", 100000)

	if downloadURL == "" || archivePath == "" || installRoot == "" {
		return missingConfig(tomcatInstallName, "windows.(download_url/archive_path/install_root)", logs)
	}

	ensureDirWindows(ctx, ex, parentDirWindows(archivePath))
	ensureDirWindows(ctx, ex, installRoot)

	logs = append(logs, "Downloading Tomcat archive...")
	dlLogs, ok := curlDownload(ctx, ex, downloadURL, archivePath, minSize, cfg.String("curl_extra_args", ""))
	logs = append(logs, dlLogs...)
	if !ok {
		return failure(tomcatInstallName, "Download failed", logs)
	}

	logs = append(logs, "Extracting archive...")
	folderName, exLogs, ok := zipExtract(ctx, ex, archivePath, installRoot, folderPattern)
	logs = append(logs, exLogs...)
	if !ok {
		return failure(tomcatInstallName, "Extraction failed", logs)
	}

	tomcatDir := installRoot
	if folderName != "" {
		tomcatDir = joinRemotePath(installRoot, folderName)
	}
	if strings.TrimSpace(tomcatDir) == "" {
		return failure(tomcatInstallName, "Unable to resolve Tomcat directory", logs)
	}

	// Clear read-only attributes on the startup scripts.
	binCmd := `powershell -Command "` +
		`$bin = ` + psLiteral(joinRemotePath(tomcatDir, "bin")) + `;` +
		`Get-ChildItem $bin -Filter '*.bat' | ForEach-Object { $_.Attributes='Normal' }"`
	ex.Run(ctx, binCmd)
	logs = append(logs, "Set executable attributes for Windows scripts")

	if cfg.Bool("cleanup_archive", true) {
		logs = append(logs, "Cleaning up archive...")
		cleanupCmd := `powershell -Command "` +
			`$archive = ` + psLiteral(archivePath) + `;` +
			`if (Test-Path $archive) { Remove-Item -Force $archive }"`
		ex.Run(ctx, cleanupCmd)
	}

	return &Result{
		Name:       tomcatInstallName,
		Status:     StatusSuccess,
		Command:    "Install Tomcat -> " + downloadURL,
		Details:    "Tomcat extracted to " + tomcatDir,
		Output:     joinLogs(logs),
		TomcatHome: tomcatDir,
	}
}

func tomcatInstallLinux(ctx context.Context, ex remote.Executor, cfg config.Section, logs []string) *Result {
	downloadURL := cfg.String("download_url", "")
	archivePath := cfg.String("archive_path", "")
	installRoot := cfg.String("install_root", "")

	if downloadURL == "" || archivePath == "" || installRoot == "" {
		return missingConfig(tomcatInstallName, "linux.(download_url/archive_path/install_root)", logs)
	}

	stripComponents := cfg.Int("strip_components", 1)

	logs = append(logs, "Preparing directories...")
	_, stderr, err := ex.Run(ctx, fmt.Sprintf("mkdir -p %s", installRoot))
	if err != nil {
		logs = append(logs, err.Error())
		return failure(tomcatInstallName, err.Error(), logs)
	}
	logs = appendOutput(logs, "", stderr)

	logs = append(logs, "Downloading Tomcat archive...")
	_, stderr, err = ex.Run(ctx, fmt.Sprintf("wget -O %s %s", archivePath, downloadURL))
	if err != nil {
		logs = append(logs, err.Error())
		return failure(tomcatInstallName, err.Error(), logs)
	}
	logs = appendOutput(logs, "", stderr)

	logs = append(logs, "Extracting archive...")
	tarCmd := "tar -xf"
	if strings.HasSuffix(archivePath, ".gz") {
		tarCmd = "tar -xzf"
	}
	_, stderr, err = ex.Run(ctx, fmt.Sprintf("%s %s -C %s --strip-components=%d", tarCmd, archivePath, installRoot, stripComponents))
	if err != nil {
		logs = append(logs, err.Error())
		return failure(tomcatInstallName, err.Error(), logs)
	}
	logs = appendOutput(logs, "", stderr)

	if cfg.Bool("cleanup_archive", true) {
		ex.Run(ctx, fmt.Sprintf("rm -f %s", archivePath))
	}

	tomcatDir := cfg.String("final_directory", "")
	if tomcatDir == "" {
		tomcatDir = installRoot
	}
	logs = append(logs, "Adjusting permissions...")
	if _, stderr, err = ex.Run(ctx, fmt.Sprintf("chmod +x %s/bin/*.sh", tomcatDir)); err != nil {
		logs = append(logs, err.Error())
		return failure(tomcatInstallName, err.Error(), logs)
	}
	logs = appendOutput(logs, "", stderr)

	return &Result{
		Name:       tomcatInstallName,
		Status:     StatusSuccess,
		Command:    "Install Tomcat -> " + downloadURL,
		Details:    "Tomcat extracted to " + tomcatDir,
		Output:     joinLogs(logs),
		TomcatHome: tomcatDir,
	}
}

// joinRemotePath appends leaf using whichever separator base already uses.
func joinRemotePath(base, leaf string) string {
	if leaf == "" {
		return base
	}
	if strings.HasSuffix(base, `\`) || strings.HasSuffix(base, "/") {
		return base + leaf
	}
	sep := "/"
	if strings.Contains(base, `\`) {
		sep = `\`
	}
	return base + sep + leaf
}
