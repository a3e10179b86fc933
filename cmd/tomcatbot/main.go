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
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/chat"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/tools"
)

var (
	debugMode  = flag.Bool("d", false, "Enable debug mode")
	logFile    = flag.String("log-file", "", "Log file path (logs disabled by default)")
	configPath = flag.String("config", "config.yaml", "Agent configuration file")
)

func main() {
	flag.Parse()

	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	logger := initLogger(*debugMode, *logFile)
	logger.Info().Msg("TomcatBot starting")

	// "-" switches to batch mode: one prompt on stdin, one answer on stdout.
	args := flag.Args()
	if len(args) > 0 && args[0] == "-" {
		runBatchMode(logger, *configPath)
		return
	}

	runREPL(logger, *configPath)
}

func initLogger(debug bool, logFilePath string) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var output io.Writer
	if logFilePath != "" {
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		output = file
	} else {
		output = io.Discard
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// buildSession loads the agent config plus the provisioning settings and
// inventory, registers the tools, and returns a ready chat session.
func buildSession(configPath string, logger zerolog.Logger) (*chat.Session, *config.Config, *config.Inventory, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	settings, err := config.LoadSettings(cfg.SettingsFile)
	if err != nil {
		return nil, nil, nil, err
	}
	inventory, err := config.LoadInventory(cfg.ServersFile)
	if err != nil {
		return nil, nil, nil, err
	}

	registry := tools.NewRegistry(tools.PolicyFromLists(cfg.Tools.Allow, cfg.Tools.Ask, cfg.Tools.Deny))
	runtime := tools.NewRuntime(settings, inventory, nil, logger)
	runtime.RegisterAll(registry)

	for _, warning := range cfg.Validate(registry.GetToolNames()) {
		logger.Warn().Str("field", warning.Field).Msg(warning.Message)
	}

	session := chat.NewSession(cfg, registry)

	if cfg.HistoryFile != "" {
		if err := session.LoadConversationHistory(cfg.HistoryFile, cfg.HistoryMaxMessages); err != nil {
			logger.Warn().Err(err).Msg("Failed to load conversation history")
		}
	}

	return session, cfg, inventory, nil
}
