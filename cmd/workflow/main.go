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

// Command workflow runs the fixed Tomcat provisioning sequence against every
// server in the inventory, without any model in the loop.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/workflow"
)

var (
	settingsPath = flag.String("settings", "configs/settings.yaml", "Path to YAML settings file")
	serversPath  = flag.String("servers", "configs/servers.ini", "Path to server inventory INI file")
	serverName   = flag.String("server", "", "Run only against the named server")
	skipStop     = flag.Bool("skip-stop", false, "Leave Tomcat running even when a stop block is configured")
	jsonOut      = flag.Bool("json", false, "Emit the report as JSON instead of a summary")
	debugMode    = flag.Bool("d", false, "Enable debug logging to stderr")
)

func main() {
	flag.Parse()

	logger := initLogger(*debugMode)

	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		fatal(err)
	}
	inventory, err := config.LoadInventory(*serversPath)
	if err != nil {
		fatal(err)
	}

	if err := promptMissingPasswords(inventory); err != nil {
		fatal(err)
	}

	runner := workflow.NewRunner(settings, inventory, nil, logger)
	runner.SkipStop = *skipStop

	reports, err := runner.Run(context.Background(), *serverName)
	if err != nil {
		fatal(err)
	}

	failed := false
	for i := range reports {
		if reports[i].Failed() {
			failed = true
		}
	}

	if *jsonOut {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(reports); err != nil {
			fatal(err)
		}
	} else {
		printSummary(reports)
	}

	if failed {
		os.Exit(1)
	}
}

func initLogger(debug bool) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	var output io.Writer = io.Discard
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		output = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

// promptMissingPasswords asks for a password for every server that has
// neither a password nor a key path. Input is read without echo.
func promptMissingPasswords(inventory *config.Inventory) error {
	for i := range inventory.Servers {
		server := &inventory.Servers[i]
		if server.Password != "" || server.KeyPath != "" {
			continue
		}
		fmt.Printf("Password for %s@%s: ", server.Username, server.Host)
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read password for %s: %w", server.Name, err)
		}
		server.Password = string(raw)
	}
	return nil
}

func printSummary(reports []workflow.ServerReport) {
	for _, report := range reports {
		fmt.Printf("=== Results for %s ===\n", report.Server)
		for _, step := range report.Steps {
			status := "n/a"
			details := ""
			if step.Result != nil {
				status = string(step.Result.Status)
				details = step.Result.Details
			}
			fmt.Printf(" - %s: %s\n", step.Step, status)
			if details != "" {
				fmt.Printf("   details: %s\n", details)
			}
		}
		fmt.Println()
	}
}

func fatal(err error) {
	log.SetFlags(0)
	log.Fatalf("Error: %v", err)
}
