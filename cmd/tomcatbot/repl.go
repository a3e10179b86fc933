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
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/chat"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
)

type repl struct {
	session   *chat.Session
	cfg       *config.Config
	inventory *config.Inventory
	logger    zerolog.Logger
	rl        *readline.Instance
}

func runREPL(logger zerolog.Logger, configPath string) {
	session, cfg, inventory, err := buildSession(configPath, logger)
	if err != nil {
		logger.Error().Err(err).Msg("startup failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tomcatbot> ",
		HistoryFile:     os.TempDir() + "/tomcatbot_readline_history",
		AutoComplete:    commandCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		logger.Error().Err(err).Msg("readline init failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	r := &repl{session: session, cfg: cfg, inventory: inventory, logger: logger, rl: rl}
	session.Confirm = r.askToolApproval

	fmt.Println("TomcatBot - Tomcat provisioning assistant. Type /help for commands.")
	fmt.Printf("Model: %s | Servers: %s\n\n", cfg.Model, strings.Join(inventory.Names(), ", "))

	r.loop()
}

func (r *repl) loop() {
	for {
		line, err := r.rl.Readline()
		switch classifyReadlineError(line, err) {
		case readlineContinue:
			continue
		case readlineExit:
			r.shutdown()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if handleCommand(input, r) {
				r.shutdown()
				return
			}
			continue
		}

		r.logger.Info().Str("user_input", input).Msg("User input received")
		response, err := r.session.GetResponseWithContext(context.Background(), input)
		if err != nil {
			r.logger.Error().Err(err).Msg("Error getting response")
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Println(response)

		if r.cfg.HistoryFile != "" {
			if err := r.session.SaveConversationHistory(r.cfg.HistoryFile); err != nil {
				r.logger.Warn().Err(err).Msg("Failed to save conversation history")
			}
		}
	}
}

func (r *repl) shutdown() {
	if r.cfg.HistoryFile != "" {
		if err := r.session.SaveConversationHistory(r.cfg.HistoryFile); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to save conversation history")
		}
	}
	fmt.Println("Bye.")
}

// askToolApproval prompts before an ask-listed tool runs. Answering "a"
// whitelists the tool for the rest of the session.
func (r *repl) askToolApproval(toolName, args string) (bool, bool) {
	fmt.Printf("\nTool %q wants to run with arguments:\n  %s\n", toolName, args)
	r.rl.SetPrompt("Run it? [y/N/a(lways)] ")
	defer r.rl.SetPrompt("tomcatbot> ")
	for {
		answer, err := r.rl.Readline()
		if err != nil {
			return false, false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, false
		case "a", "always":
			return true, true
		case "", "n", "no":
			return false, false
		}
	}
}

type readlineAction int

const (
	readlineContinue readlineAction = iota
	readlineExit
	readlineUnhandled
)

func classifyReadlineError(line string, err error) readlineAction {
	switch {
	case err == nil:
		return readlineUnhandled
	case err == readline.ErrInterrupt:
		return readlineContinue
	case err == io.EOF:
		if strings.TrimSpace(line) == "" {
			return readlineExit
		}
		return readlineContinue
	default:
		return readlineUnhandled
	}
}

func commandCompleter() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(availableCommands()))
	for _, cmd := range availableCommands() {
		items = append(items, readline.PcItem("/"+cmd.Name))
	}
	return readline.NewPrefixCompleter(items...)
}
