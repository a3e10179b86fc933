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
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
)

// Command represents a slash command.
type Command struct {
	Name        string
	Description string
}

func availableCommands() []Command {
	return []Command{
		{Name: "help", Description: "Show available commands"},
		{Name: "tools", Description: "List registered tools and their permissions"},
		{Name: "servers", Description: "List the configured target servers"},
		{Name: "history", Description: "Display conversation history"},
		{Name: "clear", Description: "Clear conversation history"},
		{Name: "debug", Description: "Toggle debug logging"},
		{Name: "quit", Description: "Exit the application"},
		{Name: "exit", Description: "Exit the application"},
	}
}

// handleCommand processes slash commands; returns true when the REPL should
// quit.
func handleCommand(input string, r *repl) bool {
	cmdName := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(input, "/")))
	r.logger.Debug().Str("command", cmdName).Msg("Executing command")

	switch cmdName {
	case "help":
		showHelp()
	case "tools":
		showTools(r)
	case "servers":
		showServers(r)
	case "history":
		showHistory(r)
	case "clear":
		r.session.ClearHistory()
		fmt.Println("Conversation history cleared")
	case "debug":
		toggleDebug()
	case "quit", "exit":
		return true
	default:
		fmt.Printf("Unknown command: /%s (type /help for available commands)\n", cmdName)
	}
	return false
}

func showHelp() {
	fmt.Println("\nAvailable Commands:")
	seen := make(map[string]bool)
	for _, cmd := range availableCommands() {
		if seen[cmd.Name] {
			continue
		}
		seen[cmd.Name] = true
		fmt.Printf("  /%-10s - %s\n", cmd.Name, cmd.Description)
	}
	fmt.Println()
}

func showTools(r *repl) {
	names := r.session.ToolRegistry.GetToolNames()
	if len(names) == 0 {
		fmt.Println("No tools registered")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "Tool\tPermission")
	for _, name := range names {
		perm := r.session.ToolRegistry.GetPermission(name)
		level := "denied"
		switch {
		case perm.Allowed && perm.RequireConfirmation:
			level = "ask"
		case perm.Allowed:
			level = "allowed"
		}
		fmt.Fprintf(w, "%s\t%s\n", name, level)
	}
	w.Flush()
	fmt.Println()
}

func showServers(r *repl) {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "Name\tHost\tPort\tUser")
	for _, server := range r.inventory.Servers {
		port := server.Port
		if port == "" {
			port = "22"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", server.Name, server.Host, port, server.Username)
	}
	w.Flush()
	fmt.Println()
}

func showHistory(r *repl) {
	messages := r.session.GetHistory()
	if len(messages) == 0 {
		fmt.Println("No conversation history")
		return
	}

	fmt.Println("\nConversation History:")
	for _, msg := range messages {
		switch msg.Role {
		case "user":
			fmt.Printf("> %s\n", msg.Content)
		case "assistant":
			if msg.Content != "" {
				fmt.Printf("  %s\n", msg.Content)
			}
		}
	}
	fmt.Println()
}

func toggleDebug() {
	if zerolog.GlobalLevel() == zerolog.DebugLevel {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		fmt.Println("Debug mode disabled")
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		fmt.Println("Debug mode enabled")
	}
}
