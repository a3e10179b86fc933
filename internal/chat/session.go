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

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/sashabaranov/go-openai"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/tools"
	systemprompt "github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/system_prompt"
)

// ConfirmFunc is asked before an ask-listed tool runs. Returning true runs
// the tool; alwaysAllow additionally whitelists it for the session.
type ConfirmFunc func(toolName, args string) (approved, alwaysAllow bool)

// maxToolIterations bounds the tool loop so a confused model cannot spin
// forever between tool calls.
const maxToolIterations = 16

// Session represents a chat session with conversation state.
//
// Thread-safety: message operations are protected by an internal mutex; the
// Registry has its own locking.
type Session struct {
	Client       ChatClient
	Config       *config.Config
	Messages     []openai.ChatCompletionMessage
	ToolRegistry *tools.Registry
	Confirm      ConfirmFunc

	mu                sync.Mutex
	lastSavedMsgCount int
}

var defaultSystemPrompt = mustLoadSystemPrompt()

func mustLoadSystemPrompt() string {
	prompt, err := systemprompt.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load system prompt: %v", err))
	}
	return prompt
}

// NewSession creates a chat session with a default OpenAI client.
func NewSession(cfg *config.Config, registry *tools.Registry) *Session {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIURL != "" {
		clientConfig.BaseURL = cfg.APIURL
		clientConfig.HTTPClient = &http.Client{}
	}
	return NewSessionWithClient(cfg, registry, openai.NewClientWithConfig(clientConfig))
}

// NewSessionWithClient creates a chat session with a provided client (for testing).
func NewSessionWithClient(cfg *config.Config, registry *tools.Registry, client ChatClient) *Session {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: defaultSystemPrompt,
		},
	}
	return &Session{
		Client:       client,
		Config:       cfg,
		Messages:     messages,
		ToolRegistry: registry,
	}
}

// AddMessage adds a message to the conversation history.
func (s *Session) AddMessage(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, openai.ChatCompletionMessage{
		Role:    role,
		Content: content,
	})
	s.trimLocked()
}

// AddAssistantMessage adds an assistant message with optional tool calls.
func (s *Session) AddAssistantMessage(content string, toolCalls []openai.ToolCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, openai.ChatCompletionMessage{
		Role:      openai.ChatMessageRoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	})
}

// AddToolResultMessage appends a tool result message.
func (s *Session) AddToolResultMessage(call openai.ToolCall, result *tools.ToolResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content := result.Result
	if result.Error != nil && content == "" {
		content = fmt.Sprintf("Error: %v", result.Error)
	}

	name := call.Function.Name
	if name == "" {
		name = "unknown_tool"
	}
	s.Messages = append(s.Messages, openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    content,
		Name:       name,
		ToolCallID: call.ID,
	})
}

// trimLocked drops the oldest non-system messages once the history grows past
// the configured cap. The cut never lands on a tool-role message, so an
// assistant tool call is never separated from its results.
func (s *Session) trimLocked() {
	max := s.Config.HistoryMaxMessages
	if max <= 0 || len(s.Messages)-1 <= max {
		return
	}
	cut := 1 + (len(s.Messages) - 1 - max)
	for cut < len(s.Messages) && s.Messages[cut].Role == openai.ChatMessageRoleTool {
		cut++
	}
	s.Messages = append(s.Messages[:1], s.Messages[cut:]...)
	if s.lastSavedMsgCount > len(s.Messages)-1 {
		s.lastSavedMsgCount = len(s.Messages) - 1
	}
}

// MessagesSnapshot returns a copy of the current messages.
func (s *Session) MessagesSnapshot() []openai.ChatCompletionMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]openai.ChatCompletionMessage, len(s.Messages))
	copy(msgs, s.Messages)
	return msgs
}

// GetResponseWithContext sends the prompt and loops through tool calls until
// the model produces a final text response.
func (s *Session) GetResponseWithContext(ctx context.Context, prompt string) (string, error) {
	s.AddMessage(openai.ChatMessageRoleUser, prompt)

	for iteration := 0; iteration < maxToolIterations; iteration++ {
		req := openai.ChatCompletionRequest{
			Model:    s.Config.Model,
			Messages: s.MessagesSnapshot(),
			Tools:    s.ToolRegistry.OpenAITools(),
		}
		if s.Config.Temperature != nil {
			req.Temperature = *s.Config.Temperature
		}
		if s.Config.MaxTokens != nil {
			req.MaxTokens = *s.Config.MaxTokens
		}

		resp, err := s.Client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", &APIError{Operation: "create_completion", Err: err}
		}
		if len(resp.Choices) == 0 {
			return "", &APIError{Operation: "create_completion", Err: errors.New("empty response")}
		}

		response := resp.Choices[0].Message
		s.AddAssistantMessage(response.Content, response.ToolCalls)

		if len(response.ToolCalls) == 0 {
			return response.Content, nil
		}

		for _, toolCall := range response.ToolCalls {
			result := s.executeToolCall(ctx, toolCall)
			s.AddToolResultMessage(toolCall, result)
		}
	}

	return "", &APIError{Operation: "tool_loop", Err: fmt.Errorf("no final response after %d tool iterations", maxToolIterations)}
}

// GetResponse is GetResponseWithContext with a background context.
func (s *Session) GetResponse(prompt string) (string, error) {
	return s.GetResponseWithContext(context.Background(), prompt)
}

// executeToolCall runs one call under policy, routing confirmation requests
// through the Confirm hook when one is installed.
func (s *Session) executeToolCall(ctx context.Context, call openai.ToolCall) *tools.ToolResult {
	result := s.ToolRegistry.ExecuteToolCall(ctx, call)
	if result.Error == nil || !errors.Is(result.Error, tools.ErrToolRequiresConfirmation) {
		return result
	}
	if s.Confirm == nil {
		return result
	}

	approved, always := s.Confirm(call.Function.Name, call.Function.Arguments)
	if !approved {
		return &tools.ToolResult{
			Function: call.Function.Name,
			Result:   fmt.Sprintf("Tool '%s' was declined by the user.", call.Function.Name),
		}
	}
	if always {
		s.ToolRegistry.AllowTool(call.Function.Name)
	}
	return s.ToolRegistry.ExecuteToolCallWithOptions(ctx, call, tools.ExecuteOptions{Force: true})
}

// ClearHistory clears the conversation history.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	systemMsg := s.Messages[0]
	s.Messages = []openai.ChatCompletionMessage{systemMsg}
	s.lastSavedMsgCount = 0
}

// GetHistory returns the conversation history excluding the system message.
func (s *Session) GetHistory() []openai.ChatCompletionMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Messages) <= 1 {
		return []openai.ChatCompletionMessage{}
	}
	return s.Messages[1:]
}

// SaveConversationHistory appends new messages to the history file.
func (s *Session) SaveConversationHistory(filepath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.Messages[1:]
	if len(history) <= s.lastSavedMsgCount {
		return nil
	}

	file, err := os.OpenFile(filepath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return &HistoryError{Operation: "open", Filepath: filepath, Err: err}
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for i := s.lastSavedMsgCount; i < len(history); i++ {
		if err := encoder.Encode(history[i]); err != nil {
			return &HistoryError{Operation: "encode", Filepath: filepath, Err: err}
		}
	}

	s.lastSavedMsgCount = len(history)
	return nil
}

// LoadConversationHistory loads prior messages from a file, keeping only the
// most recent maxLines entries.
func (s *Session) LoadConversationHistory(filepath string, maxLines int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &HistoryError{Operation: "open", Filepath: filepath, Err: err}
	}
	defer file.Close()

	var messages []openai.ChatCompletionMessage
	decoder := json.NewDecoder(file)
	for {
		var msg openai.ChatCompletionMessage
		if err := decoder.Decode(&msg); err != nil {
			if err == io.EOF {
				break
			}
			return &HistoryError{Operation: "decode", Filepath: filepath, Err: err}
		}
		messages = append(messages, msg)
	}

	if maxLines > 0 && len(messages) > maxLines {
		messages = messages[len(messages)-maxLines:]
	}

	s.Messages = append(s.Messages, messages...)
	s.lastSavedMsgCount = len(messages)
	return nil
}

// PrintHistory prints the conversation history.
func (s *Session) PrintHistory() {
	fmt.Println("--- Conversation History ---")
	for _, msg := range s.MessagesSnapshot() {
		role := "Unknown"
		switch msg.Role {
		case openai.ChatMessageRoleSystem:
			role = "System"
		case openai.ChatMessageRoleUser:
			role = "User"
		case openai.ChatMessageRoleAssistant:
			role = "Assistant"
		case openai.ChatMessageRoleTool:
			role = "Tool"
		}
		fmt.Printf("%s: %s\n", role, msg.Content)
	}
	fmt.Println("--- End History ---")
}

// Close is a no-op for now; sessions hold no external resources.
func (s *Session) Close() error {
	return nil
}
