package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// ErrToolNotAllowed indicates a tool is blocked by the current policy.
var ErrToolNotAllowed = errors.New("tool blocked by policy")

// ErrToolRequiresConfirmation indicates a tool requires confirmation before running.
var ErrToolRequiresConfirmation = errors.New("tool requires confirmation")

// ToolResult represents the outcome of a tool invocation as handed back to
// the model.
type ToolResult struct {
	Function string
	Result   string
	Error    error
}

// Permission describes the policy for a tool.
type Permission struct {
	Allowed             bool
	RequireConfirmation bool
}

// Policy configures which tools are allowed, which require confirmation, and
// which are denied outright.
type Policy struct {
	Allow map[string]bool
	Ask   map[string]bool
	Deny  map[string]bool
}

// PolicyFromLists builds a policy from allow/ask/deny name lists.
func PolicyFromLists(allow, ask, deny []string) Policy {
	toMap := func(names []string) map[string]bool {
		m := make(map[string]bool, len(names))
		for _, name := range names {
			m[name] = true
		}
		return m
	}
	return Policy{Allow: toMap(allow), Ask: toMap(ask), Deny: toMap(deny)}
}

// ExecuteOptions controls how tool execution is handled.
type ExecuteOptions struct {
	// Force bypasses policy checks and confirmation requirements (use only
	// after explicit user consent).
	Force bool
}

// Registry holds all available tools with their permissions.
type Registry struct {
	mu          sync.RWMutex
	tools       map[string]Tool
	permissions map[string]Permission
}

// NewRegistry creates an empty tool registry with the given policy. Tools are
// registered afterwards by the runtime; unknown names default to blocked.
func NewRegistry(policy Policy) *Registry {
	return &Registry{
		tools:       make(map[string]Tool),
		permissions: permissionsFromPolicy(policy),
	}
}

func permissionsFromPolicy(policy Policy) map[string]Permission {
	perms := make(map[string]Permission)
	for name := range policy.Allow {
		perms[name] = Permission{Allowed: true}
	}
	for name := range policy.Ask {
		perms[name] = Permission{Allowed: true, RequireConfirmation: true}
	}
	for name := range policy.Deny {
		perms[name] = Permission{}
	}
	return perms
}

// RegisterTool adds a tool to the registry. Tools absent from the policy
// default to blocked with confirmation required.
func (r *Registry) RegisterTool(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
	if _, ok := r.permissions[tool.Name()]; !ok {
		r.permissions[tool.Name()] = Permission{Allowed: false, RequireConfirmation: true}
	}
}

// GetToolNames returns the sorted names of all registered tools.
func (r *Registry) GetToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetTools returns all registered tools.
func (r *Registry) GetTools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	return tools
}

// OpenAITools returns the registry as OpenAI tool definitions.
func (r *Registry) OpenAITools() []openai.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]openai.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Parameters(),
			},
		})
	}
	return defs
}

// Execute runs the named tool with the given arguments under policy.
func (r *Registry) Execute(ctx context.Context, function string, args map[string]interface{}) *ToolResult {
	return r.ExecuteWithOptions(ctx, function, args, ExecuteOptions{})
}

// ExecuteWithOptions runs the tool using the provided options.
func (r *Registry) ExecuteWithOptions(ctx context.Context, function string, args map[string]interface{}, opts ExecuteOptions) *ToolResult {
	result := &ToolResult{Function: function}

	tool, exists := r.getTool(function)
	if !exists {
		result.Error = fmt.Errorf("unknown tool: %s", function)
		result.Result = fmt.Sprintf("Error: Tool '%s' not found. Available tools: %v", function, r.GetToolNames())
		return result
	}

	if !opts.Force {
		perm := r.getPermission(function)
		if !perm.Allowed {
			result.Error = fmt.Errorf("%w: %s", ErrToolNotAllowed, function)
			result.Result = fmt.Sprintf("Tool '%s' is blocked by policy. Enable it to proceed.", function)
			return result
		}
		if perm.RequireConfirmation {
			result.Error = fmt.Errorf("%w: %s", ErrToolRequiresConfirmation, function)
			result.Result = fmt.Sprintf("Tool '%s' requires explicit approval before running.", function)
			return result
		}
	}

	if err := tool.Validate(args); err != nil {
		result.Error = fmt.Errorf("invalid arguments for %s: %w", function, err)
		result.Result = fmt.Sprintf("Error: %v", err)
		return result
	}

	result.Result, result.Error = tool.Execute(ctx, args)
	return result
}

// ExecuteToolCall executes an OpenAI tool call payload.
func (r *Registry) ExecuteToolCall(ctx context.Context, call openai.ToolCall) *ToolResult {
	return r.ExecuteToolCallWithOptions(ctx, call, ExecuteOptions{})
}

// ExecuteToolCallWithOptions executes a tool call with execution options.
func (r *Registry) ExecuteToolCallWithOptions(ctx context.Context, call openai.ToolCall, opts ExecuteOptions) *ToolResult {
	args := map[string]interface{}{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return &ToolResult{
				Function: call.Function.Name,
				Error:    fmt.Errorf("invalid tool arguments: %w", err),
			}
		}
	}
	name := call.Function.Name
	if name == "" {
		return &ToolResult{
			Function: "unknown_tool",
			Error:    fmt.Errorf("tool call missing function name"),
		}
	}
	return r.ExecuteWithOptions(ctx, name, args, opts)
}

// GetPermission returns the current permission entry for a tool.
func (r *Registry) GetPermission(name string) Permission {
	return r.getPermission(name)
}

// AllowTool marks a tool as allowed without confirmation for the rest of the
// session.
func (r *Registry) AllowTool(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.permissions[name] = Permission{Allowed: true}
}

func (r *Registry) getTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *Registry) getPermission(name string) Permission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if perm, ok := r.permissions[name]; ok {
		return perm
	}
	// Default for unknown tools: blocked and requires confirmation.
	return Permission{Allowed: false, RequireConfirmation: true}
}
