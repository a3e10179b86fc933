package tools

import (
	"context"
	"strings"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

// fakeExecutor scripts remote command responses for tests. The first rule
// whose substring matches the command wins; unmatched commands succeed with
// empty output.
type fakeExecutor struct {
	osType   remote.OS
	rules    []fakeRule
	commands []string
	closed   bool
}

type fakeRule struct {
	match  string
	stdout string
	stderr string
	err    error
}

func (f *fakeExecutor) on(match, stdout, stderr string) *fakeExecutor {
	f.rules = append(f.rules, fakeRule{match: match, stdout: stdout, stderr: stderr})
	return f
}

func (f *fakeExecutor) onErr(match string, err error) *fakeExecutor {
	f.rules = append(f.rules, fakeRule{match: match, err: err})
	return f
}

func (f *fakeExecutor) Run(_ context.Context, command string) (string, string, error) {
	f.commands = append(f.commands, command)
	for _, rule := range f.rules {
		if strings.Contains(command, rule.match) {
			return rule.stdout, rule.stderr, rule.err
		}
	}
	return "", "", nil
}

func (f *fakeExecutor) OS(context.Context) remote.OS { return f.osType }

func (f *fakeExecutor) Close() error {
	f.closed = true
	return nil
}

func (f *fakeExecutor) ran(match string) bool {
	for _, command := range f.commands {
		if strings.Contains(command, match) {
			return true
		}
	}
	return false
}
