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

package remote

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	apperrors "github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/errors"
)

// DefaultCommandTimeout bounds a single remote command when the caller's
// context carries no deadline of its own.
const DefaultCommandTimeout = 120 * time.Second

// Executor runs a single shell command on a target host and reports the
// captured output. Run honors context cancellation; on timeout the output
// captured so far is still returned alongside the error.
type Executor interface {
	Run(ctx context.Context, command string) (stdout, stderr string, err error)
	OS(ctx context.Context) OS
	Close() error
}

// SSHConfig describes how to reach one target host.
type SSHConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	KeyPath        string
	Passphrase     []byte
	KnownHostsPath string
	// OSHint pins the target OS ("linux"/"windows") so the first command does
	// not pay for a probe; empty or unrecognized values fall back to probing.
	OSHint string
	// InsecureSkipHostKeyChecking disables known_hosts verification; any host
	// key is accepted. Inventory entries opt in explicitly.
	InsecureSkipHostKeyChecking bool
	ConnectTimeout              time.Duration
	CommandTimeout              time.Duration
}

// SSHExecutor holds one SSH connection and runs each command on its own
// session so that a timed-out command cannot wedge subsequent ones.
type SSHExecutor struct {
	client         *ssh.Client
	commandTimeout time.Duration
	osHint         OS

	osOnce sync.Once
	osType OS
}

// Connect dials the configured host and authenticates. Key auth is preferred
// when a key path is set; password auth is the fallback.
func Connect(cfg SSHConfig) (*SSHExecutor, error) {
	address, err := cfg.address()
	if err != nil {
		return nil, err
	}

	clientConfig, err := cfg.clientConfig()
	if err != nil {
		return nil, err
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSSH, fmt.Sprintf("dial %s", address), err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, address, clientConfig)
	if err != nil {
		conn.Close()
		return nil, apperrors.Wrap(apperrors.CodeSSH, fmt.Sprintf("handshake with %s", address), err)
	}

	cmdTimeout := cfg.CommandTimeout
	if cmdTimeout <= 0 {
		cmdTimeout = DefaultCommandTimeout
	}

	return &SSHExecutor{
		client:         ssh.NewClient(clientConn, chans, reqs),
		commandTimeout: cmdTimeout,
		osHint:         hintedOS(cfg.OSHint),
	}, nil
}

// Run executes a command over a fresh session. Stdout and stderr are drained
// incrementally into buffers while the command runs; a wall-clock deadline is
// enforced on top of any context deadline.
func (e *SSHExecutor) Run(ctx context.Context, command string) (string, string, error) {
	session, err := e.client.NewSession()
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.CodeSSH, "open session", err)
	}
	defer session.Close()

	var stdout, stderr syncBuffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Start(command); err != nil {
		return "", "", apperrors.Wrap(apperrors.CodeSSH, "start command", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	timer := time.NewTimer(e.commandTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			// Non-zero exit still carries useful output for the tools; they
			// inspect stderr, so exit errors are reported through it rather
			// than failing the call.
			if _, ok := err.(*ssh.ExitError); ok {
				return stdout.String(), stderr.String(), nil
			}
			return stdout.String(), stderr.String(), apperrors.Wrap(apperrors.CodeSSH, "command failed", err)
		}
		return stdout.String(), stderr.String(), nil
	case <-ctx.Done():
		session.Close()
		return stdout.String(), stderr.String(),
			apperrors.Wrap(apperrors.CodeTimeout, fmt.Sprintf("command cancelled: %s", command), ctx.Err())
	case <-timer.C:
		session.Close()
		return stdout.String(), stderr.String(),
			apperrors.New(apperrors.CodeTimeout, fmt.Sprintf("command timed out after %s: %s", e.commandTimeout, command))
	}
}

// OS reports the operating system of the target. A configured hint answers
// without touching the host; otherwise the target is probed once.
func (e *SSHExecutor) OS(ctx context.Context) OS {
	e.osOnce.Do(func() {
		if e.osHint != "" && e.osHint != OSUnknown {
			e.osType = e.osHint
			return
		}
		e.osType = detectOS(ctx, e)
	})
	return e.osType
}

// Close tears down the SSH connection.
func (e *SSHExecutor) Close() error {
	return e.client.Close()
}

func (c SSHConfig) address() (string, error) {
	host := strings.TrimSpace(c.Host)
	if host == "" {
		return "", apperrors.New(apperrors.CodeConfig, "ssh host is required")
	}

	if c.Port != "" {
		return net.JoinHostPort(host, c.Port), nil
	}

	if _, _, err := net.SplitHostPort(host); err == nil {
		return host, nil
	}

	return net.JoinHostPort(host, "22"), nil
}

func (c SSHConfig) clientConfig() (*ssh.ClientConfig, error) {
	if c.User == "" {
		return nil, apperrors.New(apperrors.CodeConfig, "ssh user is required")
	}

	var auth []ssh.AuthMethod
	if c.KeyPath != "" {
		signer, err := c.signer()
		if err != nil {
			return nil, err
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if c.Password != "" {
		auth = append(auth, ssh.Password(c.Password))
	}
	if len(auth) == 0 {
		return nil, apperrors.New(apperrors.CodeConfig, "ssh credentials required: set key_path or password")
	}

	var hostKeyCallback ssh.HostKeyCallback
	if c.InsecureSkipHostKeyChecking {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	} else {
		callback, err := c.knownHostsCallback()
		if err != nil {
			return nil, err
		}
		hostKeyCallback = callback
	}

	return &ssh.ClientConfig{
		User:            c.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         c.ConnectTimeout,
	}, nil
}

func (c SSHConfig) signer() (ssh.Signer, error) {
	privateKey, err := os.ReadFile(c.KeyPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfig, "read private key", err)
	}

	if len(c.Passphrase) > 0 {
		return ssh.ParsePrivateKeyWithPassphrase(privateKey, c.Passphrase)
	}

	return ssh.ParsePrivateKey(privateKey)
}

func (c SSHConfig) knownHostsCallback() (ssh.HostKeyCallback, error) {
	path := strings.TrimSpace(c.KnownHostsPath)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, apperrors.New(apperrors.CodeConfig, "known hosts path not set and home dir unavailable")
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}

	return knownhosts.New(path)
}

// syncBuffer is a mutex-guarded buffer; the ssh package writes stdout and
// stderr from its own goroutines while Run may read on timeout.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
