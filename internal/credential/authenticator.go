package credential

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Authenticator produces a fresh credential. Implementations typically drive
// an interactive login in an external tool; the agent itself never sees the
// user's password.
type Authenticator interface {
	Authenticate(ctx context.Context) (State, error)
}

// CommandAuthenticator shells out to a configured helper command that
// performs the login and prints the resulting credential as JSON on stdout:
//
//	{"token": "...", "issued_at": "...", "expires_at": "..."}
//
// issued_at and expires_at are optional RFC 3339 timestamps.
type CommandAuthenticator struct {
	command []string
	timeout time.Duration
}

// NewCommandAuthenticator builds a CommandAuthenticator. The command slice
// holds the executable and its arguments.
func NewCommandAuthenticator(command []string, timeout time.Duration) (*CommandAuthenticator, error) {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return nil, errors.New("auth command not configured")
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &CommandAuthenticator{command: command, timeout: timeout}, nil
}

type commandOutput struct {
	Token     string `json:"token"`
	IssuedAt  string `json:"issued_at"`
	ExpiresAt string `json:"expires_at"`
}

// Authenticate runs the helper command and parses the credential it prints.
func (a *CommandAuthenticator) Authenticate(ctx context.Context) (State, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.command[0], a.command[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return State{}, fmt.Errorf("auth command timed out after %s", a.timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return State{}, fmt.Errorf("auth command failed: %w: %s", err, msg)
		}
		return State{}, fmt.Errorf("auth command failed: %w", err)
	}

	var out commandOutput
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &out); err != nil {
		return State{}, fmt.Errorf("decode auth command output: %w", err)
	}
	if strings.TrimSpace(out.Token) == "" {
		return State{}, errors.New("auth command returned no token")
	}

	state := State{Token: strings.TrimSpace(out.Token), IssuedAt: time.Now().UTC()}
	if t, err := parseTimestamp(out.IssuedAt); err == nil {
		state.IssuedAt = t
	}
	if t, err := parseTimestamp(out.ExpiresAt); err == nil {
		state.ExpiresAt = t
	}
	return state, nil
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return time.Parse(time.RFC3339, value)
}
