package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q
%s`, filepath.Join(dir, "state"), filepath.Join(dir, "logs"), extra)
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}

	cfgPath := writeTestConfig(t, "")
	out, err = runCLI(t, "--config", cfgPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigShowPrintsResolvedConfig(t *testing.T) {
	cfgPath := writeTestConfig(t, `[bank]
teaching_type = "superior"
`)

	out, err := runCLI(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, cfgPath)
	requireContains(t, out, "SUPERIOR")
}

func TestCacheStatsEmptyCache(t *testing.T) {
	cfgPath := writeTestConfig(t, "")

	out, err := runCLI(t, "--config", cfgPath, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Search results")
	requireContains(t, out, "Questions")
}

func TestCacheCommandsRequireEnabledCache(t *testing.T) {
	cfgPath := writeTestConfig(t, `[cache]
enabled = false
`)

	if _, err := runCLI(t, "--config", cfgPath, "cache", "prune"); err == nil {
		t.Fatal("expected error when cache is disabled")
	}
}

func TestColumnIsNumeric(t *testing.T) {
	rows := [][]string{
		{"História", "12", "1 (33%)"},
		{"Química", "7", "2s"},
	}
	if columnIsNumeric(rows, 0) {
		t.Fatal("names are not numeric")
	}
	if !columnIsNumeric(rows, 1) {
		t.Fatal("count column should be numeric")
	}
	if columnIsNumeric(rows, 2) {
		t.Fatal("mixed cells are not numeric")
	}
	if columnIsNumeric(nil, 0) {
		t.Fatal("empty column is not numeric")
	}
}

func TestAuthStatusWithoutCredential(t *testing.T) {
	cfgPath := writeTestConfig(t, `[auth]
command = ["true"]
`)

	out, err := runCLI(t, "--config", cfgPath, "auth", "status")
	if err != nil {
		t.Fatalf("auth status: %v", err)
	}
	requireContains(t, out, "No credential stored")
}
