package credential

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestCommandAuthenticatorParsesOutput(t *testing.T) {
	requireShell(t)
	auth, err := NewCommandAuthenticator([]string{
		"sh", "-c", `echo '{"token":"tok-1","expires_at":"2030-01-01T00:00:00Z"}'`,
	}, time.Minute)
	if err != nil {
		t.Fatalf("NewCommandAuthenticator: %v", err)
	}

	state, err := auth.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if state.Token != "tok-1" {
		t.Fatalf("token = %q", state.Token)
	}
	if state.ExpiresAt.Year() != 2030 {
		t.Fatalf("expires_at = %v", state.ExpiresAt)
	}
}

func TestCommandAuthenticatorRejectsEmptyToken(t *testing.T) {
	requireShell(t)
	auth, err := NewCommandAuthenticator([]string{"sh", "-c", `echo '{"token":""}'`}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.Authenticate(context.Background()); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestCommandAuthenticatorReportsFailure(t *testing.T) {
	requireShell(t)
	auth, err := NewCommandAuthenticator([]string{"sh", "-c", "echo boom >&2; exit 3"}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.Authenticate(context.Background()); err == nil {
		t.Fatal("expected error from failing command")
	}
}

func TestCommandAuthenticatorTimesOut(t *testing.T) {
	requireShell(t)
	auth, err := NewCommandAuthenticator([]string{"sh", "-c", "sleep 5"}, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.Authenticate(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestNewCommandAuthenticatorRequiresCommand(t *testing.T) {
	if _, err := NewCommandAuthenticator(nil, time.Minute); err == nil {
		t.Fatal("expected error for empty command")
	}
}
