package credential

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeAuthenticator struct {
	calls atomic.Int64
	state State
	err   error
	delay time.Duration
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context) (State, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return State{}, f.err
	}
	return f.state, nil
}

func newTestManager(t *testing.T, auth Authenticator) *Manager {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "credential.json"))
	mgr, err := NewManager(store, auth, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return mgr
}

func TestEnsureValidUsesCachedToken(t *testing.T) {
	auth := &fakeAuthenticator{}
	mgr := newTestManager(t, auth)
	mgr.state = State{Token: "cached", ExpiresAt: time.Now().Add(2 * time.Hour)}

	token, err := mgr.EnsureValid(context.Background())
	if err != nil {
		t.Fatalf("EnsureValid: %v", err)
	}
	if token != "cached" {
		t.Fatalf("token = %q", token)
	}
	if auth.calls.Load() != 0 {
		t.Fatal("authenticator should not run for a valid credential")
	}
}

func TestEnsureValidRefreshesExpiredToken(t *testing.T) {
	auth := &fakeAuthenticator{state: State{Token: "fresh", ExpiresAt: time.Now().Add(time.Hour)}}
	mgr := newTestManager(t, auth)
	mgr.state = State{Token: "stale", ExpiresAt: time.Now().Add(-time.Minute)}

	token, err := mgr.EnsureValid(context.Background())
	if err != nil {
		t.Fatalf("EnsureValid: %v", err)
	}
	if token != "fresh" {
		t.Fatalf("token = %q", token)
	}
	if auth.calls.Load() != 1 {
		t.Fatalf("authenticator calls = %d", auth.calls.Load())
	}
	if !mgr.IsValid() {
		t.Fatal("manager should report valid after refresh")
	}
}

func TestEnsureValidSerializesRefresh(t *testing.T) {
	auth := &fakeAuthenticator{
		state: State{Token: "fresh", ExpiresAt: time.Now().Add(time.Hour)},
		delay: 20 * time.Millisecond,
	}
	mgr := newTestManager(t, auth)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := mgr.EnsureValid(context.Background()); err != nil {
				t.Errorf("EnsureValid: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls := auth.calls.Load(); calls != 1 {
		t.Fatalf("expected a single login, got %d", calls)
	}
}

func TestEnsureValidWrapsAuthenticatorFailure(t *testing.T) {
	auth := &fakeAuthenticator{err: errors.New("login window closed")}
	mgr := newTestManager(t, auth)

	if _, err := mgr.EnsureValid(context.Background()); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestForceRefreshDiscardsValidToken(t *testing.T) {
	auth := &fakeAuthenticator{state: State{Token: "fresh", ExpiresAt: time.Now().Add(time.Hour)}}
	mgr := newTestManager(t, auth)
	mgr.state = State{Token: "rejected-by-server", ExpiresAt: time.Now().Add(time.Hour)}

	token, err := mgr.ForceRefresh(context.Background())
	if err != nil {
		t.Fatalf("ForceRefresh: %v", err)
	}
	if token != "fresh" {
		t.Fatalf("token = %q", token)
	}
	if auth.calls.Load() != 1 {
		t.Fatalf("authenticator calls = %d", auth.calls.Load())
	}
}

func TestHeadersCarryBearerAndOrigin(t *testing.T) {
	mgr := newTestManager(t, &fakeAuthenticator{})
	headers := mgr.Headers("tok")
	if headers["Authorization"] != "Bearer tok" {
		t.Fatalf("Authorization = %q", headers["Authorization"])
	}
	if headers["Origin"] == "" || headers["Referer"] == "" {
		t.Fatalf("origin headers missing: %v", headers)
	}
}

func TestNewManagerSurvivesCorruptCredentialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	auth := &fakeAuthenticator{state: State{Token: "fresh", ExpiresAt: time.Now().Add(time.Hour)}}
	mgr, err := NewManager(NewFileStore(path), auth, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if mgr.IsValid() {
		t.Fatal("corrupt state must start unauthenticated")
	}

	token, err := mgr.EnsureValid(context.Background())
	if err != nil {
		t.Fatalf("EnsureValid: %v", err)
	}
	if token != "fresh" {
		t.Fatalf("token = %q", token)
	}
}

func TestStateValidity(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		state State
		want  bool
	}{
		{"empty token", State{}, false},
		{"no expiry", State{Token: "t"}, false},
		{"future expiry", State{Token: "t", ExpiresAt: now.Add(time.Hour)}, true},
		{"about to expire", State{Token: "t", ExpiresAt: now.Add(30 * time.Second)}, true},
		{"expires exactly now", State{Token: "t", ExpiresAt: now}, false},
		{"expired", State{Token: "t", ExpiresAt: now.Add(-time.Hour)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.state.Valid(now); got != tc.want {
				t.Fatalf("Valid = %v, want %v", got, tc.want)
			}
		})
	}
}
