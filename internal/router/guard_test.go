package router

import (
	"io"
	"log/slog"
	"testing"
)

type staticCreds bool

func (s staticCreds) HasCredential() bool { return bool(s) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		route      string
		hasCred    bool
		wantTarget string
		wantRedir  bool
	}{
		{"public route without credential", RouteChat, false, RouteChat, false},
		{"public route with credential", RouteChat, true, RouteChat, false},
		{"login route without credential", RouteLogin, false, RouteLogin, false},
		{"private route without credential", "/settings", false, RouteLogin, true},
		{"private subroute without credential", RouteChangePassword, false, RouteLogin, true},
		{"private route with credential", "/settings", true, "/settings", false},
		{"private subroute with credential", RouteChangePassword, true, RouteChangePassword, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard([]string{"/settings"}, RouteLogin, staticCreds(tt.hasCred), testLogger())

			target, redirected := g.Resolve(tt.route)
			if target != tt.wantTarget {
				t.Errorf("Resolve(%q) target = %q, want %q", tt.route, target, tt.wantTarget)
			}
			if redirected != tt.wantRedir {
				t.Errorf("Resolve(%q) redirected = %v, want %v", tt.route, redirected, tt.wantRedir)
			}
		})
	}
}

func TestResolveMultiplePrefixes(t *testing.T) {
	g := NewGuard([]string{"/settings", "/account"}, "", staticCreds(false), testLogger())

	target, redirected := g.Resolve("/account/profile")
	if !redirected || target != RouteLogin {
		t.Errorf("Resolve(/account/profile) = %q, %v; want redirect to %q", target, redirected, RouteLogin)
	}
}

// The guard checks presence, not validity: a stale credential passes the
// guard and is caught later by the identity probe.
func TestGuardIgnoresCredentialValidity(t *testing.T) {
	g := NewGuard([]string{"/settings"}, RouteLogin, staticCreds(true), testLogger())

	target, redirected := g.Resolve("/settings")
	if redirected {
		t.Fatalf("guard must not redirect when a credential is present, got %q", target)
	}
}
