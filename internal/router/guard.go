// Package router gates navigation between client views. Routes mirror
// the paths of the hosted app ("/chat", "/login", "/settings/..."), and
// private ones require an ambient credential to be present before the
// view is entered.
package router

import (
	"log/slog"
	"strings"
)

// Well-known routes.
const (
	RouteChat           = "/chat"
	RouteLogin          = "/login"
	RouteRegister       = "/register"
	RouteChangePassword = "/settings/change-password"
)

// CredentialSource reports whether an ambient credential is present.
// Presence only: the guard never validates the credential, that is the
// identity probe's job after the view mounts.
type CredentialSource interface {
	HasCredential() bool
}

// Guard decides, once per navigation, whether a route may be entered.
type Guard struct {
	privatePrefixes []string
	loginRoute      string
	creds           CredentialSource
	logger          *slog.Logger
}

// NewGuard creates a guard for the given private prefixes. An empty
// loginRoute falls back to RouteLogin.
func NewGuard(privatePrefixes []string, loginRoute string, creds CredentialSource, logger *slog.Logger) *Guard {
	if loginRoute == "" {
		loginRoute = RouteLogin
	}
	return &Guard{
		privatePrefixes: privatePrefixes,
		loginRoute:      loginRoute,
		creds:           creds,
		logger:          logger,
	}
}

// Resolve maps a requested route to the route actually entered. It
// returns the login route and true when a private route was requested
// without a credential; everything else passes through untouched.
func (g *Guard) Resolve(route string) (string, bool) {
	if !g.Private(route) {
		return route, false
	}
	if g.creds.HasCredential() {
		return route, false
	}
	g.logger.Debug("redirecting to login", "route", route)
	return g.loginRoute, true
}

// Private reports whether the route matches a private prefix.
func (g *Guard) Private(route string) bool {
	for _, prefix := range g.privatePrefixes {
		if strings.HasPrefix(route, prefix) {
			return true
		}
	}
	return false
}
