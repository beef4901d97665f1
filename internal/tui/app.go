package tui

import (
	"context"
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"

	"github.com/danielwetzel/ragchat/internal/chat"
	"github.com/danielwetzel/ragchat/internal/client"
	"github.com/danielwetzel/ragchat/internal/router"
	"github.com/danielwetzel/ragchat/internal/session"
)

// navigateMsg requests a view switch. Every switch passes through the
// route guard before a view is entered.
type navigateMsg struct {
	route string
}

func navigate(route string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: route} }
}

// identityMsg carries the outcome of the identity probe a private view
// runs after it is entered.
type identityMsg struct {
	ok bool
}

// App is the root model. It owns the current route and delegates
// everything else to the active view.
type App struct {
	api    *client.Client
	auth   *session.Store
	chats  *chat.Store
	guard  *router.Guard
	logger *slog.Logger
	theme  Theme

	route  string
	width  int
	height int

	login  loginModel
	chat   chatModel
	passwd passwdModel
}

// NewApp wires the views to the shared stores.
func NewApp(api *client.Client, auth *session.Store, chats *chat.Store, guard *router.Guard, logger *slog.Logger) App {
	theme := defaultTheme
	return App{
		api:    api,
		auth:   auth,
		chats:  chats,
		guard:  guard,
		logger: logger,
		theme:  theme,
		route:  router.RouteChat,
		login:  newLoginModel(auth, chats, theme),
		chat:   newChatModel(auth, chats, theme),
		passwd: newPasswdModel(api, theme),
	}
}

// Init probes the backend for an existing session when an ambient
// credential is present, then lands on the chat view.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.chat.focusCmd()}
	if a.api.HasCredential() {
		auth := a.auth
		chats := a.chats
		cmds = append(cmds, func() tea.Msg {
			ctx := context.Background()
			ok := auth.GetCurrentUser(ctx)
			if ok {
				chats.LoadConversations(ctx)
			}
			return identityMsg{ok: ok}
		})
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case navigateMsg:
		target, redirected := a.guard.Resolve(msg.route)
		if redirected {
			a.logger.Debug("navigation redirected", "requested", msg.route, "target", target)
		}
		a.route = target
		return a, a.enterRoute(target)

	case identityMsg:
		// A stale credential passed the guard; the probe is authoritative.
		if !msg.ok && a.route != router.RouteLogin {
			if a.guard.Private(a.route) {
				return a, navigate(router.RouteLogin)
			}
		}
		return a, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "ctrl+l":
			if a.auth.Authenticated() {
				return a, a.logoutCmd()
			}
			return a, navigate(router.RouteLogin)
		case "ctrl+p":
			return a, navigate(router.RouteChangePassword)
		}
	}

	return a.updateActive(msg)
}

func (a App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.route {
	case router.RouteLogin, router.RouteRegister:
		a.login, cmd = a.login.Update(msg)
	case router.RouteChangePassword:
		a.passwd, cmd = a.passwd.Update(msg)
	default:
		a.chat, cmd = a.chat.Update(msg)
	}
	return a, cmd
}

// enterRoute runs the per-view entry command after the guard let the
// navigation through.
func (a *App) enterRoute(route string) tea.Cmd {
	switch route {
	case router.RouteLogin, router.RouteRegister:
		a.login = a.login.reset(route == router.RouteRegister)
		return a.login.focusCmd()
	case router.RouteChangePassword:
		a.passwd = a.passwd.reset()
		// Presence got us here; validity is still the probe's call.
		auth := a.auth
		return tea.Batch(a.passwd.focusCmd(), func() tea.Msg {
			return identityMsg{ok: auth.GetCurrentUser(context.Background())}
		})
	default:
		return a.chat.focusCmd()
	}
}

// logoutCmd ends the session and wipes the transcript so the next
// identity starts clean.
func (a App) logoutCmd() tea.Cmd {
	auth := a.auth
	chats := a.chats
	return func() tea.Msg {
		auth.Logout(context.Background())
		chats.ClearChat()
		return navigateMsg{route: router.RouteChat}
	}
}

func (a App) View() tea.View {
	header := a.header()
	var body string
	switch a.route {
	case router.RouteLogin, router.RouteRegister:
		body = a.login.view()
	case router.RouteChangePassword:
		body = a.passwd.view()
	default:
		body = a.chat.view(a.width, a.height)
	}
	return tea.NewView(header + "\n" + body + "\n" + a.footer())
}

func (a App) header() string {
	title := a.theme.titleStyle().Render("ragchat")
	snap := a.auth.Snapshot()
	who := "guest"
	if snap.User != nil {
		who = snap.User.Email
	}
	return fmt.Sprintf("%s  %s", title, a.theme.hintStyle().Render(who))
}

func (a App) footer() string {
	switch a.route {
	case router.RouteLogin, router.RouteRegister:
		return a.theme.hintStyle().Render("enter submit • tab next field • ctrl+r toggle register • ctrl+c quit")
	case router.RouteChangePassword:
		return a.theme.hintStyle().Render("enter submit • tab next field • esc back • ctrl+c quit")
	default:
		hint := "enter send • ctrl+l login • ctrl+p settings • ctrl+c quit"
		if a.auth.Authenticated() {
			hint = "enter send • ctrl+l logout • ctrl+p settings • ctrl+c quit"
		}
		return a.theme.hintStyle().Render(hint)
	}
}

// Run starts the interactive UI.
func Run(api *client.Client, auth *session.Store, chats *chat.Store, guard *router.Guard, logger *slog.Logger) error {
	p := tea.NewProgram(NewApp(api, auth, chats, guard, logger))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
