package tui

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/danielwetzel/ragchat/internal/chat"
	"github.com/danielwetzel/ragchat/internal/router"
	"github.com/danielwetzel/ragchat/internal/session"
)

// loginDoneMsg reports the outcome of a login or register attempt.
type loginDoneMsg struct {
	registerMode bool
	ok           bool
}

// loginModel is the combined login/register form. The same two inputs
// serve both modes; ctrl+r flips between them.
type loginModel struct {
	auth  *session.Store
	chats *chat.Store
	theme Theme

	email        textinput.Model
	password     textinput.Model
	registerMode bool
	submitting   bool
	errText      string
	successText  string
	focused      int
}

func newLoginModel(auth *session.Store, chats *chat.Store, theme Theme) loginModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return loginModel{
		auth:     auth,
		chats:    chats,
		theme:    theme,
		email:    email,
		password: password,
	}
}

func (m loginModel) reset(registerMode bool) loginModel {
	m.registerMode = registerMode
	m.submitting = false
	m.errText = ""
	m.successText = ""
	m.password.SetValue("")
	m.focused = 0
	m.email.Focus()
	m.password.Blur()
	return m
}

func (m loginModel) focusCmd() tea.Cmd {
	return m.email.Focus()
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab", "shift+tab", "down", "up":
			m.focused = (m.focused + 1) % 2
			var cmd tea.Cmd
			if m.focused == 0 {
				m.password.Blur()
				cmd = m.email.Focus()
			} else {
				m.email.Blur()
				cmd = m.password.Focus()
			}
			return m, cmd
		case "ctrl+r":
			m.registerMode = !m.registerMode
			m.errText = ""
			m.successText = ""
			return m, nil
		case "esc":
			return m, navigate(router.RouteChat)
		case "enter":
			return m.submit()
		}

	case loginDoneMsg:
		m.submitting = false
		if !msg.ok {
			if msg.registerMode {
				m.errText = "registration failed"
			} else {
				m.errText = "invalid email or password"
			}
			return m, nil
		}
		if msg.registerMode {
			// Registration never logs in; the new account signs in
			// through the same form.
			m.registerMode = false
			m.successText = "account created, sign in to continue"
			m.password.SetValue("")
			return m, nil
		}
		return m, navigate(router.RouteChat)
	}

	var cmds [2]tea.Cmd
	m.email, cmds[0] = m.email.Update(msg)
	m.password, cmds[1] = m.password.Update(msg)
	return m, tea.Batch(cmds[0], cmds[1])
}

// submit is a no-op while a previous attempt is in flight.
func (m loginModel) submit() (loginModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.errText = "email and password are required"
		return m, nil
	}

	m.submitting = true
	m.errText = ""
	m.successText = ""

	auth := m.auth
	chats := m.chats
	registerMode := m.registerMode
	return m, func() tea.Msg {
		ctx := context.Background()
		if registerMode {
			return loginDoneMsg{registerMode: true, ok: auth.Register(ctx, email, password, password)}
		}
		ok := auth.Login(ctx, email, password)
		if ok {
			// Carry the guest transcript into the fresh session before
			// the saved conversations come in.
			chats.MigrateGuest(ctx)
			chats.LoadConversations(ctx)
		}
		return loginDoneMsg{ok: ok}
	}
}

func (m loginModel) view() string {
	var b strings.Builder

	title := "Sign in"
	if m.registerMode {
		title = "Create account"
	}
	b.WriteString(m.theme.titleStyle().Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.email.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	switch {
	case m.submitting:
		b.WriteString(m.theme.hintStyle().Render("signing in..."))
	case m.errText != "":
		b.WriteString(m.theme.errorStyle().Render(m.errText))
	case m.successText != "":
		b.WriteString(m.theme.successStyle().Render(m.successText))
	}

	return b.String()
}
