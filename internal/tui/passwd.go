package tui

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/danielwetzel/ragchat/internal/client"
	"github.com/danielwetzel/ragchat/internal/router"
)

// passwdDoneMsg reports the outcome of a password change.
type passwdDoneMsg struct {
	err error
}

// passwdModel is the change-password form under /settings.
type passwdModel struct {
	api   *client.Client
	theme Theme

	inputs     [3]textinput.Model
	focused    int
	submitting bool
	errText    string
	successTxt string
}

func newPasswdModel(api *client.Client, theme Theme) passwdModel {
	labels := [3]string{"current password", "new password", "confirm new password"}
	m := passwdModel{api: api, theme: theme}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = labels[i]
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '*'
		m.inputs[i] = in
	}
	return m
}

func (m passwdModel) reset() passwdModel {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.inputs[0].Focus()
	m.focused = 0
	m.submitting = false
	m.errText = ""
	m.successTxt = ""
	return m
}

func (m passwdModel) focusCmd() tea.Cmd {
	return m.inputs[0].Focus()
}

func (m passwdModel) Update(msg tea.Msg) (passwdModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab", "down":
			return m.focus((m.focused + 1) % len(m.inputs))
		case "shift+tab", "up":
			return m.focus((m.focused + len(m.inputs) - 1) % len(m.inputs))
		case "esc":
			return m, navigate(router.RouteChat)
		case "enter":
			return m.submit()
		}

	case passwdDoneMsg:
		m.submitting = false
		if msg.err != nil {
			if client.IsUnauthorized(msg.err) {
				m.errText = "current password is wrong"
			} else {
				m.errText = "password change failed"
			}
			return m, nil
		}
		m = m.reset()
		m.successTxt = "password updated"
		return m, m.focusCmd()
	}

	var cmds [3]tea.Cmd
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds[0], cmds[1], cmds[2])
}

func (m passwdModel) focus(idx int) (passwdModel, tea.Cmd) {
	m.inputs[m.focused].Blur()
	m.focused = idx
	cmd := m.inputs[idx].Focus()
	return m, cmd
}

func (m passwdModel) submit() (passwdModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	old := m.inputs[0].Value()
	next := m.inputs[1].Value()
	confirm := m.inputs[2].Value()

	switch {
	case old == "" || next == "" || confirm == "":
		m.errText = "all fields are required"
		return m, nil
	case next != confirm:
		m.errText = "new passwords do not match"
		return m, nil
	}

	m.submitting = true
	m.errText = ""
	m.successTxt = ""

	api := m.api
	return m, func() tea.Msg {
		return passwdDoneMsg{err: api.UpdatePassword(context.Background(), old, next, confirm)}
	}
}

func (m passwdModel) view() string {
	var b strings.Builder
	b.WriteString(m.theme.titleStyle().Render("Change password"))
	b.WriteString("\n\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.submitting:
		b.WriteString(m.theme.hintStyle().Render("updating..."))
	case m.errText != "":
		b.WriteString(m.theme.errorStyle().Render(m.errText))
	case m.successTxt != "":
		b.WriteString(m.theme.successStyle().Render(m.successTxt))
	}

	return b.String()
}
