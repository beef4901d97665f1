package tui

import (
	"context"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/danielwetzel/ragchat/internal/chat"
	"github.com/danielwetzel/ragchat/internal/session"
)

// sendDoneMsg reports a finished chat turn.
type sendDoneMsg struct {
	result chat.SendResult
}

// noticeExpireMsg clears the transient notice. The id guards against a
// stale timer clearing a newer notice.
type noticeExpireMsg struct {
	id int
}

const noticeDuration = 4 * time.Second

// chatModel renders the active transcript and the message input.
type chatModel struct {
	auth  *session.Store
	chats *chat.Store
	theme Theme

	input    textinput.Model
	sending  bool
	notice   string
	noticeID int
	isError  bool
}

func newChatModel(auth *session.Store, chats *chat.Store, theme Theme) chatModel {
	input := textinput.New()
	input.Placeholder = "Type a message"
	input.CharLimit = 4000
	input.Focus()
	return chatModel{
		auth:  auth,
		chats: chats,
		theme: theme,
		input: input,
	}
}

func (m chatModel) focusCmd() tea.Cmd {
	return m.input.Focus()
}

func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if msg.String() == "enter" {
			return m.send()
		}

	case sendDoneMsg:
		m.sending = false
		switch msg.result.Outcome {
		case chat.SendFailed:
			return m.setNotice("message shown locally but not saved", true)
		case chat.SendLocalOnly:
			if !m.auth.Authenticated() {
				return m.setNotice("guest mode, sign in to save your chats", false)
			}
		}
		return m, nil

	case noticeExpireMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send dispatches the current input. One turn at a time.
func (m chatModel) send() (chatModel, tea.Cmd) {
	if m.sending {
		return m, nil
	}
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}

	m.sending = true
	m.input.SetValue("")

	auth := m.auth
	chats := m.chats
	return m, func() tea.Msg {
		ctx := context.Background()
		// First authenticated send with no selected conversation starts
		// a new one, titled after the message.
		if auth.Authenticated() && chats.Snapshot().Current == nil {
			chats.CreateConversation(ctx, chat.DeriveTitle(content))
		}
		return sendDoneMsg{result: chats.SendMessage(ctx, content)}
	}
}

// setNotice replaces the current notice and restarts its expiry timer.
func (m chatModel) setNotice(text string, isError bool) (chatModel, tea.Cmd) {
	m.notice = text
	m.isError = isError
	m.noticeID++
	id := m.noticeID
	return m, tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpireMsg{id: id}
	})
}

// view renders the last messages that fit the window above the input.
func (m chatModel) view(width, height int) string {
	transcript := m.chats.ActiveTranscript()

	// Header, input, notice, and footer take a few rows.
	visible := height - 6
	if visible < 1 {
		visible = 10
	}
	if len(transcript) > visible {
		transcript = transcript[len(transcript)-visible:]
	}

	var b strings.Builder
	for _, msg := range transcript {
		label := m.theme.botStyle().Render("bot ")
		if msg.IsUser {
			label = m.theme.userStyle().Render("you ")
		}
		b.WriteString(label)
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	if len(transcript) == 0 {
		b.WriteString(m.theme.hintStyle().Render("No messages yet. Say something."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())

	if m.sending {
		b.WriteString("\n")
		b.WriteString(m.theme.hintStyle().Render("thinking..."))
	} else if m.notice != "" {
		b.WriteString("\n")
		if m.isError {
			b.WriteString(m.theme.errorStyle().Render(m.notice))
		} else {
			b.WriteString(m.theme.hintStyle().Render(m.notice))
		}
	}

	return b.String()
}
