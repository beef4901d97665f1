// Package chat holds the conversation state for both operating modes:
// server-persisted conversations for authenticated users and a transient
// in-memory transcript for guests. At most one of the two is the active
// transcript at any time.
package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danielwetzel/ragchat/internal/client"
	"github.com/danielwetzel/ragchat/internal/models"
)

// Fallback assistant replies used when the inference endpoint is
// unavailable.
const (
	guestFallbackReply = "I'm a demo AI assistant. Please log in to save your conversation history."
	authFallbackReply  = "I'm a demo AI assistant. Your message has been saved to the database."
)

// maxTitleLen bounds conversation titles derived from message content.
const maxTitleLen = 50

// SendOutcome describes what happened to a sent message.
type SendOutcome int

const (
	// SendDelivered: the turn was persisted to the backend.
	SendDelivered SendOutcome = iota
	// SendLocalOnly: guest mode, the transcript lives only in memory.
	SendLocalOnly
	// SendFailed: persistence was attempted and failed; the optimistic
	// local entries remain displayed but were not saved.
	SendFailed
)

// SendResult is returned by SendMessage so the presentation layer can
// decide how to surface persistence failures.
type SendResult struct {
	Outcome SendOutcome
	Reply   string
}

// Store is the conversation state store. Like the session store it is
// created once and injected, never global.
type Store struct {
	api    *client.Client
	logger *slog.Logger

	mu            sync.Mutex
	conversations []models.Conversation
	current       *models.Conversation
	tempMessages  []models.Message
	isLoading     bool
}

// Snapshot is a point-in-time copy of the chat state for rendering.
type Snapshot struct {
	Conversations []models.Conversation
	Current       *models.Conversation
	TempMessages  []models.Message
	IsLoading     bool
}

// New creates an empty store.
func New(api *client.Client, logger *slog.Logger) *Store {
	return &Store{api: api, logger: logger}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Conversations: append([]models.Conversation(nil), s.conversations...),
		TempMessages:  append([]models.Message(nil), s.tempMessages...),
		IsLoading:     s.isLoading,
	}
	if s.current != nil {
		cur := *s.current
		cur.Messages = append([]models.Message(nil), s.current.Messages...)
		snap.Current = &cur
	}
	return snap
}

// ActiveTranscript returns the transcript currently shown: the selected
// conversation's messages when one exists, the guest transcript otherwise.
func (s *Store) ActiveTranscript() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return append([]models.Message(nil), s.current.Messages...)
	}
	return append([]models.Message(nil), s.tempMessages...)
}

// SendMessage sends one chat turn. The user message is echoed locally in
// all modes before any network activity; the mode is picked by whether a
// credential and a current conversation existed at the moment of the send.
func (s *Store) SendMessage(ctx context.Context, content string) SendResult {
	if s.api.HasCredential() && s.hasCurrent() {
		return s.sendPersisted(ctx, content)
	}
	return s.sendGuest(ctx, content)
}

// sendGuest appends the user message and a synthetic assistant reply to
// the transient transcript. Nothing reaches storage.
func (s *Store) sendGuest(ctx context.Context, content string) SendResult {
	s.appendTemp(content, true)
	reply := s.assistantReply(ctx, content, guestFallbackReply)
	s.appendTemp(reply, false)
	return SendResult{Outcome: SendLocalOnly, Reply: reply}
}

// sendPersisted echoes the turn optimistically, then persists the user
// message and the assistant reply. Persistence failures leave the local
// echo in place and are reported through the result, not swallowed.
func (s *Store) sendPersisted(ctx context.Context, content string) SendResult {
	outcome := SendDelivered

	idx := s.appendCurrent(newLocalMessage(s.currentID(), content, true))
	if saved, err := s.api.CreateMessage(ctx, s.currentID(), content, true); err != nil {
		s.logger.Warn("persist user message failed", "error", err)
		outcome = SendFailed
	} else {
		s.replaceCurrent(idx, *saved)
	}

	reply := s.assistantReply(ctx, content, authFallbackReply)

	idx = s.appendCurrent(newLocalMessage(s.currentID(), reply, false))
	if saved, err := s.api.CreateMessage(ctx, s.currentID(), reply, false); err != nil {
		s.logger.Warn("persist assistant message failed", "error", err)
		outcome = SendFailed
	} else {
		s.replaceCurrent(idx, *saved)
	}

	return SendResult{Outcome: outcome, Reply: reply}
}

// assistantReply asks the inference endpoint for an answer, falling back
// to a canned reply when it is unreachable.
func (s *Store) assistantReply(ctx context.Context, content, fallback string) string {
	res, err := s.api.Prompt(ctx, content, "")
	if err != nil {
		s.logger.Warn("prompt failed", "error", err)
		return fallback
	}
	switch {
	case res.Prediction != "":
		return "Identified as: " + res.Prediction
	case res.Answer != "":
		return res.Answer
	default:
		return fallback
	}
}

// LoadConversations fetches the conversation list. Authenticated mode only.
func (s *Store) LoadConversations(ctx context.Context) bool {
	s.setLoading(true)
	defer s.setLoading(false)

	conversations, err := s.api.ListConversations(ctx)
	if err != nil {
		s.logger.Warn("load conversations failed", "error", err)
		return false
	}

	s.mu.Lock()
	s.conversations = conversations
	s.mu.Unlock()
	return true
}

// SelectConversation makes the conversation with the given ID current and
// fetches its messages. The selection sticks even when the fetch fails.
func (s *Store) SelectConversation(ctx context.Context, id int64) bool {
	s.mu.Lock()
	var selected *models.Conversation
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			cur := s.conversations[i]
			selected = &cur
			break
		}
	}
	s.current = selected
	s.mu.Unlock()

	if selected == nil {
		return false
	}

	s.setLoading(true)
	defer s.setLoading(false)

	messages, err := s.api.ListMessages(ctx, id)
	if err != nil {
		s.logger.Warn("load conversation messages failed", "id", id, "error", err)
		return false
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == id {
		s.current.Messages = messages
	}
	s.mu.Unlock()
	return true
}

// CreateConversation creates a persisted conversation and makes it
// current. Returns nil on failure.
func (s *Store) CreateConversation(ctx context.Context, title string) *models.Conversation {
	conversation, err := s.api.CreateConversation(ctx, title)
	if err != nil {
		s.logger.Warn("create conversation failed", "error", err)
		return nil
	}

	s.mu.Lock()
	s.conversations = append([]models.Conversation{*conversation}, s.conversations...)
	cur := *conversation
	s.current = &cur
	s.mu.Unlock()
	return conversation
}

// MigrateGuest replays the guest transcript into a new persisted
// conversation after a login. On any failure the transcript is kept so
// nothing is lost; a retry may duplicate already-replayed messages on
// the server, which is preferred over dropping them.
func (s *Store) MigrateGuest(ctx context.Context) (int, bool) {
	s.mu.Lock()
	pending := append([]models.Message(nil), s.tempMessages...)
	s.mu.Unlock()

	if len(pending) == 0 {
		return 0, true
	}

	conversation, err := s.api.CreateConversation(ctx, migrationTitle(pending))
	if err != nil {
		s.logger.Warn("guest transcript migration failed", "error", err)
		return 0, false
	}

	migrated := make([]models.Message, 0, len(pending))
	for i, m := range pending {
		saved, err := s.api.CreateMessage(ctx, conversation.ID, m.Content, m.IsUser)
		if err != nil {
			s.logger.Warn("guest transcript migration interrupted",
				"migrated", i, "total", len(pending), "error", err)
			return i, false
		}
		migrated = append(migrated, *saved)
	}

	s.mu.Lock()
	conversation.Messages = migrated
	s.conversations = append([]models.Conversation{*conversation}, s.conversations...)
	cur := *conversation
	cur.Messages = append([]models.Message(nil), migrated...)
	s.current = &cur
	s.tempMessages = nil
	s.mu.Unlock()

	s.logger.Info("guest transcript migrated", "messages", len(migrated), "conversation", conversation.ID)
	return len(migrated), true
}

// AddTempMessage appends a message to the guest transcript directly.
func (s *Store) AddTempMessage(content string, isUser bool) {
	s.appendTemp(content, isUser)
}

// ClearChat resets all three collections. Called on logout so the next
// identity never sees the previous transcript.
func (s *Store) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = nil
	s.current = nil
	s.tempMessages = nil
}

func (s *Store) hasCurrent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

func (s *Store) currentID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return 0
	}
	return s.current.ID
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = v
}

func (s *Store) appendTemp(content string, isUser bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tempMessages = append(s.tempMessages, newLocalMessage(0, content, isUser))
}

// appendCurrent appends to the current conversation and returns the
// index, so the optimistic entry can later be swapped for the saved one.
func (s *Store) appendCurrent(m models.Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return -1
	}
	s.current.Messages = append(s.current.Messages, m)
	return len(s.current.Messages) - 1
}

func (s *Store) replaceCurrent(idx int, m models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || idx < 0 || idx >= len(s.current.Messages) {
		return
	}
	s.current.Messages[idx] = m
}

// newLocalMessage builds an optimistic client-side message. The ID is a
// millisecond timestamp, never to be confused with server IDs, which it
// only ever shadows until the saved message replaces it.
func newLocalMessage(conversationID int64, content string, isUser bool) models.Message {
	return models.Message{
		ID:             time.Now().UnixMilli(),
		ConversationID: conversationID,
		Content:        content,
		IsUser:         isUser,
		CreatedAt:      time.Now(),
	}
}

// DeriveTitle derives a conversation title from message content. The
// cap cuts on rune boundaries so multibyte content stays valid UTF-8.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= maxTitleLen {
		return content
	}
	return string(runes[:maxTitleLen])
}

// migrationTitle derives a conversation title from the first guest
// user message.
func migrationTitle(messages []models.Message) string {
	for _, m := range messages {
		if m.IsUser && m.Content != "" {
			return DeriveTitle(m.Content)
		}
	}
	return "Imported chat"
}
