package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/danielwetzel/ragchat/internal/models"
)

type createConversationRequest struct {
	Title string `json:"title"`
}

type createMessageRequest struct {
	Content string `json:"content"`
	IsUser  bool   `json:"is_user"`
}

// PromptResponse is the backend's answer to a chat turn. Answer carries
// the RAG response for text prompts; Prediction/Probability are set when
// an image attachment was classified.
type PromptResponse struct {
	Message         string  `json:"message"`
	ReceivedMessage string  `json:"received_message"`
	Answer          string  `json:"response_rag"`
	Prediction      string  `json:"prediction"`
	Probability     float64 `json:"probability"`
}

// ListConversations returns the authenticated user's conversations.
func (c *Client) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	var conversations []models.Conversation
	if err := c.get(ctx, "/conversations", &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// CreateConversation creates a persisted conversation.
func (c *Client) CreateConversation(ctx context.Context, title string) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := c.postJSON(ctx, "/conversations", createConversationRequest{Title: title}, &conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// ListMessages returns the messages of one conversation.
func (c *Client) ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	var messages []models.Message
	path := fmt.Sprintf("/conversations/%d/messages", conversationID)
	if err := c.get(ctx, path, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// CreateMessage persists one message in a conversation.
func (c *Client) CreateMessage(ctx context.Context, conversationID int64, content string, isUser bool) (*models.Message, error) {
	var message models.Message
	path := fmt.Sprintf("/conversations/%d/messages", conversationID)
	req := createMessageRequest{Content: content, IsUser: isUser}
	if err := c.postJSON(ctx, path, req, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// Prompt submits a chat turn for inference. Either message or filePath
// may be empty, but not both; the backend rejects empty turns.
func (c *Client) Prompt(ctx context.Context, message, filePath string) (*PromptResponse, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if message != "" {
		if err := w.WriteField("message", message); err != nil {
			return nil, fmt.Errorf("write message field: %w", err)
		}
	}
	if filePath != "" {
		f, err := os.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("open attachment: %w", err)
		}
		defer f.Close()

		part, err := w.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			return nil, fmt.Errorf("create attachment part: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			return nil, fmt.Errorf("copy attachment: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	var res PromptResponse
	if err := c.call(ctx, http.MethodPost, "/chat/prompt", w.FormDataContentType(), body.Bytes(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}
