package api

import (
	"context"
	"net/http"
)

// Chat message roles.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn in an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat sends the conversation so far and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	var result struct {
		Message string `json:"message"`
	}
	err := c.sendJSON(ctx, "chatbot_chat", http.MethodPost, "/chatbot/chat",
		map[string][]ChatMessage{"messages": messages}, &result)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}
