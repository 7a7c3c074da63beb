package entities

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one question/answer exchange in the listener's AI
// assistant. Exchanges are appended to an ordered, session-scoped
// history.
type ChatMessage struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId"`
}

// NewChatMessage records a completed exchange for the asking user
func NewChatMessage(message, response, userID string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Message:   message,
		Response:  response,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
	}
}
