package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// DefaultImageTitle is used when a conversation starts with an image only.
const DefaultImageTitle = "New Image Chat"

const titleMaxLen = 30

// Message is a single turn inside a conversation. Messages are append-only
// and never edited or reordered once stored.
type Message struct {
	Role      string    `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	Image     string    `bson:"image,omitempty" json:"image,omitempty"` // base64 data URL or external URL
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Conversation is a titled, ordered thread of messages owned by one user.
type Conversation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    uint               `bson:"user_id" json:"userId"`
	Title     string             `bson:"title" json:"title"`
	Messages  []Message          `bson:"messages" json:"messages"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ConversationSummary is the metadata-only view used by the sidebar listing.
type ConversationSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Title     string             `bson:"title" json:"title"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// DeriveTitle builds a conversation title from its first message: the first
// 30 characters of the text, with an ellipsis when truncated. Truncation
// counts runes, not bytes. Image-only conversations get a fixed label. The
// title is set once at creation and never regenerated by later messages.
func DeriveTitle(text string) string {
	if text == "" {
		return DefaultImageTitle
	}
	runes := []rune(text)
	if len(runes) > titleMaxLen {
		return string(runes[:titleMaxLen]) + "..."
	}
	return text
}

// ChatRequest is the request body for sending a message.
type ChatRequest struct {
	Message        string `json:"message"`
	Image          string `json:"image"`
	ConversationID string `json:"conversationId"`
}

// ChatResponse is returned after the assistant reply has been persisted.
type ChatResponse struct {
	ConversationID string    `json:"conversationId"`
	Title          string    `json:"title"`
	Response       string    `json:"response"`
	History        []Message `json:"history"`
}

// HasText reports whether the request carries non-blank text.
func (r *ChatRequest) HasText() bool {
	return strings.TrimSpace(r.Message) != ""
}
