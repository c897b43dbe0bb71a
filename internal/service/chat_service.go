package service

import (
	"context"
	"errors"
	"time"

	"brainexa/backend/internal/models"
	"brainexa/backend/pkg/logger"
)

// ErrEmptyMessage is returned when a chat request carries neither text nor
// an image.
var ErrEmptyMessage = errors.New("message or image is required")

// ConversationStore is the persistence surface the chat service needs.
type ConversationStore interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByUser(ctx context.Context, userID uint, id string) (*models.Conversation, error)
	Save(ctx context.Context, conv *models.Conversation) error
	List(ctx context.Context, userID uint) ([]models.ConversationSummary, error)
	Delete(ctx context.Context, userID uint, id string) error
	DeleteAll(ctx context.Context, userID uint) (int64, error)
}

// ReplyGenerator derives the assistant reply for a conversation turn.
// Implementations degrade provider failures into the reply text, so there is
// no error return.
type ReplyGenerator interface {
	Reply(ctx context.Context, history []models.Message, prompt string, hasImage bool) string
}

// ChatService orchestrates a chat turn: conversation lookup or creation,
// message appending, provider invocation and persistence.
type ChatService struct {
	store   ConversationStore
	replier ReplyGenerator
	logger  *logger.Logger
}

// NewChatService creates a new chat service
func NewChatService(store ConversationStore, replier ReplyGenerator, log *logger.Logger) *ChatService {
	return &ChatService{
		store:   store,
		replier: replier,
		logger:  log,
	}
}

// SendMessage appends the user's message to the addressed conversation
// (creating one when no id is given), derives the assistant reply and
// persists both turns. Provider failures surface as the reply text, never
// as an error.
func (s *ChatService) SendMessage(ctx context.Context, userID uint, req *models.ChatRequest) (*models.ChatResponse, error) {
	if !req.HasText() && req.Image == "" {
		return nil, ErrEmptyMessage
	}

	var conv *models.Conversation
	if req.ConversationID != "" {
		existing, err := s.store.GetByUser(ctx, userID, req.ConversationID)
		if err != nil {
			return nil, err
		}
		conv = existing
	} else {
		conv = &models.Conversation{
			UserID: userID,
			Title:  models.DeriveTitle(req.Message),
		}
		if err := s.store.Create(ctx, conv); err != nil {
			return nil, err
		}
		s.logger.Info("conversation created", "conversation_id", conv.ID.Hex(), "user_id", userID)
	}

	content := req.Message
	if content == "" {
		content = "Image uploaded"
	}
	conv.Messages = append(conv.Messages, models.Message{
		Role:      models.RoleUser,
		Content:   content,
		Image:     req.Image,
		Timestamp: time.Now(),
	})

	reply := s.replier.Reply(ctx, conv.Messages, req.Message, req.Image != "")

	conv.Messages = append(conv.Messages, models.Message{
		Role:      models.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
	})

	if err := s.store.Save(ctx, conv); err != nil {
		return nil, err
	}

	return &models.ChatResponse{
		ConversationID: conv.ID.Hex(),
		Title:          conv.Title,
		Response:       reply,
		History:        conv.Messages,
	}, nil
}

// ListConversations returns the caller's conversation metadata, most
// recently updated first.
func (s *ChatService) ListConversations(ctx context.Context, userID uint) ([]models.ConversationSummary, error) {
	return s.store.List(ctx, userID)
}

// GetConversation loads a full conversation scoped to the caller.
func (s *ChatService) GetConversation(ctx context.Context, userID uint, id string) (*models.Conversation, error) {
	return s.store.GetByUser(ctx, userID, id)
}

// DeleteConversation removes one conversation scoped to the caller.
func (s *ChatService) DeleteConversation(ctx context.Context, userID uint, id string) error {
	return s.store.Delete(ctx, userID, id)
}

// DeleteAllConversations removes every conversation owned by the caller.
func (s *ChatService) DeleteAllConversations(ctx context.Context, userID uint) (int64, error) {
	return s.store.DeleteAll(ctx, userID)
}
