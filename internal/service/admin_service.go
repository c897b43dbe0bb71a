package service

import (
	"context"

	"brainexa/backend/internal/models"
)

// UserDirectory is the user-store surface the admin view reads from.
type UserDirectory interface {
	ListUsers() ([]models.UserResponse, error)
	CountUsers() (int64, error)
}

// ConversationMetrics reports aggregate numbers from the conversation store.
type ConversationMetrics interface {
	Count(ctx context.Context) (int64, error)
	MessageCount(ctx context.Context) (int64, error)
}

// Stats is the aggregate usage report for the admin view.
type Stats struct {
	Users         int64 `json:"users"`
	Conversations int64 `json:"conversations"`
	Messages      int64 `json:"messages"`
}

// AdminService aggregates reporting across the user and conversation stores.
type AdminService struct {
	users   UserDirectory
	metrics ConversationMetrics
}

// NewAdminService creates a new admin service
func NewAdminService(users UserDirectory, metrics ConversationMetrics) *AdminService {
	return &AdminService{users: users, metrics: metrics}
}

// ListUsers returns every registered user without password hashes.
func (s *AdminService) ListUsers() ([]models.UserResponse, error) {
	return s.users.ListUsers()
}

// GetStats reports user, conversation and message totals.
func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	userCount, err := s.users.CountUsers()
	if err != nil {
		return nil, err
	}

	convCount, err := s.metrics.Count(ctx)
	if err != nil {
		return nil, err
	}

	msgCount, err := s.metrics.MessageCount(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Users:         userCount,
		Conversations: convCount,
		Messages:      msgCount,
	}, nil
}
