package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brainexa/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a conversation does not exist or belongs to
// another user. The two cases are deliberately indistinguishable so callers
// cannot probe for foreign conversation ids.
var ErrNotFound = errors.New("conversation not found")

const collectionName = "conversations"

// ConversationStore persists conversations in a MongoDB collection.
type ConversationStore struct {
	coll *mongo.Collection
}

// NewConversationStore creates a store backed by the given database.
func NewConversationStore(db *mongo.Database) *ConversationStore {
	return &ConversationStore{coll: db.Collection(collectionName)}
}

// Create inserts a new conversation and fills in its generated id and
// timestamps.
func (s *ConversationStore) Create(ctx context.Context, conv *models.Conversation) error {
	now := time.Now()
	conv.ID = primitive.NewObjectID()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	if conv.Messages == nil {
		conv.Messages = []models.Message{}
	}

	if _, err := s.coll.InsertOne(ctx, conv); err != nil {
		return fmt.Errorf("inserting conversation: %w", err)
	}
	return nil
}

// GetByUser loads a conversation scoped to its owner.
func (s *ConversationStore) GetByUser(ctx context.Context, userID uint, id string) (*models.Conversation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var conv models.Conversation
	err = s.coll.FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading conversation: %w", err)
	}
	return &conv, nil
}

// Save writes the full message array and bumps the updated timestamp.
// Concurrent saves of the same conversation are last-write-wins.
func (s *ConversationStore) Save(ctx context.Context, conv *models.Conversation) error {
	conv.UpdatedAt = time.Now()

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": conv.ID, "user_id": conv.UserID}, conv)
	if err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns conversation metadata for a user, most recently updated first.
// Message bodies are excluded by projection.
func (s *ConversationStore) List(ctx context.Context, userID uint) ([]models.ConversationSummary, error) {
	opts := options.Find().
		SetProjection(bson.M{"title": 1, "created_at": 1, "updated_at": 1}).
		SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := []models.ConversationSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("decoding conversation list: %w", err)
	}
	return summaries, nil
}

// Delete removes a single conversation scoped to its owner.
func (s *ConversationStore) Delete(ctx context.Context, userID uint, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every conversation owned by the user and returns how
// many were deleted.
func (s *ConversationStore) DeleteAll(ctx context.Context, userID uint) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("deleting conversations: %w", err)
	}
	return res.DeletedCount, nil
}

// Count returns the total number of conversations across all users.
func (s *ConversationStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("counting conversations: %w", err)
	}
	return n, nil
}

// MessageCount sums the lengths of all message arrays across all users.
func (s *ConversationStore) MessageCount(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": bson.M{"$size": "$messages"}},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregating message count: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("decoding message count: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
