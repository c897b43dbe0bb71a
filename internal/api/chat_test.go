package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"brainexa/backend/internal/models"
	"brainexa/backend/internal/service"
	"brainexa/backend/internal/store"
	"brainexa/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatService scripts the service layer so handler status mapping can be
// tested in isolation.
type fakeChatService struct {
	sendResp  *models.ChatResponse
	sendErr   error
	summaries []models.ConversationSummary
	conv      *models.Conversation
	getErr    error
	deleteErr error
	deleted   int64
}

func (f *fakeChatService) SendMessage(_ context.Context, _ uint, _ *models.ChatRequest) (*models.ChatResponse, error) {
	return f.sendResp, f.sendErr
}

func (f *fakeChatService) ListConversations(_ context.Context, _ uint) ([]models.ConversationSummary, error) {
	return f.summaries, nil
}

func (f *fakeChatService) GetConversation(_ context.Context, _ uint, _ string) (*models.Conversation, error) {
	return f.conv, f.getErr
}

func (f *fakeChatService) DeleteConversation(_ context.Context, _ uint, _ string) error {
	return f.deleteErr
}

func (f *fakeChatService) DeleteAllConversations(_ context.Context, _ uint) (int64, error) {
	return f.deleted, nil
}

func newChatTestRouter(svc ChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New(logger.Config{Level: "error", JSON: false, Output: io.Discard})
	handler := NewChatHandler(svc, log)

	r := gin.New()
	// Stand-in for the JWT middleware
	r.Use(func(c *gin.Context) {
		c.Set("userId", uint(1))
	})

	r.POST("/api/chat", handler.Send)
	r.GET("/api/chat/list", handler.List)
	r.GET("/api/chat/:id", handler.Get)
	r.DELETE("/api/chat/:id", handler.Delete)
	r.DELETE("/api/chat", handler.DeleteAll)
	return r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSendEmptyMessageRejected(t *testing.T) {
	r := newChatTestRouter(&fakeChatService{sendErr: service.ErrEmptyMessage})

	w := postJSON(r, "/api/chat", models.ChatRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Message or Image is required")
}

func TestSendUnknownConversationIsNotFound(t *testing.T) {
	r := newChatTestRouter(&fakeChatService{sendErr: store.ErrNotFound})

	w := postJSON(r, "/api/chat", models.ChatRequest{Message: "hi", ConversationID: "deadbeef"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Conversation not found")
}

func TestSendReturnsConversationPayload(t *testing.T) {
	r := newChatTestRouter(&fakeChatService{
		sendResp: &models.ChatResponse{
			ConversationID: "abc123",
			Title:          "Hi",
			Response:       "hello!",
			History: []models.Message{
				{Role: models.RoleUser, Content: "Hi"},
				{Role: models.RoleAssistant, Content: "hello!"},
			},
		},
	})

	w := postJSON(r, "/api/chat", models.ChatRequest{Message: "Hi"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "abc123", resp.ConversationID)
	assert.Equal(t, "hello!", resp.Response)
	assert.Len(t, resp.History, 2)
}

func TestGetForeignConversationIsNotFound(t *testing.T) {
	r := newChatTestRouter(&fakeChatService{getErr: store.ErrNotFound})

	req, _ := http.NewRequest(http.MethodGet, "/api/chat/someid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUnknownConversationIsNotFound(t *testing.T) {
	r := newChatTestRouter(&fakeChatService{deleteErr: store.ErrNotFound})

	req, _ := http.NewRequest(http.MethodDelete, "/api/chat/someid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAllReportsCount(t *testing.T) {
	r := newChatTestRouter(&fakeChatService{deleted: 3})

	req, _ := http.NewRequest(http.MethodDelete, "/api/chat", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":3`)
}

func TestListReturnsSummaries(t *testing.T) {
	r := newChatTestRouter(&fakeChatService{
		summaries: []models.ConversationSummary{{Title: "newest"}, {Title: "older"}},
	})

	req, _ := http.NewRequest(http.MethodGet, "/api/chat/list", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got []models.ConversationSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "newest", got[0].Title)
}
