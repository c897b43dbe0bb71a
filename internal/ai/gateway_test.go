package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brainexa/backend/internal/models"
	"brainexa/backend/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", JSON: false, Output: io.Discard})
}

// fakeProvider is an OpenAI-compatible test server. It records the last
// request body and answers with a canned completion.
type fakeProvider struct {
	server   *httptest.Server
	lastBody openai.ChatCompletionRequest
	calls    int
	status   int
	reply    string
}

func newFakeProvider(t *testing.T, reply string) *fakeProvider {
	t.Helper()
	f := &fakeProvider{status: http.StatusOK, reply: reply}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls++
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &f.lastBody))

		if f.status != http.StatusOK {
			http.Error(w, `{"error":{"message":"boom"}}`, f.status)
			return
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  f.lastBody.Model,
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: f.reply}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func TestImageGenerationShortcut(t *testing.T) {
	fake := newFakeProvider(t, "should not be called")
	g := NewGateway(Credentials{
		NvidiaKey:     "nvapi-test",
		GroqKey:       "gsk-test",
		NvidiaBaseURL: fake.server.URL,
		GroqBaseURL:   fake.server.URL,
	}, testLogger())

	reply := g.Reply(context.Background(), nil, "generate an image of a cat", false)

	assert.Contains(t, reply, "image.pollinations.ai/prompt/a%20cat")
	assert.Contains(t, reply, "![a cat](")
	assert.Contains(t, reply, "**a cat**")
	assert.Equal(t, 0, fake.calls, "no completion provider may be called for image generation")
}

func TestImageGenerationSkippedWhenImageUploaded(t *testing.T) {
	fake := newFakeProvider(t, "this is a drawing of a cat")
	g := NewGateway(Credentials{
		GroqKey:     "gsk-test",
		GroqBaseURL: fake.server.URL,
	}, testLogger())

	history := []models.Message{
		{Role: models.RoleUser, Content: "draw a picture of a cat", Image: "data:image/png;base64,xyz"},
	}
	reply := g.Reply(context.Background(), history, "draw a picture of a cat", true)

	assert.Equal(t, "this is a drawing of a cat", reply)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "llama-3.2-11b-vision-preview", fake.lastBody.Model)
}

func TestNoConfigurationReply(t *testing.T) {
	g := NewGateway(Credentials{}, testLogger())

	reply := g.Reply(context.Background(), nil, "hi", false)
	assert.Equal(t, "No valid API Configuration found for this request.", reply)
}

func TestNvidiaKeyRequiresPrefix(t *testing.T) {
	// A key without the nvapi- prefix does not count as an NVIDIA credential
	g := NewGateway(Credentials{NvidiaKey: "sk-not-nvidia"}, testLogger())

	reply := g.Reply(context.Background(), nil, "hi", false)
	assert.Equal(t, "No valid API Configuration found for this request.", reply)
}

func TestPickPriorityOrder(t *testing.T) {
	tests := []struct {
		name     string
		creds    Credentials
		hasImage bool
		want     string
	}{
		{"vision prefers nvidia", Credentials{NvidiaKey: "nvapi-x", GroqKey: "g"}, true, "NVIDIA Vision"},
		{"vision falls back to groq", Credentials{GroqKey: "g"}, true, "Groq Vision"},
		{"image with nvidia key uses nvidia vision", Credentials{NvidiaKey: "nvapi-x"}, true, "NVIDIA Vision"},
		{"text prefers nvidia", Credentials{NvidiaKey: "nvapi-x", GroqKey: "g"}, false, "NVIDIA Llama 3.1"},
		{"text falls back to groq", Credentials{GroqKey: "g"}, false, "Groq"},
		{"bad nvidia key skipped for text", Credentials{NvidiaKey: "bad", GroqKey: "g"}, false, "Groq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGateway(tt.creds, testLogger())
			desc, key := g.pick(tt.hasImage)
			require.NotNil(t, desc)
			assert.Equal(t, tt.want, desc.Name)
			assert.NotEmpty(t, key)
		})
	}
}

func TestTextModelFlattensMultimodalHistory(t *testing.T) {
	fake := newFakeProvider(t, "ok")
	g := NewGateway(Credentials{
		NvidiaKey:     "nvapi-test",
		NvidiaBaseURL: fake.server.URL,
	}, testLogger())

	history := []models.Message{
		{Role: models.RoleUser, Content: "what is this?", Image: "https://example.com/pic.png"},
		{Role: models.RoleAssistant, Content: "a bridge"},
		{Role: models.RoleUser, Content: "thanks"},
	}
	reply := g.Reply(context.Background(), history, "thanks", false)

	require.Equal(t, "ok", reply)
	require.Equal(t, "meta/llama-3.1-70b-instruct", fake.lastBody.Model)

	// System prompt plus three history entries, all plain text
	require.Len(t, fake.lastBody.Messages, 4)
	for _, m := range fake.lastBody.Messages {
		assert.Empty(t, m.MultiContent)
	}
	assert.Equal(t, "what is this?", fake.lastBody.Messages[1].Content)
}

func TestFlattenMultimodalPlaceholder(t *testing.T) {
	msgs := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: "x"}},
			},
		},
	}

	flat := flattenMultimodal(msgs)
	assert.Equal(t, "(Image)", flat[0].Content)
}

func TestBuildMessagesWindowAndSystemPrompt(t *testing.T) {
	history := make([]models.Message, 10)
	for i := range history {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		history[i] = models.Message{Role: role, Content: "m", Timestamp: time.Now()}
	}

	msgs := buildMessages(history)

	// Last 6 history entries plus the system instruction
	require.Len(t, msgs, 7)
	assert.Equal(t, openai.ChatMessageRoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Brainexa")
}

func TestVisionMessagesCarryImageParts(t *testing.T) {
	fake := newFakeProvider(t, "a cat on a mat")
	g := NewGateway(Credentials{
		NvidiaKey:     "nvapi-test",
		NvidiaBaseURL: fake.server.URL,
	}, testLogger())

	history := []models.Message{
		{Role: models.RoleUser, Content: "what is in this photo?", Image: "data:image/jpeg;base64,abc"},
	}
	reply := g.Reply(context.Background(), history, "what is in this photo?", true)

	require.Equal(t, "a cat on a mat", reply)
	require.Equal(t, "nvidia/neva-22b", fake.lastBody.Model)

	userMsg := fake.lastBody.Messages[1]
	require.Len(t, userMsg.MultiContent, 2)
	assert.Equal(t, openai.ChatMessagePartTypeText, userMsg.MultiContent[0].Type)
	assert.Equal(t, openai.ChatMessagePartTypeImageURL, userMsg.MultiContent[1].Type)
	assert.Equal(t, "data:image/jpeg;base64,abc", userMsg.MultiContent[1].ImageURL.URL)
}

func TestProviderFailureDegradesToReply(t *testing.T) {
	fake := newFakeProvider(t, "")
	fake.status = http.StatusInternalServerError

	g := NewGateway(Credentials{
		GroqKey:     "gsk-test",
		GroqBaseURL: fake.server.URL,
	}, testLogger())

	reply := g.Reply(context.Background(), nil, "hi", false)

	assert.Contains(t, reply, "Error processing request with Groq:")
	assert.Equal(t, 1, fake.calls)
}
