package ai

import (
	"strings"

	"brainexa/backend/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

// Provider endpoints. Both expose OpenAI-compatible chat completion APIs.
const (
	nvidiaBaseURL = "https://integrate.api.nvidia.com/v1"
	groqBaseURL   = "https://api.groq.com/openai/v1"
)

// contextWindow is how many trailing messages are sent as provider context.
const contextWindow = 6

// systemPrompt is prepended to every completion request.
const systemPrompt = `You are Brainexa, a highly advanced AI assistant.

Your core expertise includes:
1. **Global Knowledge**: You have access to information about the world, history, geography, and cultures.
2. **Computer Science**: You are an expert in computers, programming, software development, and hardware.
3. **New Technologies**: You stay up-to-date with emerging tech like AI, Blockchain, Quantum Computing, and IoT.
4. **Mobile Technology**: You are knowledgeable about smartphones, mobile operating systems (iOS, Android), and mobile app development.

Be helpful, accurate, and concise. formatting your responses with Markdown.
If asked to generate an image, you can't do it directly, but the system will handle it if the user starts their sentence with "generate an image of...".`

// Credentials holds the configured provider API keys. Base URLs are
// overridable so tests can point at a local server.
type Credentials struct {
	NvidiaKey string
	GroqKey   string

	NvidiaBaseURL string
	GroqBaseURL   string
}

// Descriptor describes one provider model in the fallback chain: which
// endpoint and model to call, whether it accepts image content, its sampling
// parameters, and a predicate resolving the credential that unlocks it.
type Descriptor struct {
	Name        string
	Model       string
	BaseURL     string
	Vision      bool
	Temperature float32
	TopP        float32
	MaxTokens   int
	Credential  func(Credentials) string
}

// nvidiaCredential only accepts keys with the nvapi- prefix; anything else
// is treated as not configured.
func nvidiaCredential(c Credentials) string {
	if strings.HasPrefix(c.NvidiaKey, "nvapi-") {
		return c.NvidiaKey
	}
	return ""
}

func groqCredential(c Credentials) string {
	return c.GroqKey
}

// newChain builds the fixed-priority provider list: vision-capable models
// first, then text models. Vision descriptors only apply when the request
// carries an image; text descriptors accept any request and flatten
// multimodal history.
func newChain(creds Credentials) []Descriptor {
	nvidiaURL := creds.NvidiaBaseURL
	if nvidiaURL == "" {
		nvidiaURL = nvidiaBaseURL
	}
	groqURL := creds.GroqBaseURL
	if groqURL == "" {
		groqURL = groqBaseURL
	}

	return []Descriptor{
		{
			Name:        "NVIDIA Vision",
			Model:       "nvidia/neva-22b",
			BaseURL:     nvidiaURL,
			Vision:      true,
			Temperature: 0.2,
			TopP:        0.7,
			MaxTokens:   1024,
			Credential:  nvidiaCredential,
		},
		{
			Name:        "Groq Vision",
			Model:       "llama-3.2-11b-vision-preview",
			BaseURL:     groqURL,
			Vision:      true,
			Temperature: 0.2,
			MaxTokens:   1024,
			Credential:  groqCredential,
		},
		{
			Name:        "NVIDIA Llama 3.1",
			Model:       "meta/llama-3.1-70b-instruct",
			BaseURL:     nvidiaURL,
			Temperature: 0.5,
			TopP:        1,
			MaxTokens:   1024,
			Credential:  nvidiaCredential,
		},
		{
			Name:        "Groq",
			Model:       "llama3-8b-8192",
			BaseURL:     groqURL,
			Temperature: 0.5,
			Credential:  groqCredential,
		},
	}
}

// buildMessages converts the trailing window of conversation history into
// API messages, with the system instruction first. User messages carrying an
// image become two-part multimodal content.
func buildMessages(history []models.Message) []openai.ChatCompletionMessage {
	recent := history
	if len(recent) > contextWindow {
		recent = recent[len(recent)-contextWindow:]
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(recent)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})

	for _, m := range recent {
		if m.Role == models.RoleUser && m.Image != "" {
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: m.Content},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: m.Image},
					},
				},
			})
			continue
		}
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	return msgs
}

// flattenMultimodal reduces multimodal content blocks to their text part for
// text-only models. A placeholder stands in when an image had no caption.
func flattenMultimodal(msgs []openai.ChatCompletionMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(msgs))
	for i, m := range msgs {
		if len(m.MultiContent) == 0 {
			out[i] = m
			continue
		}

		text := "(Image)"
		for _, part := range m.MultiContent {
			if part.Type == openai.ChatMessagePartTypeText && part.Text != "" {
				text = part.Text
				break
			}
		}
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: text}
	}
	return out
}
