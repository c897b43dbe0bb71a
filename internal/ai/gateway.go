package ai

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"brainexa/backend/internal/models"
	"brainexa/backend/pkg/logger"
	"brainexa/backend/pkg/observability"

	openai "github.com/sashabaranov/go-openai"
)

// imageGenBaseURL serves an image for any URL-encoded prompt in its path.
const imageGenBaseURL = "https://image.pollinations.ai/prompt/"

// noConfigReply is returned when no provider credential matches the request.
const noConfigReply = "No valid API Configuration found for this request."

// imagePromptRe matches text that asks for an image to be generated, e.g.
// "generate an image of a cat". The captured group is the prompt.
var imagePromptRe = regexp.MustCompile(`(?i)(?:generate|create|draw|make) (?:an? )?(?:image|picture|photo) (?:of )?(.+)`)

// Gateway resolves a chat request to one provider call. It is stateless:
// given the configured credentials and whether the request carries an image,
// it walks the descriptor chain in priority order and invokes the first
// provider whose credential predicate passes.
//
// Provider failures never escape: every outbound error is converted into a
// textual reply identifying the provider that failed.
type Gateway struct {
	creds  Credentials
	chain  []Descriptor
	logger *logger.Logger
}

// NewGateway creates a gateway for the given credentials.
func NewGateway(creds Credentials, log *logger.Logger) *Gateway {
	return &Gateway{
		creds:  creds,
		chain:  newChain(creds),
		logger: log,
	}
}

// Reply derives the assistant reply for the given history. The prompt is the
// latest user text and hasImage reports whether that turn carried an image.
func (g *Gateway) Reply(ctx context.Context, history []models.Message, prompt string, hasImage bool) string {
	// Image generation shortcut: no completion API is called, the reply
	// links to an image-by-prompt service instead.
	if !hasImage {
		if m := imagePromptRe.FindStringSubmatch(prompt); m != nil {
			subject := m[1]
			imageURL := imageGenBaseURL + url.PathEscape(subject)
			g.logger.Info("image generation shortcut", "prompt", subject)
			return fmt.Sprintf("Here is the image of **%s** you requested:\n\n![%s](%s)", subject, subject, imageURL)
		}
	}

	desc, key := g.pick(hasImage)
	if desc == nil {
		g.logger.Warn("no provider credential matches request", "has_image", hasImage)
		return noConfigReply
	}

	msgs := buildMessages(history)
	if !desc.Vision {
		msgs = flattenMultimodal(msgs)
	}

	reply, err := g.complete(ctx, desc, key, msgs)
	observability.ObserveProviderCall(desc.Name, err)
	if err != nil {
		g.logger.LogError(err, "provider call failed", "provider", desc.Name, "model", desc.Model)
		return fmt.Sprintf("Error processing request with %s: %v", desc.Name, err)
	}

	g.logger.Info("provider call succeeded", "provider", desc.Name, "model", desc.Model)
	return reply
}

// pick returns the first eligible descriptor and its credential. Vision
// descriptors are skipped when the request has no image; text descriptors
// serve either modality.
func (g *Gateway) pick(hasImage bool) (*Descriptor, string) {
	for i := range g.chain {
		d := &g.chain[i]
		if d.Vision && !hasImage {
			continue
		}
		if key := d.Credential(g.creds); key != "" {
			return d, key
		}
	}
	return nil, ""
}

func (g *Gateway) complete(ctx context.Context, desc *Descriptor, key string, msgs []openai.ChatCompletionMessage) (string, error) {
	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = desc.BaseURL
	client := openai.NewClientWithConfig(cfg)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       desc.Model,
		Messages:    msgs,
		Temperature: desc.Temperature,
		TopP:        desc.TopP,
		MaxTokens:   desc.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response from %s", desc.Name)
	}

	return resp.Choices[0].Message.Content, nil
}
