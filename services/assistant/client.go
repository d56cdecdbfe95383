// Package assistant implements the AI helper endpoints: chat completion
// answers and comic-style image generation, both backed by an
// OpenAI-compatible API.
package assistant

import (
	"context"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	coreconfig "github.com/m3rciful/confbot/core/config"
	"github.com/m3rciful/confbot/core/logger"
	"github.com/m3rciful/confbot/services/serviceerr"
	"log/slog"
)

const serviceName = "assistant"

const systemRole = "You are a helpful assistant."

// answerInstruction wraps the raw user question with the completeness and
// length requirements expected from the conference helper.
const answerInstruction = "Ответь на следующий вопрос подробно и сжато, закончи сообщение точкой и обязательно уложись в 500 символов(это обязательное требование):\n"

// imageInstruction wraps the raw description into the fixed comic style.
const imageInstruction = "Сделай 3D картинку в стиле комикса: "

// Client calls the chat-completion and image-generation endpoints.
// It never retries: a single failed call surfaces a single serviceerr.Error.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
	imageSize   string
}

// New builds a Client from the assistant configuration section.
func New(cfg coreconfig.AssistantConfig) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		// OpenAI-compatible servers expect the /v1 suffix on the base URL.
		if !strings.HasSuffix(baseURL, "/v1") && !strings.HasSuffix(baseURL, "/v1/") {
			baseURL = strings.TrimSuffix(baseURL, "/") + "/v1"
		}
		apiCfg.BaseURL = baseURL
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout()}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		imageSize:   cfg.ImageSize,
	}
}

// Answer submits the user question as a chat completion and returns the
// assistant's reply text.
func (c *Client) Answer(ctx context.Context, question string) (string, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemRole},
			{Role: openai.ChatMessageRoleUser, Content: answerInstruction + question},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		logFailure(ctx, "assistant.answer", err, start)
		return "", serviceerr.Transport(serviceName, err)
	}
	if len(resp.Choices) == 0 {
		serr := serviceerr.UnexpectedFormat(serviceName, "chat completion response has no choices")
		logFailure(ctx, "assistant.answer", serr, start)
		return "", serr
	}

	answer := resp.Choices[0].Message.Content
	logger.Debug(ctx, "service.assistant", "assistant.answer",
		slog.String("status", "ok"),
		slog.String("model", c.model),
		slog.Int("answer_len", len(answer)),
		slog.Duration("duration", logger.Took(start)),
	)
	return answer, nil
}

// GenerateImage requests a single image for the description and returns its URL.
func (c *Client) GenerateImage(ctx context.Context, description string) (string, error) {
	start := time.Now()
	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Prompt: imageInstruction + description,
		N:      1,
		Size:   c.imageSize,
	})
	if err != nil {
		logFailure(ctx, "assistant.image", err, start)
		return "", serviceerr.Transport(serviceName, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		serr := serviceerr.UnexpectedFormat(serviceName, "image response has no data url")
		logFailure(ctx, "assistant.image", serr, start)
		return "", serr
	}

	logger.Debug(ctx, "service.assistant", "assistant.image",
		slog.String("status", "ok"),
		slog.String("size", c.imageSize),
		slog.Duration("duration", logger.Took(start)),
	)
	return resp.Data[0].URL, nil
}

func logFailure(ctx context.Context, event string, err error, start time.Time) {
	logger.Error(ctx, "service.assistant", event,
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		slog.Duration("duration", logger.Took(start)),
	)
}
