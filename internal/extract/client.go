package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/letsssgooo/historyGames/internal/content"
	"github.com/letsssgooo/historyGames/internal/domain/models"
	"github.com/letsssgooo/historyGames/internal/metrics"
)

const (
	// DefaultBaseURL — OpenAI-совместимый эндпоинт Gemini.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

	DefaultMaxTextRunes = 15000
	DefaultTimeout      = 90 * time.Second
)

// DefaultModels — модели в порядке приоритета.
var DefaultModels = []string{
	"gemini-3-flash-preview",
	"gemini-3-pro-preview",
	"gemini-2.5-flash",
}

var (
	ErrNoAPIKey          = errors.New("api key is not set")
	ErrQuotaExhausted    = errors.New("api quota exhausted")
	ErrInvalidCredential = errors.New("api key is invalid or has no access")
	ErrAllModelsFailed   = errors.New("all models failed")
	ErrEmptyResponse     = errors.New("empty response from model")
	ErrNoInput           = errors.New("nothing to analyze")
)

// Config содержит конфигурацию клиента извлечения
type Config struct {
	BaseURL      string
	APIKey       string
	Models       []string
	Timeout      time.Duration
	MaxTextRunes int
	HTTPClient   *http.Client
}

// Credentials переопределяют ключ и предпочтительную модель для одной сессии.
type Credentials struct {
	APIKey string `json:"apiKey"`
	Model  string `json:"model"`
}

// Client превращает текст или изображение документа в ParsedData
type Client struct {
	cfg     Config
	log     *slog.Logger
	metrics *metrics.Metrics
}

// New создаёт клиента. Незаполненные поля получают значения по умолчанию.
func New(cfg Config, log *slog.Logger, m *metrics.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultModels
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTextRunes <= 0 {
		cfg.MaxTextRunes = DefaultMaxTextRunes
	}
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		cfg:     cfg,
		log:     log.With(slog.String("component", "extract")),
		metrics: m,
	}
}

// Models возвращает список доступных моделей.
func (c *Client) Models() []string {
	return slices.Clone(c.cfg.Models)
}

// Candidates возвращает порядок перебора моделей: предпочтительная первой,
// если она есть в списке, далее остальные в исходном порядке.
func (c *Client) Candidates(preferred string) []string {
	out := make([]string, 0, len(c.cfg.Models))
	if slices.Contains(c.cfg.Models, preferred) {
		out = append(out, preferred)
	}
	for _, m := range c.cfg.Models {
		if m != preferred {
			out = append(out, m)
		}
	}
	return out
}

// FromText извлекает контент из текста документа.
func (c *Client) FromText(ctx context.Context, creds Credentials, text string) (models.ParsedData, error) {
	if strings.TrimSpace(text) == "" {
		return models.ParsedData{}, ErrNoInput
	}

	prompt := textPrompt(truncateRunes(text, c.cfg.MaxTextRunes))
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}

	return c.extract(ctx, creds, messages)
}

// FromImage извлекает контент из изображения страницы в base64.
func (c *Client) FromImage(ctx context.Context, creds Credentials, base64Data, mimeType string) (models.ParsedData, error) {
	if base64Data == "" || mimeType == "" {
		return models.ParsedData{}, ErrNoInput
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: imagePrompt},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    "data:" + mimeType + ";base64," + base64Data,
						Detail: openai.ImageURLDetailAuto,
					},
				},
			},
		},
	}

	return c.extract(ctx, creds, messages)
}

func (c *Client) extract(ctx context.Context, creds Credentials, messages []openai.ChatCompletionMessage) (models.ParsedData, error) {
	apiKey := strings.TrimSpace(creds.APIKey)
	if apiKey == "" {
		apiKey = c.cfg.APIKey
	}
	if apiKey == "" {
		return models.ParsedData{}, ErrNoAPIKey
	}

	raw, model, err := c.callWithFallback(ctx, apiKey, creds.Model, messages)
	if err != nil {
		return models.ParsedData{}, err
	}

	data, err := content.Normalize([]byte(raw))
	if err != nil {
		c.log.Warn("model returned malformed payload", slog.String("model", model), slog.Any("error", err))
		return models.ParsedData{}, fmt.Errorf("model %s: %w", model, err)
	}

	c.log.Info("content extracted",
		slog.String("model", model),
		slog.Int("events", len(data.Events)),
		slog.Int("questions", len(data.Questions)),
		slog.Int("characters", len(data.Characters)),
	)

	return data, nil
}

// callWithFallback перебирает модели до первого непустого ответа.
func (c *Client) callWithFallback(
	ctx context.Context,
	apiKey, preferred string,
	messages []openai.ChatCompletionMessage,
) (string, string, error) {
	oc := c.newOpenAI(apiKey)

	var lastErr error
	for _, model := range c.Candidates(preferred) {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}

		c.log.Debug("trying model", slog.String("model", model))

		text, err := c.call(ctx, oc, model, messages)
		if err == nil {
			return text, model, nil
		}

		c.log.Warn("model failed", slog.String("model", model), slog.Any("error", err))
		lastErr = err
	}

	return "", "", classify(lastErr)
}

func (c *Client) call(ctx context.Context, oc *openai.Client, model string, messages []openai.ChatCompletionMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := oc.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	duration := time.Since(start)

	if err != nil {
		c.metrics.ObserveExtraction(model, metrics.StatusError, duration)
		return "", err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		c.metrics.ObserveExtraction(model, metrics.StatusEmptyResponse, duration)
		return "", ErrEmptyResponse
	}

	c.metrics.ObserveExtraction(model, metrics.StatusSuccess, duration)

	return resp.Choices[0].Message.Content, nil
}

func (c *Client) newOpenAI(apiKey string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = c.cfg.BaseURL
	if c.cfg.HTTPClient != nil {
		config.HTTPClient = c.cfg.HTTPClient
	}
	return openai.NewClientWithConfig(config)
}

// classify оборачивает последнюю ошибку в ErrAllModelsFailed и, если получится,
// в ErrQuotaExhausted или ErrInvalidCredential.
func classify(err error) error {
	if err == nil {
		return ErrAllModelsFailed
	}

	switch {
	case IsQuota(err):
		return fmt.Errorf("%w: %w: %w", ErrAllModelsFailed, ErrQuotaExhausted, err)
	case isCredential(err):
		return fmt.Errorf("%w: %w: %w", ErrAllModelsFailed, ErrInvalidCredential, err)
	default:
		return fmt.Errorf("%w, last error: %w", ErrAllModelsFailed, err)
	}
}

// IsQuota сообщает, что ошибка вызвана исчерпанием квоты.
func IsQuota(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExhausted) || statusCode(err) == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func isCredential(err error) bool {
	code := statusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
