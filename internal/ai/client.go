package ai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/pkg/errors"

	"taskmind-backend/internal/log"
	"taskmind-backend/internal/models"
)

const defaultTimeout = 30 * time.Second

type chatCompletions interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
	HTTPClient  *http.Client
	Logger      log.Logger
}

// Client talks to an OpenAI-compatible chat endpoint (Ollama serves one under /v1).
type Client struct {
	completions chatCompletions
	Model       string
	temperature float64
	timeout     time.Duration
	logger      log.Logger
}

func New(o Options) *Client {
	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = "ollama"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(o.MaxRetries),
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	}
	client := openai.NewClient(opts...)
	return newClient(&client.Chat.Completions, o)
}

func newClient(completions chatCompletions, o Options) *Client {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := o.Logger
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Client{
		completions: completions,
		Model:       o.Model,
		temperature: o.Temperature,
		timeout:     timeout,
		logger:      logger,
	}
}

// Classify asks the model for priority, status, category and reason. It never
// fails: transport errors, timeouts and unparseable replies all yield the
// fallback enrichment.
func (c *Client) Classify(ctx context.Context, in models.TaskInput) models.Enrichment {
	raw, err := c.chat(ctx, classifySystemPrompt, BuildClassifyPrompt(in))
	if err != nil {
		c.logger.Warnf("classify %q: model unavailable, using fallback: %v", in.Title, err)
		return models.FallbackEnrichment()
	}

	enriched, err := DecodeEnrichment(raw)
	if err != nil {
		c.logger.Warnf("classify %q: reply is not JSON, using fallback: %v (raw=%q)", in.Title, err, raw)
		return models.FallbackEnrichment()
	}
	return enriched
}

// Suggest asks the model to turn free text into a task title and description.
// Errors are returned as-is; callers decide how to surface them.
func (c *Client) Suggest(ctx context.Context, query string) (models.Suggestion, error) {
	raw, err := c.chat(ctx, suggestSystemPrompt, BuildSuggestPrompt(query))
	if err != nil {
		return models.Suggestion{}, err
	}
	s, err := DecodeSuggestion(raw)
	if err != nil {
		c.logger.Warnf("suggest: unusable reply: %v (raw=%q)", err, raw)
		return models.Suggestion{}, err
	}
	return s, nil
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(strings.TrimSpace(system)),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	completion, err := c.completions.New(ctx, params)
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}
	if completion == nil || len(completion.Choices) == 0 {
		return "", errors.Wrap(ErrMalformed, "no choices in reply")
	}
	return completion.Choices[0].Message.Content, nil
}
