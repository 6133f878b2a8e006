// Package ai provides the completion-service client used by the
// ingestion pipeline for query expansion, action synthesis and record
// auto-fill.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// LLMService is the completion service interface.
type LLMService interface {
	// Complete performs a free-text completion for a single prompt at
	// the given sampling temperature.
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)

	// CompleteObject performs a completion constrained to emit a single
	// JSON object and returns the raw object bytes. The caller owns
	// schema validation of the decoded value.
	CompleteObject(ctx context.Context, messages []Message, temperature float32) (json.RawMessage, error)

	// CompleteStream performs a streaming completion, delivering content
	// chunks over the returned channel.
	CompleteStream(ctx context.Context, messages []Message) (<-chan string, <-chan error)
}

type llmService struct {
	client *openai.Client
	config *Config
}

// NewLLMService creates a new LLMService.
func NewLLMService(cfg *Config) (LLMService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	client := openai.NewClientWithConfig(clientConfig)

	return &llmService{
		client: client,
		config: cfg,
	}, nil
}

func (s *llmService) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	var result string
	err := s.doWithRetry(ctx, func() error {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       s.config.Model,
			MaxTokens:   s.config.MaxTokens,
			Temperature: temperature,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty completion response")
		}
		result = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return result, nil
}

func (s *llmService) CompleteObject(ctx context.Context, messages []Message, temperature float32) (json.RawMessage, error) {
	var result json.RawMessage
	err := s.doWithRetry(ctx, func() error {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       s.config.Model,
			MaxTokens:   s.config.MaxTokens,
			Temperature: temperature,
			Messages:    convertMessages(messages),
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty completion response")
		}
		raw := stripCodeFences(resp.Choices[0].Message.Content)
		if !json.Valid([]byte(raw)) {
			return fmt.Errorf("completion returned invalid JSON")
		}
		result = json.RawMessage(raw)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("object completion failed: %w", err)
	}
	return result, nil
}

func (s *llmService) CompleteStream(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	contentChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		defer close(contentChan)
		defer close(errChan)

		stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:       s.config.Model,
			MaxTokens:   s.config.MaxTokens,
			Messages:    convertMessages(messages),
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Stream: true,
		})
		if err != nil {
			errChan <- err
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					errChan <- err
				}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			select {
			case contentChan <- resp.Choices[0].Delta.Content:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return contentChan, errChan
}

// doWithRetry executes fn with exponential backoff.
func (s *llmService) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < s.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < s.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("completion request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		converted[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return converted
}

// stripCodeFences removes markdown code fences some models wrap JSON
// output in, even in JSON mode.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
