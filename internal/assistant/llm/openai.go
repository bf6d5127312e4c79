package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI calls the chat completions API.
type OpenAI struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *logrus.Entry
}

// NewOpenAI builds the OpenAI provider. Empty model and zero timeout
// fall back to defaults.
func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration, log *logrus.Logger) *OpenAI {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAI{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: timeout},
		breaker: newProviderBreaker("openai", log),
		log:     log.WithField("component", "llm.openai"),
	}
}

// Name implements Provider.
func (o *OpenAI) Name() string { return "openai" }

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate implements Provider.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	req := openaiRequest{
		Model: o.model,
		Messages: []openaiMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.4,
		MaxTokens:   1024,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	result, err := o.breaker.Execute(func() (interface{}, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

		resp, err := o.http.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("openai returned status %d", resp.StatusCode)
		}

		var decoded openaiResponse
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("decoding openai response: %w", err)
		}
		if decoded.Error != nil {
			return nil, fmt.Errorf("openai error: %s", decoded.Error.Message)
		}
		return &decoded, nil
	})
	if err != nil {
		return "", err
	}

	decoded := result.(*openaiResponse)
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}
