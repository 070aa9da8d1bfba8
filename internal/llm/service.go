package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"upwork-proposals/internal/apperr"
	httpclient "upwork-proposals/pkg/http"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderGroq   Provider = "groq"
	ProviderNone   Provider = "none"
)

// ErrNotConfigured is returned by Generate when no provider is set up.
var ErrNotConfigured = errors.New("LLM provider not configured")

var defaultBaseURLs = map[Provider]string{
	ProviderOpenAI: "https://api.openai.com/v1",
	ProviderGroq:   "https://api.groq.com/openai/v1",
	ProviderOllama: "http://localhost:11434",
}

// Request carries one generation call. Zero Model/Temperature/MaxTokens fall back to the service defaults.
type Request struct {
	System      string
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
}

type Service struct {
	provider Provider
	apiKey   string
	model    string
	baseURL  string
	rc       *resty.Client
}

func NewService(provider, apiKey, model, baseURL string, timeout time.Duration) *Service {
	p := Provider(strings.ToLower(provider))
	if p == "" {
		p = ProviderNone
	}
	if baseURL == "" {
		baseURL = defaultBaseURLs[p]
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	rc := resty.NewWithClient(httpclient.NewClient(timeout).Standard()).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Service{
		provider: p,
		apiKey:   apiKey,
		model:    model,
		baseURL:  strings.TrimRight(baseURL, "/"),
		rc:       rc,
	}
}

// Provider reports which backend the service talks to.
func (s *Service) Provider() Provider {
	return s.provider
}

// Generate sends a prompt to the configured provider and returns the completion text.
func (s *Service) Generate(ctx context.Context, req Request) (string, error) {
	if s == nil || s.provider == ProviderNone {
		return "", ErrNotConfigured
	}
	if req.Model == "" {
		req.Model = s.model
	}

	start := time.Now()
	var (
		response string
		err      error
	)
	switch s.provider {
	case ProviderOpenAI, ProviderGroq:
		response, err = s.callChatCompletions(ctx, req)
	case ProviderOllama:
		response, err = s.callOllama(ctx, req)
	default:
		return "", fmt.Errorf("unknown provider: %s", s.provider)
	}
	log.Printf("[LLM] %s model=%s took %v", s.provider, req.Model, time.Since(start))
	if err != nil {
		return "", err
	}
	return response, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// callChatCompletions talks to any OpenAI-compatible endpoint (OpenAI, Groq).
func (s *Service) callChatCompletions(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})

	var result chatResponse
	r := s.rc.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		ForceContentType("application/json")
	if s.apiKey != "" {
		r.SetAuthToken(s.apiKey)
	}
	resp, err := r.Post(s.baseURL + "/chat/completions")
	if err := classify(string(s.provider), resp, err); err != nil {
		return "", err
	}
	if result.Error != nil && result.Error.Message != "" {
		return "", fmt.Errorf("%s error: %s: %w", s.provider, result.Error.Message, apperr.ErrUpstreamUnavailable)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from %s: %w", s.provider, apperr.ErrUpstreamSchemaMismatch)
	}
	return result.Choices[0].Message.Content, nil
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options"`
}

func (s *Service) callOllama(ctx context.Context, req Request) (string, error) {
	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	resp, err := s.rc.R().
		SetContext(ctx).
		SetBody(ollamaRequest{
			Model:  req.Model,
			Prompt: req.Prompt,
			System: req.System,
			Options: map[string]any{
				"temperature": req.Temperature,
				"num_predict": req.MaxTokens,
			},
		}).
		SetResult(&result).
		SetError(&result).
		ForceContentType("application/json").
		Post(s.baseURL + "/api/generate")
	if result.Error != "" {
		return "", fmt.Errorf("Ollama error: %s: %w", result.Error, apperr.ErrUpstreamUnavailable)
	}
	if err := classify("Ollama", resp, err); err != nil {
		return "", err
	}
	return result.Response, nil
}

// classify maps a transport failure, an error status or an undecodable success body
// onto the upstream error taxonomy.
func classify(provider string, resp *resty.Response, err error) error {
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		decodeFailed := errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
		if decodeFailed && resp != nil && resp.IsSuccess() {
			return fmt.Errorf("decode %s response: %w", provider, apperr.ErrUpstreamSchemaMismatch)
		}
		if !decodeFailed {
			return fmt.Errorf("%s request: %w: %v", provider, apperr.ErrUpstreamUnavailable, err)
		}
	}
	if resp == nil || !resp.IsSuccess() {
		status := 0
		if resp != nil {
			status = resp.StatusCode()
		}
		return fmt.Errorf("%s API error %d: %w", provider, status, apperr.ErrUpstreamUnavailable)
	}
	return nil
}
