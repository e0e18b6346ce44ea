package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pageza/cuistot/backend/config"
	"github.com/pageza/cuistot/backend/internal/metrics"
)

const systemPrompt = "You are a helpful assistant designed to output JSON."

// LLMService talks to an OpenAI compatible chat-completions endpoint
type LLMService struct {
	apiKey      string
	apiURL      string
	model       string
	client      *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	log         *zap.Logger
}

// NewLLMService creates a new LLMService instance
func NewLLMService(cfg config.LLMConfig, log *zap.Logger) *LLMService {
	burst := int(math.Ceil(cfg.RequestsPerSecond))
	if burst < 1 {
		burst = 1
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &LLMService{
		apiKey:      cfg.APIKey,
		apiURL:      cfg.APIURL,
		model:       cfg.Model,
		client:      &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		maxAttempts: attempts,
		baseBackoff: 500 * time.Millisecond,
		maxBackoff:  8 * time.Second,
		log:         log.Named("llm"),
	}
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// Request represents a chat-completions request
type Request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends prompt as the user message and returns the first choice.
// With strictJSON the provider is asked for a single JSON object; the text is
// returned as is and may still not be valid JSON.
func (s *LLMService) Complete(ctx context.Context, prompt string, strictJSON bool) (string, error) {
	reqBody := Request{
		Model: s.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	}
	if strictJSON {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()
	defer func() { metrics.ProviderLatency.Observe(time.Since(start).Seconds()) }()

	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if attempt > 0 {
			wait := s.backoff(attempt)
			s.log.Debug("retrying provider call",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", wait),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for provider rate limit: %w", err)
		}

		content, retry, err := s.attempt(ctx, payload)
		if err == nil {
			s.log.Debug("provider call completed",
				zap.Int("attempts", attempt+1),
				zap.Duration("latency", time.Since(start)),
			)
			return content, nil
		}
		if !retry {
			return "", err
		}
		lastErr = err
	}

	s.log.Warn("provider call failed", zap.Int("attempts", s.maxAttempts), zap.Error(lastErr))
	return "", fmt.Errorf("%w after %d attempts: %v", ErrProviderUnavailable, s.maxAttempts, lastErr)
}

// attempt performs one HTTP round trip and reports whether a failure is worth retrying.
func (s *LLMService) attempt(ctx context.Context, payload []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ProviderAttempts.WithLabelValues("transport_error").Inc()
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return "", false, err
		}
		return "", true, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProviderAttempts.WithLabelValues("read_error").Inc()
		return "", true, fmt.Errorf("failed to read response: %w", err)
	}
	metrics.ProviderAttempts.WithLabelValues(fmt.Sprintf("%dxx", resp.StatusCode/100)).Inc()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return "", true, &ProviderError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", false, &ProviderError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", false, fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", false, errors.New("no choices in chat response")
	}
	return result.Choices[0].Message.Content, false, nil
}

// backoff is exponential from baseBackoff, capped at maxBackoff, with ±25% jitter.
func (s *LLMService) backoff(attempt int) time.Duration {
	d := float64(s.baseBackoff) * math.Pow(2, float64(attempt-1))
	if d > float64(s.maxBackoff) {
		d = float64(s.maxBackoff)
	}
	d += d * 0.25 * (rand.Float64()*2 - 1) //nolint:gosec // jitter only
	return time.Duration(d)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
