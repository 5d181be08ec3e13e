package annotate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Code-Monger/InkPilot/pkg/finding"
)

// maxResponseSize limits the model response body.
const maxResponseSize = 10 * 1024 * 1024

// DefaultBaseURL is the OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// RetryConfig holds retry configuration for model requests.
type RetryConfig struct {
	MaxAttempts       int
	BackoffBase       time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
}

// DefaultRetryConfig retries three times starting at one second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        15 * time.Second,
	}
}

// LLMAnnotator asks an OpenAI-compatible chat completions endpoint for
// findings.
type LLMAnnotator struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	retryConfig RetryConfig
}

// LLMOption configures an LLMAnnotator.
type LLMOption func(*LLMAnnotator)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) LLMOption {
	return func(a *LLMAnnotator) {
		a.httpClient = c
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) LLMOption {
	return func(a *LLMAnnotator) {
		a.retryConfig = cfg
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) LLMOption {
	return func(a *LLMAnnotator) {
		a.temperature = t
	}
}

// NewLLMAnnotator creates an annotator for model at baseURL. An empty
// baseURL uses the OpenAI API.
func NewLLMAnnotator(baseURL, apiKey, model string, opts ...LLMOption) *LLMAnnotator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	a := &LLMAnnotator{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: 0.2,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		retryConfig: DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name identifies the annotator in logs and metrics.
func (a *LLMAnnotator) Name() string {
	return "llm:" + a.model
}

func (a *LLMAnnotator) endpoint() string {
	if strings.HasSuffix(a.baseURL, "/chat/completions") {
		return a.baseURL
	}
	return a.baseURL + "/chat/completions"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Annotate asks the model for findings of kind about text.
func (a *LLMAnnotator) Annotate(ctx context.Context, kind finding.Kind, text string) (Result, error) {
	prompt, err := systemPrompt(kind)
	if err != nil {
		return Result{}, NewFatalError(err)
	}

	requestID := uuid.New().String()
	startedAt := time.Now()

	content, attempts, err := a.completeWithRetry(ctx, chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: userPrompt(text)},
		},
		Temperature:    a.temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		log.Printf("[Annotate] %s request %s failed after %d attempts: %v", kind, requestID, attempts, err)
		return Result{RequestID: requestID}, err
	}

	result, err := parseFindings(kind, content)
	if err != nil {
		log.Printf("[Annotate] %s request %s returned unusable output: %v", kind, requestID, err)
		return Result{RequestID: requestID}, err
	}
	result.RequestID = requestID

	log.Printf("[Annotate] %s request %s: %d findings, %d rejected, %d attempts, %v",
		kind, requestID, len(result.Findings), len(result.Rejected), attempts, time.Since(startedAt).Round(time.Millisecond))
	return result, nil
}

// parseFindings validates a model reply against the wire shape of kind.
func parseFindings(kind finding.Kind, content string) (Result, error) {
	raw := ExtractJSON(content)
	if raw == "" {
		return Result{}, NewFatalError(fmt.Errorf("no JSON object in model reply"))
	}

	var result Result
	switch kind {
	case finding.KindGrammar:
		var resp finding.GrammarResponse
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			return Result{}, NewFatalError(fmt.Errorf("parse grammar reply: %w", err))
		}
		result.Findings, result.Rejected = finding.FromGrammar(resp.Errors)
	case finding.KindStyle:
		var resp finding.StyleResponse
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			return Result{}, NewFatalError(fmt.Errorf("parse style reply: %w", err))
		}
		result.Findings, result.Rejected = finding.FromStyle(resp.Suggestions)
	default:
		return Result{}, NewFatalError(fmt.Errorf("unknown finding kind: %q", kind))
	}
	return result, nil
}

// completeWithRetry sends req, retrying transient failures with backoff.
func (a *LLMAnnotator) completeWithRetry(ctx context.Context, req chatRequest) (string, int, error) {
	var lastErr error
	maxAttempts := a.retryConfig.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		content, err := a.doRequest(ctx, req)
		if err == nil {
			return content, attempt, nil
		}
		lastErr = err

		if IsFatal(err) {
			return "", attempt, err
		}

		if attempt < maxAttempts {
			backoff := a.calculateBackoff(attempt)
			log.Printf("[Annotate] Request failed (attempt %d/%d), retrying in %v: %v", attempt, maxAttempts, backoff, err)

			select {
			case <-ctx.Done():
				return "", attempt, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return "", maxAttempts, lastErr
}

// calculateBackoff computes exponential backoff with +/- 25% jitter.
func (a *LLMAnnotator) calculateBackoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= a.retryConfig.BackoffMultiplier
	}

	backoff := time.Duration(float64(a.retryConfig.BackoffBase) * multiplier)
	if backoff > a.retryConfig.MaxBackoff {
		backoff = a.retryConfig.MaxBackoff
	}

	jitter := float64(backoff) * 0.25 * (rand.Float64()*2 - 1)
	return backoff + time.Duration(jitter)
}

// doRequest executes one chat completion request.
func (a *LLMAnnotator) doRequest(ctx context.Context, req chatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", NewFatalError(fmt.Errorf("build request body: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", NewFatalError(ctx.Err())
		}
		return "", NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return "", NewTransientError(fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", classifyHTTPError(httpResp.StatusCode, respBody)
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", NewFatalError(fmt.Errorf("parse response: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", NewTransientError(fmt.Errorf("response has no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}
