// Package explain turns a finished risk assessment into a short plain-language
// explanation, either through the GitHub Models chat completions API or a
// rule-based fallback that needs no network.
package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
	"github.com/couchcryptid/outage-risk-service/internal/observability"
)

// Client implements domain.Explainer on the GitHub Models inference endpoint.
type Client struct {
	token      string
	model      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a chat-completions explainer.
func NewClient(token, model string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		token: token,
		model: model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://models.inference.ai.azure.com",
		logger:  logger,
		metrics: metrics,
	}
}

const systemPrompt = "You are a utility grid operations assistant. In two or three sentences, " +
	"explain a neighborhood power outage risk assessment to a non-technical resident. " +
	"Be concrete about the weather conditions driving the risk. Do not invent numbers."

// Explain asks the model for a short narrative of the assessment.
func (c *Client) Explain(ctx context.Context, assessment domain.RiskAssessment) (string, error) {
	text, err := c.doRequest(ctx, buildPrompt(assessment))
	if err != nil {
		c.metrics.ExplainerRequests.WithLabelValues("error").Inc()
		return "", err
	}
	c.metrics.ExplainerRequests.WithLabelValues("success").Inc()
	return text, nil
}

func (c *Client) doRequest(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   200,
		Temperature: 0.3,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("explanation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("models API error: status %d: %s", resp.StatusCode, respBody)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 || strings.TrimSpace(chat.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("models API returned no completion")
	}
	return strings.TrimSpace(chat.Choices[0].Message.Content), nil
}

// buildPrompt summarizes the assessment for the model.
func buildPrompt(a domain.RiskAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Neighborhood: %s\n", a.NeighborhoodName)
	fmt.Fprintf(&b, "Risk score: %.0f of 100 (%s)\n", a.RiskScore, a.RiskLevel)
	fmt.Fprintf(&b, "Forecast: %.1f°C, wind %.0f km/h, precipitation %.1f mm\n",
		a.Weather.Temp, a.Weather.WindSpeed, a.Weather.Precipitation)
	b.WriteString("Contributing factors:\n")
	for _, f := range a.Factors {
		fmt.Fprintf(&b, "- %s (contribution %.0f)\n", f.Name, f.Magnitude)
	}
	return b.String()
}

// Chat completions API types.

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}
