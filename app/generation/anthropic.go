package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIURL = "https://api.anthropic.com/v1/messages"

	// The original captured page text can be large; only the first
	// 8000 characters are embedded in the summary prompt.
	maxContentChars = 8000

	summaryMaxTokens = 300
	digestMaxTokens  = 1500
)

// AnthropicClient calls the Anthropic Messages API for tab summaries
// and browsing digests.
type AnthropicClient struct {
	apiKey string
	model  string
	apiURL string
	client *http.Client
}

var _ Client = (*AnthropicClient)(nil)

func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		apiKey: apiKey,
		model:  model,
		apiURL: defaultAPIURL,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Anthropic API request/response types

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Error   *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SummarizeTab produces a 2-3 sentence summary of one captured page.
func (c *AnthropicClient) SummarizeTab(ctx context.Context, tab TabInput) (string, error) {
	return c.callAPI(ctx, buildSummaryPrompt(tab), summaryMaxTokens)
}

// GenerateDigest produces a narrative digest across all tabs in a range.
func (c *AnthropicClient) GenerateDigest(ctx context.Context, tabs []DigestTab, start, end time.Time) (string, error) {
	return c.callAPI(ctx, buildDigestPrompt(tabs, start, end), digestMaxTokens)
}

func buildSummaryPrompt(tab TabInput) string {
	var sb strings.Builder
	sb.WriteString("You are summarizing a web page that someone saved from their browser.\n\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", tab.Title))
	sb.WriteString(fmt.Sprintf("URL: %s\n", tab.URL))
	if tab.Description != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", tab.Description))
	}

	content := tab.Content
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}
	if content == "" {
		content = "No content available"
	}
	sb.WriteString(fmt.Sprintf("\nContent:\n%s\n\n", content))

	sb.WriteString("Please provide a concise 2-3 sentence summary of what this page is about " +
		"and why someone might have been interested in it. Focus on the key insights or " +
		"information, not just describing what type of page it is.")

	return sb.String()
}

func buildDigestPrompt(tabs []DigestTab, start, end time.Time) string {
	var sb strings.Builder
	sb.WriteString("You are creating a personalized digest of someone's browsing activity.\n\n")
	sb.WriteString(fmt.Sprintf("Between %s and %s, they saved %d tabs:\n\n",
		start.Format("1/2/2006"), end.Format("1/2/2006"), len(tabs)))

	for i, tab := range tabs {
		summary := tab.Summary
		if summary == "" {
			summary = "No summary available"
		}
		sb.WriteString(fmt.Sprintf("%d. [%s](%s)\n   Saved: %s\n   %s\n\n",
			i+1, tab.Title, tab.URL, tab.SavedAt.Format("1/2/2006"), summary))
	}

	sb.WriteString(`Please write a thoughtful, narrative digest (3-5 paragraphs) that:
1. Identifies the main themes and patterns in their browsing
2. Connects related ideas across different tabs
3. Reflects on what their browsing suggests about their current interests, questions, or projects
4. Is written in second person ("you") - make it personal and insightful

Be perceptive about implicit connections and subconscious patterns. This should feel like a mirror showing them what they've been thinking about.`)

	return sb.String()
}

func (c *AnthropicClient) callAPI(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("anthropic: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("anthropic: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropic: failed to read response: %w", err)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("anthropic: failed to parse response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("anthropic: API error: %s - %s", apiResp.Error.Type, apiResp.Error.Message)
	}

	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("anthropic: empty response")
	}

	return apiResp.Content[0].Text, nil
}
