package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/tabmemory/tabmemory/app/database"
	"github.com/tabmemory/tabmemory/app/generation"
)

// ExtractContentTask fetches a tab's page server-side and extracts
// readable text for tabs captured without content. On success it stores
// the content and chains a summarize task, so the tab still ends up
// enriched. Only scheduled when extraction is enabled in config.
type ExtractContentTask struct {
	Task
	URL        string
	Title      string
	OwnerID    int
	httpClient *http.Client
	userAgent  string
	client     generation.Client
	tabRepo    database.TabRepository
	scheduler  TaskSchedulerInterface
}

func NewExtractContentTask(tabID string, ownerID int, pageURL, title string,
	httpClient *http.Client, userAgent string, client generation.Client,
	tabRepo database.TabRepository, scheduler TaskSchedulerInterface) *ExtractContentTask {
	return &ExtractContentTask{
		Task:       NewTask(TaskTypeExtractContent, tabID),
		URL:        pageURL,
		Title:      title,
		OwnerID:    ownerID,
		httpClient: httpClient,
		userAgent:  userAgent,
		client:     client,
		tabRepo:    tabRepo,
		scheduler:  scheduler,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if t.URL == "" {
		return fmt.Errorf("tab has no URL")
	}

	data, err := t.fetchPage(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	pageURL, err := url.Parse(t.URL)
	if err != nil {
		return fmt.Errorf("failed to parse tab URL: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), pageURL)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	if article.TextContent == "" {
		return fmt.Errorf("no content extracted from page")
	}

	updated, err := t.tabRepo.UpdateContent(t.TabID, t.OwnerID, article.TextContent)
	if err != nil {
		return fmt.Errorf("failed to store extracted content: %w", err)
	}
	if !updated {
		slog.Debug("Tab deleted before extracted content landed", "tab_id", t.TabID)
		return nil
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"tab_id", t.TabID,
		"url", t.URL,
		"content_length", len(article.TextContent),
		"duration", t.GetDuration())

	summarizeTask := NewSummarizeTabTask(t.TabID, t.OwnerID, generation.TabInput{
		Title:       t.Title,
		URL:         t.URL,
		Content:     article.TextContent,
		Description: article.Excerpt,
	}, t.client, t.tabRepo)

	if err := t.scheduler.EnqueueTask(summarizeTask); err != nil {
		slog.Warn("Failed to enqueue summarize task after extraction", "tab_id", t.TabID, "error", err)
	}

	return nil
}

func (t *ExtractContentTask) fetchPage(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
