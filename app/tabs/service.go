package tabs

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tabmemory/tabmemory/app/apperrors"
	"github.com/tabmemory/tabmemory/app/database"
	"github.com/tabmemory/tabmemory/app/generation"
	"github.com/tabmemory/tabmemory/app/tasks"
)

// Service implements tab ingestion: synchronous persistence plus
// fire-and-forget enrichment dispatch.
type Service struct {
	tabRepo        database.TabRepository
	genClient      generation.Client
	scheduler      tasks.TaskSchedulerInterface
	ownerID        int
	extractContent bool
	httpClient     *http.Client
	userAgent      string
}

func NewService(tabRepo database.TabRepository, genClient generation.Client,
	scheduler tasks.TaskSchedulerInterface, ownerID int, extractContent bool,
	httpClient *http.Client, userAgent string) *Service {
	return &Service{
		tabRepo:        tabRepo,
		genClient:      genClient,
		scheduler:      scheduler,
		ownerID:        ownerID,
		extractContent: extractContent,
		httpClient:     httpClient,
		userAgent:      userAgent,
	}
}

// Save persists each captured tab in input order and schedules one
// enrichment task per tab that has page text. The returned result does
// not wait for any enrichment task; each insert is an independent
// statement with no multi-row transaction.
func (s *Service) Save(batch []CapturedTab) (*SaveResult, error) {
	saved := make([]SavedTab, 0, len(batch))

	for _, tab := range batch {
		newTab := database.NewTab{
			URL:        tab.URL,
			Title:      tab.Title,
			FavIconURL: tab.FavIconURL,
			SavedAt:    tab.SavedAt,
		}
		if tab.Content != nil {
			newTab.Content = tab.Content.Text
			newTab.Description = tab.Content.Description
		}

		id, err := s.tabRepo.Insert(s.ownerID, newTab)
		if err != nil {
			return nil, fmt.Errorf("failed to save tab %q: %w", tab.URL, err)
		}

		saved = append(saved, SavedTab{ID: id, CapturedTab: tab})
		s.scheduleEnrichment(id, tab)
	}

	return &SaveResult{Count: len(saved), Tabs: saved}, nil
}

// scheduleEnrichment dispatches the detached enrichment work for one
// saved tab. A full queue is logged and dropped: the save response has
// already been decided, and a tab without a summary is a valid
// permanent state.
func (s *Service) scheduleEnrichment(id string, tab CapturedTab) {
	if tab.Content != nil && tab.Content.Text != "" {
		task := tasks.NewSummarizeTabTask(id, s.ownerID, generation.TabInput{
			Title:       tab.Title,
			URL:         tab.URL,
			Content:     tab.Content.Text,
			Description: tab.Content.Description,
		}, s.genClient, s.tabRepo)

		if err := s.scheduler.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue summarize task", "tab_id", id, "error", err)
		}
		return
	}

	// Tabs without captured text are never summarized directly. With
	// extraction enabled, the content is fetched server-side first.
	if s.extractContent && tab.URL != "" {
		task := tasks.NewExtractContentTask(id, s.ownerID, tab.URL, tab.Title,
			s.httpClient, s.userAgent, s.genClient, s.tabRepo, s.scheduler)

		if err := s.scheduler.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue extract content task", "tab_id", id, "error", err)
		}
	}
}

// List returns one page of tabs, newest first, plus the total count.
func (s *Service) List(limit, offset int) (*ListResult, error) {
	stored, err := s.tabRepo.List(s.ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}

	total, err := s.tabRepo.Count(s.ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tabs: %w", err)
	}

	views := make([]TabView, 0, len(stored))
	for _, tab := range stored {
		views = append(views, TabView{
			ID:                 tab.ID,
			URL:                tab.URL,
			Title:              tab.Title,
			FavIconURL:         tab.FavIconURL,
			Summary:            tab.Summary,
			SavedAt:            tab.SavedAt,
			SummaryGeneratedAt: tab.SummaryGeneratedAt,
		})
	}

	return &ListResult{Tabs: views, Total: total, Limit: limit, Offset: offset}, nil
}

// Get returns a full tab row or NotFound.
func (s *Service) Get(id string) (*database.Tab, error) {
	tab, err := s.tabRepo.Get(id, s.ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tab: %w", err)
	}
	if tab == nil {
		return nil, apperrors.NewNotFound("Tab", id)
	}
	return tab, nil
}

// Delete removes a tab; deleting an absent id fails with NotFound
// rather than succeeding silently.
func (s *Service) Delete(id string) error {
	deleted, err := s.tabRepo.Delete(id, s.ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete tab: %w", err)
	}
	if !deleted {
		return apperrors.NewNotFound("Tab", id)
	}
	return nil
}
