package digests

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tabmemory/tabmemory/app/apperrors"
	"github.com/tabmemory/tabmemory/app/database"
	"github.com/tabmemory/tabmemory/app/generation"
)

// defaultRange is used when the caller supplies no start date.
const defaultRange = 7 * 24 * time.Hour

// Service synthesizes narrative digests over saved tabs.
type Service struct {
	tabRepo    database.TabRepository
	digestRepo database.DigestRepository
	genClient  generation.Client
	ownerID    int
}

func NewService(tabRepo database.TabRepository, digestRepo database.DigestRepository,
	genClient generation.Client, ownerID int) *Service {
	return &Service{
		tabRepo:    tabRepo,
		digestRepo: digestRepo,
		genClient:  genClient,
		ownerID:    ownerID,
	}
}

// Generate builds one digest across all tabs saved in [start, end].
// Defaults: end = now, start = end - 7 days. The range must contain at
// least one tab; generation is refused before any model call otherwise.
// Nothing is persisted when the generation call fails.
func (s *Service) Generate(ctx context.Context, start, end *time.Time) (*database.Digest, error) {
	endAt := time.Now()
	if end != nil {
		endAt = *end
	}
	startAt := endAt.Add(-defaultRange)
	if start != nil {
		startAt = *start
	}

	stored, err := s.tabRepo.ListRange(s.ownerID, startAt, endAt)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tabs for digest: %w", err)
	}

	if len(stored) == 0 {
		return nil, apperrors.NewEmptyRange()
	}

	digestTabs := make([]generation.DigestTab, 0, len(stored))
	for _, tab := range stored {
		entry := generation.DigestTab{
			Title:   tab.Title,
			URL:     tab.URL,
			SavedAt: tab.SavedAt,
		}
		if tab.Summary != nil {
			entry.Summary = *tab.Summary
		}
		digestTabs = append(digestTabs, entry)
	}

	slog.Info("Generating digest", "tab_count", len(digestTabs), "start", startAt, "end", endAt)

	// One blocking call for the whole range, never parallelized per tab
	content, err := s.genClient.GenerateDigest(ctx, digestTabs, startAt, endAt)
	if err != nil {
		return nil, apperrors.NewGenerationFailed(err)
	}

	digest, err := s.digestRepo.Insert(s.ownerID, startAt, endAt, content, len(digestTabs))
	if err != nil {
		return nil, fmt.Errorf("failed to store digest: %w", err)
	}

	return digest, nil
}

// List returns digest summaries, newest first.
func (s *Service) List() ([]database.Digest, error) {
	digests, err := s.digestRepo.List(s.ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list digests: %w", err)
	}
	return digests, nil
}

// Get returns a full digest or NotFound.
func (s *Service) Get(id string) (*database.Digest, error) {
	digest, err := s.digestRepo.Get(id, s.ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get digest: %w", err)
	}
	if digest == nil {
		return nil, apperrors.NewNotFound("Digest", id)
	}
	return digest, nil
}

// Delete removes a digest or fails with NotFound.
func (s *Service) Delete(id string) error {
	deleted, err := s.digestRepo.Delete(id, s.ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete digest: %w", err)
	}
	if !deleted {
		return apperrors.NewNotFound("Digest", id)
	}
	return nil
}
