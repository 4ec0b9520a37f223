package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tabmemory/tabmemory/app/database"
	"github.com/tabmemory/tabmemory/app/generation"
)

// SummarizeTabTask generates a summary for one saved tab and backfills
// the row. Failures terminate the task silently from the client's
// perspective; the tab permanently keeps no summary.
type SummarizeTabTask struct {
	Task
	Input   generation.TabInput
	OwnerID int
	client  generation.Client
	tabRepo database.TabRepository
}

func NewSummarizeTabTask(tabID string, ownerID int, input generation.TabInput,
	client generation.Client, tabRepo database.TabRepository) *SummarizeTabTask {
	return &SummarizeTabTask{
		Task:    NewTask(TaskTypeSummarizeTab, tabID),
		Input:   input,
		OwnerID: ownerID,
		client:  client,
		tabRepo: tabRepo,
	}
}

func (t *SummarizeTabTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	summary, err := t.client.SummarizeTab(ctx, t.Input)
	if err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	// Summary and its timestamp are written in one statement.
	updated, err := t.tabRepo.UpdateSummary(t.TabID, t.OwnerID, summary, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store summary: %w", err)
	}
	if !updated {
		// The tab was deleted while the generation call was in flight.
		// Dropping the result keeps the delete authoritative.
		slog.Debug("Tab deleted before summary landed", "tab_id", t.TabID)
		return nil
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"tab_id", t.TabID,
		"title", t.Input.Title,
		"duration", t.GetDuration())

	return nil
}
