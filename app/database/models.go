package database

import (
	"time"
)

// Tab represents one captured browser page.
type Tab struct {
	ID                 string
	OwnerID            int
	URL                string
	Title              string
	FavIconURL         string
	Content            string
	Description        string
	Summary            *string
	SummaryGeneratedAt *time.Time
	SavedAt            time.Time
	CreatedAt          time.Time
}

// NewTab carries the fields captured at save time. Summary fields are
// always absent at creation and backfilled by the enrichment task.
type NewTab struct {
	URL         string
	Title       string
	FavIconURL  string
	Content     string
	Description string
	SavedAt     *time.Time // nil defaults to NOW() in the insert
}

// Digest represents one synthesized narrative over a set of tabs.
type Digest struct {
	ID        string
	OwnerID   int
	StartDate time.Time
	EndDate   time.Time
	Content   string
	TabCount  int
	CreatedAt time.Time
}
