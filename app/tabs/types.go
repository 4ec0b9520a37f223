package tabs

import (
	"time"
)

// CapturedContent is the page text extracted by the capture agent.
type CapturedContent struct {
	Text        string `json:"text"`
	Description string `json:"description"`
}

// CapturedTab is one tab as submitted by the browser extension.
type CapturedTab struct {
	URL        string           `json:"url"`
	Title      string           `json:"title"`
	FavIconURL string           `json:"favIconUrl,omitempty"`
	Content    *CapturedContent `json:"content,omitempty"`
	SavedAt    *time.Time       `json:"savedAt,omitempty"`
}

// SavedTab echoes a captured tab back with its assigned id.
type SavedTab struct {
	ID string `json:"id"`
	CapturedTab
}

// SaveResult is returned as soon as all synchronous inserts complete;
// enrichment tasks spawned by the save outlive it.
type SaveResult struct {
	Count int
	Tabs  []SavedTab
}

// ListResult carries one page of tabs plus the total row count.
type ListResult struct {
	Tabs   []TabView
	Total  int
	Limit  int
	Offset int
}

// TabView is the list representation of a stored tab (no content body).
type TabView struct {
	ID                 string     `json:"id"`
	URL                string     `json:"url"`
	Title              string     `json:"title"`
	FavIconURL         string     `json:"fav_icon_url,omitempty"`
	Summary            *string    `json:"summary"`
	SavedAt            time.Time  `json:"saved_at"`
	SummaryGeneratedAt *time.Time `json:"summary_generated_at"`
}
