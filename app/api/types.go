package api

import (
	"context"
	"time"

	"github.com/tabmemory/tabmemory/app/database"
	"github.com/tabmemory/tabmemory/app/digests"
	"github.com/tabmemory/tabmemory/app/tabs"
)

type TabServiceInterface interface {
	Save(batch []tabs.CapturedTab) (*tabs.SaveResult, error)
	List(limit, offset int) (*tabs.ListResult, error)
	Get(id string) (*database.Tab, error)
	Delete(id string) error
}

var _ TabServiceInterface = (*tabs.Service)(nil)

type DigestServiceInterface interface {
	Generate(ctx context.Context, start, end *time.Time) (*database.Digest, error)
	List() ([]database.Digest, error)
	Get(id string) (*database.Digest, error)
	Delete(id string) error
}

var _ DigestServiceInterface = (*digests.Service)(nil)

type Handler struct {
	tabService    TabServiceInterface
	digestService DigestServiceInterface
}

// saveTabsRequest distinguishes a missing tabs field from an empty list;
// only the former is a validation error.
type saveTabsRequest struct {
	Tabs *[]tabs.CapturedTab `json:"tabs"`
}

type generateDigestRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type tabResponse struct {
	ID                 string     `json:"id"`
	URL                string     `json:"url"`
	Title              string     `json:"title"`
	FavIconURL         string     `json:"fav_icon_url,omitempty"`
	Content            string     `json:"content,omitempty"`
	Description        string     `json:"description,omitempty"`
	Summary            *string    `json:"summary"`
	SummaryGeneratedAt *time.Time `json:"summary_generated_at"`
	SavedAt            time.Time  `json:"saved_at"`
	CreatedAt          time.Time  `json:"created_at"`
}

type digestResponse struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Content   string    `json:"content,omitempty"`
	TabCount  int       `json:"tab_count"`
	CreatedAt time.Time `json:"created_at"`
}
