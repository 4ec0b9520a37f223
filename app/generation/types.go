package generation

import (
	"context"
	"time"
)

// TabInput carries the fields of one captured page for summarization.
type TabInput struct {
	Title       string
	URL         string
	Content     string
	Description string
}

// DigestTab is one tab entry embedded in the digest prompt. An empty
// Summary renders as the "No summary available" placeholder.
type DigestTab struct {
	Title   string
	URL     string
	SavedAt time.Time
	Summary string
}

// Client wraps the external text-generation API. Both operations are
// pure request/response: no caching, no retry, errors propagate to the
// caller unchanged.
type Client interface {
	SummarizeTab(ctx context.Context, tab TabInput) (string, error)
	GenerateDigest(ctx context.Context, tabs []DigestTab, start, end time.Time) (string, error)
}
