package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tabmemory/tabmemory/app/apperrors"
	"github.com/tabmemory/tabmemory/app/database"
	"github.com/tabmemory/tabmemory/app/tabs"
)

type fakeTabService struct {
	saved      []tabs.CapturedTab
	saveErr    error
	listResult *tabs.ListResult
	gotLimit   int
	gotOffset  int
	tab        *database.Tab
	getErr     error
	deleteErr  error
}

func (f *fakeTabService) Save(batch []tabs.CapturedTab) (*tabs.SaveResult, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = batch
	saved := make([]tabs.SavedTab, 0, len(batch))
	for i, tab := range batch {
		saved = append(saved, tabs.SavedTab{ID: "id-" + string(rune('a'+i)), CapturedTab: tab})
	}
	return &tabs.SaveResult{Count: len(saved), Tabs: saved}, nil
}

func (f *fakeTabService) List(limit, offset int) (*tabs.ListResult, error) {
	f.gotLimit = limit
	f.gotOffset = offset
	if f.listResult != nil {
		return f.listResult, nil
	}
	return &tabs.ListResult{Tabs: []tabs.TabView{}, Limit: limit, Offset: offset}, nil
}

func (f *fakeTabService) Get(id string) (*database.Tab, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.tab, nil
}

func (f *fakeTabService) Delete(id string) error {
	return f.deleteErr
}

type fakeDigestService struct {
	digest      *database.Digest
	generateErr error
	digests     []database.Digest
	getErr      error
	deleteErr   error
	gotStart    *time.Time
	gotEnd      *time.Time
}

func (f *fakeDigestService) Generate(ctx context.Context, start, end *time.Time) (*database.Digest, error) {
	f.gotStart = start
	f.gotEnd = end
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return f.digest, nil
}

func (f *fakeDigestService) List() ([]database.Digest, error) {
	return f.digests, nil
}

func (f *fakeDigestService) Get(id string) (*database.Digest, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.digest, nil
}

func (f *fakeDigestService) Delete(id string) error {
	return f.deleteErr
}

func newTestServer(tabService TabServiceInterface, digestService DigestServiceInterface) http.Handler {
	return NewServer(NewHandler(tabService, digestService), "")
}

func doRequest(t *testing.T, server http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestSaveTabs(t *testing.T) {
	tabService := &fakeTabService{}
	server := newTestServer(tabService, &fakeDigestService{})

	w := doRequest(t, server, http.MethodPost, "/tabs",
		`{"tabs":[{"url":"https://example.com","title":"Example","content":{"text":"body","description":"d"}}]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["success"] != true {
		t.Error("Expected success true")
	}
	if resp["count"] != float64(1) {
		t.Errorf("Expected count 1, got %v", resp["count"])
	}
	if len(tabService.saved) != 1 || tabService.saved[0].URL != "https://example.com" {
		t.Error("Service should receive the submitted tabs")
	}
}

func TestSaveTabsValidation(t *testing.T) {
	server := newTestServer(&fakeTabService{}, &fakeDigestService{})

	cases := []struct {
		name string
		body string
	}{
		{"missing tabs field", `{}`},
		{"tabs not a list", `{"tabs":"nope"}`},
		{"tabs is an object", `{"tabs":{"url":"x"}}`},
		{"not json", `tabs`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, server, http.MethodPost, "/tabs", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", w.Code)
			}
		})
	}
}

func TestSaveTabsEmptyList(t *testing.T) {
	server := newTestServer(&fakeTabService{}, &fakeDigestService{})

	w := doRequest(t, server, http.MethodPost, "/tabs", `{"tabs":[]}`)
	if w.Code != http.StatusOK {
		t.Errorf("Empty list is valid input, expected 200, got %d", w.Code)
	}
}

func TestListTabsDefaults(t *testing.T) {
	tabService := &fakeTabService{}
	server := newTestServer(tabService, &fakeDigestService{})

	w := doRequest(t, server, http.MethodGet, "/tabs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if tabService.gotLimit != 50 || tabService.gotOffset != 0 {
		t.Errorf("Expected default limit 50 offset 0, got %d/%d", tabService.gotLimit, tabService.gotOffset)
	}

	w = doRequest(t, server, http.MethodGet, "/tabs?limit=10&offset=20", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if tabService.gotLimit != 10 || tabService.gotOffset != 20 {
		t.Errorf("Expected limit 10 offset 20, got %d/%d", tabService.gotLimit, tabService.gotOffset)
	}
}

func TestGetTabNotFound(t *testing.T) {
	tabService := &fakeTabService{getErr: apperrors.NewNotFound("Tab", "nope")}
	server := newTestServer(tabService, &fakeDigestService{})

	w := doRequest(t, server, http.MethodGet, "/tabs/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "error") {
		t.Error("Expected a JSON error body")
	}
}

func TestDeleteTabNotFound(t *testing.T) {
	tabService := &fakeTabService{deleteErr: apperrors.NewNotFound("Tab", "nope")}
	server := newTestServer(tabService, &fakeDigestService{})

	w := doRequest(t, server, http.MethodDelete, "/tabs/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestDeleteTab(t *testing.T) {
	server := newTestServer(&fakeTabService{}, &fakeDigestService{})

	w := doRequest(t, server, http.MethodDelete, "/tabs/some-id", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"success":true`) {
		t.Errorf("Expected success body, got %s", w.Body.String())
	}
}

func TestGenerateDigest(t *testing.T) {
	digestService := &fakeDigestService{digest: &database.Digest{
		ID:       "d1",
		Content:  "Your week.",
		TabCount: 3,
	}}
	server := newTestServer(&fakeTabService{}, digestService)

	w := doRequest(t, server, http.MethodPost, "/digests/generate",
		`{"startDate":"2024-01-01T00:00:00Z","endDate":"2024-01-06T00:00:00Z"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if digestService.gotStart == nil || digestService.gotEnd == nil {
		t.Fatal("Expected parsed dates passed to the service")
	}
	if digestService.gotStart.Format("2006-01-02") != "2024-01-01" {
		t.Errorf("Unexpected start date: %v", digestService.gotStart)
	}

	var resp digestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Content != "Your week." || resp.TabCount != 3 {
		t.Errorf("Unexpected digest response: %+v", resp)
	}
}

func TestGenerateDigestDefaultsDates(t *testing.T) {
	digestService := &fakeDigestService{digest: &database.Digest{ID: "d1"}}
	server := newTestServer(&fakeTabService{}, digestService)

	w := doRequest(t, server, http.MethodPost, "/digests/generate", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if digestService.gotStart != nil || digestService.gotEnd != nil {
		t.Error("Missing dates should pass through as nil for service defaults")
	}
}

func TestGenerateDigestBadDate(t *testing.T) {
	server := newTestServer(&fakeTabService{}, &fakeDigestService{})

	w := doRequest(t, server, http.MethodPost, "/digests/generate", `{"startDate":"yesterday"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a malformed date, got %d", w.Code)
	}
}

func TestGenerateDigestEmptyRange(t *testing.T) {
	digestService := &fakeDigestService{generateErr: apperrors.NewEmptyRange()}
	server := newTestServer(&fakeTabService{}, digestService)

	w := doRequest(t, server, http.MethodPost, "/digests/generate", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an empty range, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No tabs found") {
		t.Errorf("Expected empty-range message, got %s", w.Body.String())
	}
}

func TestGenerateDigestGenerationFailure(t *testing.T) {
	digestService := &fakeDigestService{
		generateErr: apperrors.NewGenerationFailed(context.DeadlineExceeded),
	}
	server := newTestServer(&fakeTabService{}, digestService)

	w := doRequest(t, server, http.MethodPost, "/digests/generate", `{}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
	// Internal detail must not leak to the client
	if strings.Contains(w.Body.String(), "deadline") {
		t.Errorf("Internal error detail leaked: %s", w.Body.String())
	}
}

func TestListDigestsOmitsContent(t *testing.T) {
	digestService := &fakeDigestService{digests: []database.Digest{
		{ID: "d1", Content: "full narrative text", TabCount: 2},
	}}
	server := newTestServer(&fakeTabService{}, digestService)

	w := doRequest(t, server, http.MethodGet, "/digests", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "full narrative text") {
		t.Error("Digest list should not include content bodies")
	}
}

func TestGetHealth(t *testing.T) {
	server := newTestServer(&fakeTabService{}, &fakeDigestService{})

	w := doRequest(t, server, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", resp["status"])
	}
	if _, err := time.Parse(time.RFC3339, resp["timestamp"]); err != nil {
		t.Errorf("Expected RFC3339 timestamp, got %q", resp["timestamp"])
	}
}
