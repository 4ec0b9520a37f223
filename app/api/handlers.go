package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tabmemory/tabmemory/app/apperrors"
	"github.com/tabmemory/tabmemory/app/database"
)

const (
	defaultListLimit = 50
)

func NewHandler(tabService TabServiceInterface, digestService DigestServiceInterface) *Handler {
	return &Handler{
		tabService:    tabService,
		digestService: digestService,
	}
}

// SaveTabs handles POST /tabs. The response is sent as soon as every
// tab row is written; summaries land later via detached tasks.
func (h *Handler) SaveTabs(c *gin.Context) {
	var req saveTabsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Tabs == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tabs data"})
		return
	}

	result, err := h.tabService.Save(*req.Tabs)
	if err != nil {
		slog.Error("Failed to save tabs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save tabs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   result.Count,
		"tabs":    result.Tabs,
	})
}

// ListTabs handles GET /tabs?limit&offset
func (h *Handler) ListTabs(c *gin.Context) {
	limit := parseIntQuery(c, "limit", defaultListLimit)
	offset := parseIntQuery(c, "offset", 0)

	result, err := h.tabService.List(limit, offset)
	if err != nil {
		slog.Error("Failed to list tabs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tabs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tabs":   result.Tabs,
		"total":  result.Total,
		"limit":  result.Limit,
		"offset": result.Offset,
	})
}

// GetTab handles GET /tabs/:id
func (h *Handler) GetTab(c *gin.Context) {
	tab, err := h.tabService.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch tab")
		return
	}

	c.JSON(http.StatusOK, tabToResponse(tab))
}

// DeleteTab handles DELETE /tabs/:id
func (h *Handler) DeleteTab(c *gin.Context) {
	if err := h.tabService.Delete(c.Param("id")); err != nil {
		h.respondError(c, err, "Failed to delete tab")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GenerateDigest handles POST /digests/generate
func (h *Handler) GenerateDigest(c *gin.Context) {
	var req generateDigestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
		return
	}

	digest, err := h.digestService.Generate(c.Request.Context(), start, end)
	if err != nil {
		h.respondError(c, err, "Failed to generate digest")
		return
	}

	c.JSON(http.StatusOK, digestToResponse(digest, true))
}

// ListDigests handles GET /digests
func (h *Handler) ListDigests(c *gin.Context) {
	digests, err := h.digestService.List()
	if err != nil {
		slog.Error("Failed to list digests", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch digests"})
		return
	}

	out := make([]digestResponse, 0, len(digests))
	for i := range digests {
		out = append(out, digestToResponse(&digests[i], false))
	}

	c.JSON(http.StatusOK, out)
}

// GetDigest handles GET /digests/:id
func (h *Handler) GetDigest(c *gin.Context) {
	digest, err := h.digestService.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch digest")
		return
	}

	c.JSON(http.StatusOK, digestToResponse(digest, true))
}

// DeleteDigest handles DELETE /digests/:id
func (h *Handler) DeleteDigest(c *gin.Context) {
	if err := h.digestService.Delete(c.Param("id")); err != nil {
		h.respondError(c, err, "Failed to delete digest")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetHealth handles GET /health
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	})
}

// respondError maps service errors to HTTP responses. Client errors
// carry their own message; anything internal is logged and replaced
// with a generic body so no detail leaks.
func (h *Handler) respondError(c *gin.Context, err error, internalMsg string) {
	appErr := apperrors.FromError(err)
	if appErr.Status < http.StatusInternalServerError {
		c.JSON(appErr.Status, gin.H{"error": appErr.Message})
		return
	}

	slog.Error(internalMsg, "code", string(appErr.Code), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": internalMsg})
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

// parseDate accepts RFC 3339 timestamps or bare dates; empty means
// "use the service default".
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func tabToResponse(tab *database.Tab) tabResponse {
	return tabResponse{
		ID:                 tab.ID,
		URL:                tab.URL,
		Title:              tab.Title,
		FavIconURL:         tab.FavIconURL,
		Content:            tab.Content,
		Description:        tab.Description,
		Summary:            tab.Summary,
		SummaryGeneratedAt: tab.SummaryGeneratedAt,
		SavedAt:            tab.SavedAt,
		CreatedAt:          tab.CreatedAt,
	}
}

func digestToResponse(digest *database.Digest, withContent bool) digestResponse {
	resp := digestResponse{
		ID:        digest.ID,
		StartDate: digest.StartDate,
		EndDate:   digest.EndDate,
		TabCount:  digest.TabCount,
		CreatedAt: digest.CreatedAt,
	}
	if withContent {
		resp.Content = digest.Content
	}
	return resp
}
