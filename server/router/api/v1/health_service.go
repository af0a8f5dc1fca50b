package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tanglenotes/tangle/internal/observability"
)

// GetHealthOverview returns the knowledge-base scorecard.
// GET /api/v1/health/overview
func (s *APIV1Service) GetHealthOverview(c echo.Context) error {
	ctx := c.Request().Context()
	rc := observability.FromContext(ctx)

	if err := s.overviewSemaphore.Acquire(ctx, 1); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "server busy"})
	}
	defer s.overviewSemaphore.Release(1)

	overview, err := s.HealthAnalyzer.GetOverview(ctx)
	if err != nil {
		rc.Error("failed to compute health overview", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to compute overview"})
	}

	rc.Info("health overview computed",
		"total_notes", overview.Scorecard.TotalNotes,
		"orphans", overview.Scorecard.OrphanCount,
		"duration_ms", rc.DurationMs())
	return c.JSON(http.StatusOK, overview)
}

// GetConnectionSuggestions returns similar notes for a given note.
// GET /api/v1/health/suggestions?note=<id>&limit=<n>
func (s *APIV1Service) GetConnectionSuggestions(c echo.Context) error {
	noteID := c.QueryParam("note")
	if noteID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "note query parameter is required"})
	}

	limit := 5
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		}
		limit = parsed
	}

	// Suggestions degrade to empty rather than erroring; an unknown note
	// and a backendless deployment look the same to the client.
	suggestions := s.HealthAnalyzer.GetConnectionSuggestions(c.Request().Context(), noteID, limit)
	return c.JSON(http.StatusOK, map[string]any{"suggestions": suggestions})
}

// InsertWikilinkRequest is the body of POST /api/v1/health/links.
type InsertWikilinkRequest struct {
	OrphanID string `json:"orphan_id"`
	TargetID string `json:"target_id"`
}

// InsertWikilink appends a [[Title]] reference to an orphan note.
// POST /api/v1/health/links
func (s *APIV1Service) InsertWikilink(c echo.Context) error {
	var request InsertWikilinkRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}
	if request.OrphanID == "" || request.TargetID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "orphan_id and target_id are required"})
	}

	ctx := c.Request().Context()
	updated, err := s.HealthAnalyzer.InsertWikilink(ctx, request.OrphanID, request.TargetID)
	if err != nil {
		observability.FromContext(ctx).Error("failed to insert wikilink",
			"orphan_id", request.OrphanID, "target_id", request.TargetID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to insert link"})
	}
	if updated == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "note not found"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"id":           updated.ID,
		"content":      updated.Content,
		"embed_status": updated.EmbedStatus,
		"updated_ts":   updated.UpdatedTs,
	})
}
