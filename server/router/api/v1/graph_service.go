package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tanglenotes/tangle/internal/observability"
	"github.com/tanglenotes/tangle/store"
)

// GetGraph returns the full note graph over permanent notes.
// GET /api/v1/graph
func (s *APIV1Service) GetGraph(c echo.Context) error {
	ctx := c.Request().Context()
	rc := observability.FromContext(ctx)

	status := store.Permanent
	notes, err := s.Store.ListNotes(ctx, &store.FindNote{
		Status:           &status,
		ExcludeEmbedding: true,
	})
	if err != nil {
		rc.Error("failed to list notes for graph", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load notes"})
	}

	g, err := s.GraphBuilder.Build(ctx, notes)
	if err != nil {
		rc.Error("failed to build graph", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to build graph"})
	}

	rc.Info("graph built",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"duration_ms", rc.DurationMs())
	return c.JSON(http.StatusOK, g)
}
