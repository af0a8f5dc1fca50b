package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tanglenotes/tangle/internal/observability"
)

// Search runs hybrid full-text + semantic retrieval.
// GET /api/v1/search?q=<query>
func (s *APIV1Service) Search(c echo.Context) error {
	ctx := c.Request().Context()
	query := c.QueryParam("q")

	results, err := s.Searcher.Search(ctx, query)
	if err != nil {
		observability.FromContext(ctx).Error("search failed", "query", query, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "search failed"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
	})
}
