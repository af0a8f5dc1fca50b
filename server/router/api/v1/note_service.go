package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tanglenotes/tangle/internal/observability"
	"github.com/tanglenotes/tangle/store"
)

// NoteResponse is the note payload; embeddings never leave the server.
type NoteResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Status      string `json:"status"`
	EmbedStatus string `json:"embed_status"`
	CreatedTs   int64  `json:"created_ts"`
	UpdatedTs   int64  `json:"updated_ts"`
}

// GetNote returns a single note by id.
// GET /api/v1/notes/:id
func (s *APIV1Service) GetNote(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	note, err := s.Store.GetNote(ctx, &store.FindNote{ID: &id, ExcludeEmbedding: true})
	if err != nil {
		observability.FromContext(ctx).Error("failed to get note", "note_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load note"})
	}
	if note == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "note not found"})
	}

	return c.JSON(http.StatusOK, NoteResponse{
		ID:          note.ID,
		Title:       note.Title,
		Content:     note.Content,
		Status:      string(note.Status),
		EmbedStatus: string(note.EmbedStatus),
		CreatedTs:   note.CreatedTs,
		UpdatedTs:   note.UpdatedTs,
	})
}

// NoteVersionResponse is one audit-trail snapshot.
type NoteVersionResponse struct {
	ID        int32  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedTs int64  `json:"created_ts"`
}

// ListNoteVersions returns a note's version history, newest first.
// GET /api/v1/notes/:id/versions?limit=<n>
func (s *APIV1Service) ListNoteVersions(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	find := &store.FindNoteVersion{NoteID: &id}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		}
		find.Limit = &limit
	}

	versions, err := s.Store.ListNoteVersions(ctx, find)
	if err != nil {
		observability.FromContext(ctx).Error("failed to list note versions", "note_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load versions"})
	}

	response := make([]NoteVersionResponse, 0, len(versions))
	for _, v := range versions {
		response = append(response, NoteVersionResponse{
			ID:        v.ID,
			Title:     v.Title,
			Content:   v.Content,
			CreatedTs: v.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"versions": response})
}
