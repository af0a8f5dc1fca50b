package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/tanglenotes/tangle/internal/profile"
	"github.com/tanglenotes/tangle/store"
	storetest "github.com/tanglenotes/tangle/store/test"
)

func newTestService(t *testing.T) (*APIV1Service, *storetest.FakeDriver, *echo.Echo) {
	t.Helper()
	driver := storetest.NewFakeDriver()
	testProfile := &profile.Profile{
		Mode:              "demo",
		Driver:            "fake",
		SemanticThreshold: 0.7,
		OrphanWindowDays:  30,
		TopClusterCount:   5,
		FullTextWeight:    0.6,
		SemanticWeight:    0.4,
		MinSimilarity:     0.55,
		MinHybridScore:    0.1,
	}
	service := NewAPIV1Service(testProfile, store.New(driver, testProfile))

	echoServer := echo.New()
	service.RegisterRoutes(echoServer)
	return service, driver, echoServer
}

func seedPermanent(t *testing.T, driver *storetest.FakeDriver, id, title, content string) {
	t.Helper()
	_, err := driver.CreateNote(context.Background(), &store.Note{
		ID:          id,
		Title:       title,
		Content:     content,
		Status:      store.Permanent,
		EmbedStatus: store.EmbedPending,
		CreatedTs:   time.Now().Unix(),
		UpdatedTs:   time.Now().Unix(),
	})
	require.NoError(t, err)
}

func doRequest(echoServer *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	echoServer.ServeHTTP(rec, req)
	return rec
}

func TestGetHealthOverviewEndpoint(t *testing.T) {
	_, driver, echoServer := newTestService(t)
	seedPermanent(t, driver, "a", "Alpha", "[[Beta]]")
	seedPermanent(t, driver, "b", "Beta", "")

	rec := doRequest(echoServer, http.MethodGet, "/api/v1/health/overview", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Scorecard struct {
			TotalNotes  int `json:"total_notes"`
			OrphanCount int `json:"orphan_count"`
		} `json:"scorecard"`
		RichestClusters []struct {
			HubID       string `json:"hub_id"`
			MemberCount int    `json:"member_count"`
		} `json:"richest_clusters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, 2, payload.Scorecard.TotalNotes)
	require.Equal(t, 0, payload.Scorecard.OrphanCount)
	require.Len(t, payload.RichestClusters, 1)
	require.Equal(t, 2, payload.RichestClusters[0].MemberCount)
}

func TestGetConnectionSuggestionsEndpoint(t *testing.T) {
	_, _, echoServer := newTestService(t)

	rec := doRequest(echoServer, http.MethodGet, "/api/v1/health/suggestions", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(echoServer, http.MethodGet, "/api/v1/health/suggestions?note=x&limit=abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// An unknown note degrades to an empty list, not an error.
	rec = doRequest(echoServer, http.MethodGet, "/api/v1/health/suggestions?note=missing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"suggestions":[]`)
}

func TestInsertWikilinkEndpoint(t *testing.T) {
	_, driver, echoServer := newTestService(t)
	seedPermanent(t, driver, "orphan", "Orphan", "alone")
	seedPermanent(t, driver, "target", "Target", "popular")

	rec := doRequest(echoServer, http.MethodPost, "/api/v1/health/links",
		`{"orphan_id": "orphan", "target_id": "target"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "[[Target]]")

	rec = doRequest(echoServer, http.MethodPost, "/api/v1/health/links",
		`{"orphan_id": "orphan", "target_id": "missing"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(echoServer, http.MethodPost, "/api/v1/health/links", `{"orphan_id": ""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetGraphEndpoint(t *testing.T) {
	_, driver, echoServer := newTestService(t)
	seedPermanent(t, driver, "a", "Alpha", "[[Beta]]")
	seedPermanent(t, driver, "b", "Beta", "")

	rec := doRequest(echoServer, http.MethodGet, "/api/v1/graph", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
		Edges []struct {
			Kind string `json:"kind"`
		} `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Nodes, 2)
	require.Len(t, payload.Edges, 1)
	require.Equal(t, "wikilink", payload.Edges[0].Kind)
}

func TestSearchEndpoint(t *testing.T) {
	_, driver, echoServer := newTestService(t)
	seedPermanent(t, driver, "a", "Gardening", "growing tomatoes")

	rec := doRequest(echoServer, http.MethodGet, "/api/v1/search?q=tomatoes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Gardening")

	rec = doRequest(echoServer, http.MethodGet, "/api/v1/search?q=", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"results":[]`)
}

func TestNoteEndpoints(t *testing.T) {
	service, driver, echoServer := newTestService(t)
	seedPermanent(t, driver, "n1", "Note One", "body")
	seedPermanent(t, driver, "n2", "Note Two", "other")

	rec := doRequest(echoServer, http.MethodGet, "/api/v1/notes/n1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Note One")

	rec = doRequest(echoServer, http.MethodGet, "/api/v1/notes/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Linking writes a version visible through the versions endpoint.
	_, err := service.HealthAnalyzer.InsertWikilink(context.Background(), "n1", "n2")
	require.NoError(t, err)

	rec = doRequest(echoServer, http.MethodGet, "/api/v1/notes/n1/versions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"content":"body"`)
}
