// Package v1 exposes the graph, health, and search services over REST.
package v1

import (
	"golang.org/x/sync/semaphore"

	"github.com/labstack/echo/v4"

	"github.com/tanglenotes/tangle/internal/profile"
	"github.com/tanglenotes/tangle/plugin/embedding"
	"github.com/tanglenotes/tangle/server/service/graph"
	"github.com/tanglenotes/tangle/server/service/health"
	"github.com/tanglenotes/tangle/server/service/search"
	"github.com/tanglenotes/tangle/store"
)

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store

	GraphBuilder   *graph.Builder
	HealthAnalyzer *health.Analyzer
	Searcher       *search.HybridSearcher

	// overviewSemaphore caps concurrent overview builds; the full-graph
	// rebuild is the most expensive request the server handles.
	overviewSemaphore *semaphore.Weighted
}

func NewAPIV1Service(profile *profile.Profile, s *store.Store) *APIV1Service {
	embedder := embedding.NewService(embedding.Config{
		APIKey:  profile.EmbeddingAPIKey,
		BaseURL: profile.EmbeddingBaseURL,
		Model:   profile.EmbeddingModel,
	})

	graphConfig := graph.Config{
		SemanticThreshold:    profile.SemanticThreshold,
		MaxSemanticNeighbors: 5,
		TopClusterCount:      profile.TopClusterCount,
	}
	healthConfig := health.Config{
		OrphanWindowDays:        profile.OrphanWindowDays,
		TopClusterCount:         profile.TopClusterCount,
		SemanticThreshold:       profile.SemanticThreshold,
		SuggestionMinSimilarity: profile.MinSimilarity,
	}
	searchConfig := search.Config{
		FullTextWeight: profile.FullTextWeight,
		SemanticWeight: profile.SemanticWeight,
		MinSimilarity:  profile.MinSimilarity,
		MinHybridScore: profile.MinHybridScore,
		ChannelLimit:   20,
	}

	return &APIV1Service{
		Profile:           profile,
		Store:             s,
		GraphBuilder:      graph.NewBuilder(s, graphConfig),
		HealthAnalyzer:    health.NewAnalyzer(s, healthConfig),
		Searcher:          search.NewHybridSearcher(s, embedder, searchConfig),
		overviewSemaphore: semaphore.NewWeighted(2),
	}
}

// RegisterRoutes mounts the v1 API on the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	apiV1 := echoServer.Group("/api/v1")

	apiV1.GET("/health/overview", s.GetHealthOverview)
	apiV1.GET("/health/suggestions", s.GetConnectionSuggestions)
	apiV1.POST("/health/links", s.InsertWikilink)

	apiV1.GET("/graph", s.GetGraph)
	apiV1.GET("/search", s.Search)

	apiV1.GET("/notes/:id", s.GetNote)
	apiV1.GET("/notes/:id/versions", s.ListNoteVersions)
}
