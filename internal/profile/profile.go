package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where tangle stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// Graph tuning. All of these are overridable via flags or TANGLE_* env.

	// SemanticThreshold is the minimum similarity for a semantic edge.
	SemanticThreshold float64 // TANGLE_SEMANTIC_THRESHOLD (default: 0.7)
	// OrphanWindowDays is the rolling window for orphan detection.
	OrphanWindowDays int // TANGLE_ORPHAN_WINDOW_DAYS (default: 30)
	// TopClusterCount is how many clusters the overview reports.
	TopClusterCount int // TANGLE_TOP_CLUSTER_COUNT (default: 5)

	// Hybrid search tuning.
	FullTextWeight float64 // TANGLE_FULLTEXT_WEIGHT (default: 0.6)
	SemanticWeight float64 // TANGLE_SEMANTIC_WEIGHT (default: 0.4)
	MinSimilarity  float64 // TANGLE_MIN_SIMILARITY (default: 0.55)
	MinHybridScore float64 // TANGLE_MIN_HYBRID_SCORE (default: 0.1)

	// Embedding collaborator (query vectors for hybrid search).
	EmbeddingAPIKey  string // TANGLE_EMBEDDING_API_KEY
	EmbeddingBaseURL string // TANGLE_EMBEDDING_BASE_URL (default: https://api.openai.com/v1)
	EmbeddingModel   string // TANGLE_EMBEDDING_MODEL (default: text-embedding-3-small)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsEmbeddingEnabled returns true if a query-embedding backend is configured.
// The base URL alone does not count; it carries a default.
func (p *Profile) IsEmbeddingEnabled() bool {
	return p.EmbeddingAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloatEnvOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// FromEnv loads tuning configuration from TANGLE_* environment variables.
func (p *Profile) FromEnv() {
	p.SemanticThreshold = getFloatEnvOrDefault("TANGLE_SEMANTIC_THRESHOLD", 0.7)
	p.OrphanWindowDays = getIntEnvOrDefault("TANGLE_ORPHAN_WINDOW_DAYS", 30)
	p.TopClusterCount = getIntEnvOrDefault("TANGLE_TOP_CLUSTER_COUNT", 5)

	p.FullTextWeight = getFloatEnvOrDefault("TANGLE_FULLTEXT_WEIGHT", 0.6)
	p.SemanticWeight = getFloatEnvOrDefault("TANGLE_SEMANTIC_WEIGHT", 0.4)
	p.MinSimilarity = getFloatEnvOrDefault("TANGLE_MIN_SIMILARITY", 0.55)
	p.MinHybridScore = getFloatEnvOrDefault("TANGLE_MIN_HYBRID_SCORE", 0.1)

	p.EmbeddingAPIKey = os.Getenv("TANGLE_EMBEDDING_API_KEY")
	p.EmbeddingBaseURL = getEnvOrDefault("TANGLE_EMBEDDING_BASE_URL", "https://api.openai.com/v1")
	p.EmbeddingModel = getEnvOrDefault("TANGLE_EMBEDDING_MODEL", "text-embedding-3-small")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", p.Driver)
	}

	if p.OrphanWindowDays <= 0 {
		p.OrphanWindowDays = 30
	}
	if p.TopClusterCount <= 0 {
		p.TopClusterCount = 5
	}
	if p.SemanticThreshold <= 0 || p.SemanticThreshold > 1 {
		p.SemanticThreshold = 0.7
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("tangle_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	return nil
}
