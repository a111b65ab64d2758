package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Postgres is only needed by publish/serve/health; other commands run
	// entirely on local files.
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	DBMinConns  int32  `envconfig:"SW_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"SW_DB_MAX_CONNS" default:"8"`

	HTTPAddr           string `envconfig:"SW_HTTP_ADDR" default:":8080"`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY" default:""`
	ExtractModel string `envconfig:"SW_EXTRACT_MODEL" default:"gemini-2.5-flash"`
	ReviewModel  string `envconfig:"SW_REVIEW_MODEL" default:"gemini-2.5-pro"`

	BatchSize     int `envconfig:"SW_BATCH_SIZE" default:"25"`
	MaxConcurrent int `envconfig:"SW_MAX_CONCURRENT" default:"4"`

	// Clustering thresholds. The defaults are tuned on labeled January 2026
	// data; they are deployment configuration, not constants.
	SimilarityThreshold float64 `envconfig:"SW_SIMILARITY_THRESHOLD" default:"0.7"`
	TokenPrefixLen      int     `envconfig:"SW_TOKEN_PREFIX_LEN" default:"5"`
	MinTokenLen         int     `envconfig:"SW_MIN_TOKEN_LEN" default:"3"`
	DateWindowDays      int     `envconfig:"SW_DATE_WINDOW_DAYS" default:"2"`
	CoordRadiusKM       float64 `envconfig:"SW_COORD_RADIUS_KM" default:"30"`
	MinCitySubstrLen    int     `envconfig:"SW_MIN_CITY_SUBSTR_LEN" default:"6"`

	DataDir      string `envconfig:"SW_DATA_DIR" default:"data"`
	RawDir       string `envconfig:"SW_RAW_DIR" default:"data/raw"`
	ExtractedDir string `envconfig:"SW_EXTRACTED_DIR" default:"data/extracted"`
	OutputCSV    string `envconfig:"SW_OUTPUT_CSV" default:"data/strikes.csv"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SW_SIMILARITY_THRESHOLD must be in (0, 1]")
	}
	if c.TokenPrefixLen < 1 {
		return fmt.Errorf("SW_TOKEN_PREFIX_LEN must be >= 1")
	}
	if c.MinTokenLen < 1 {
		return fmt.Errorf("SW_MIN_TOKEN_LEN must be >= 1")
	}
	if c.DateWindowDays < 0 {
		return fmt.Errorf("SW_DATE_WINDOW_DAYS must be >= 0")
	}
	if c.CoordRadiusKM <= 0 {
		return fmt.Errorf("SW_COORD_RADIUS_KM must be > 0")
	}
	if c.MinCitySubstrLen < 1 {
		return fmt.Errorf("SW_MIN_CITY_SUBSTR_LEN must be >= 1")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("SW_BATCH_SIZE must be >= 1")
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("SW_MAX_CONCURRENT must be >= 1")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("SW_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("SW_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("SW_DB_MIN_CONNS (%d) cannot exceed SW_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("SW_HTTP_ADDR is required")
	}
	return nil
}

// RequireDatabase guards the commands that talk to Postgres.
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required for this command")
	}
	return nil
}

// RequireGemini guards the commands that call the LLM.
func (c *Config) RequireGemini() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return fmt.Errorf("GEMINI_API_KEY is required for this command")
	}
	return nil
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
