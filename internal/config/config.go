// Package config loads application configuration from file and environment
// and owns process-wide logger setup.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Brave    BraveConfig    `yaml:"brave" mapstructure:"brave"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Scoring  ScoringConfig  `yaml:"scoring" mapstructure:"scoring"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// BraveConfig holds Brave Search API settings.
type BraveConfig struct {
	Key             string `yaml:"key" mapstructure:"key"`
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	ResultsPerQuery int    `yaml:"results_per_query" mapstructure:"results_per_query"`
	SearchLang      string `yaml:"search_lang" mapstructure:"search_lang"`
	Country         string `yaml:"country" mapstructure:"country"`
}

// SearchConfig configures query generation, rate limiting, and retry for
// outbound search calls. The rate and in-flight ceilings are global across
// all companies in a run.
type SearchConfig struct {
	QueryTemplates    []string `yaml:"query_templates" mapstructure:"query_templates"`
	RequestsPerSecond float64  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	SafetyMargin      float64  `yaml:"safety_margin" mapstructure:"safety_margin"`
	MaxInFlight       int      `yaml:"max_in_flight" mapstructure:"max_in_flight"`
	MaxAttempts       int      `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffInitialMS  int      `yaml:"backoff_initial_ms" mapstructure:"backoff_initial_ms"`
	BackoffMaxMS      int      `yaml:"backoff_max_ms" mapstructure:"backoff_max_ms"`
	BackoffMultiplier float64  `yaml:"backoff_multiplier" mapstructure:"backoff_multiplier"`
	TimeoutSecs       int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// RetryBackoff returns the initial and maximum backoff as durations.
func (s SearchConfig) RetryBackoff() (time.Duration, time.Duration) {
	return time.Duration(s.BackoffInitialMS) * time.Millisecond,
		time.Duration(s.BackoffMaxMS) * time.Millisecond
}

// EffectiveRate returns the request rate after applying the safety margin.
func (s SearchConfig) EffectiveRate() float64 {
	margin := s.SafetyMargin
	if margin < 1 {
		margin = 1
	}
	return s.RequestsPerSecond / margin
}

// FetchConfig configures candidate page fetching.
type FetchConfig struct {
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxBodyKB    int    `yaml:"max_body_kb" mapstructure:"max_body_kb"`
	MaxRedirects int    `yaml:"max_redirects" mapstructure:"max_redirects"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
}

// Weights holds the scoring component weights. Bonuses are positive,
// penalties negative.
type Weights struct {
	TopPageBonus           int `yaml:"top_page_bonus" mapstructure:"top_page_bonus"`
	DomainExactMatch       int `yaml:"domain_exact_match" mapstructure:"domain_exact_match"`
	DomainSimilarMatch     int `yaml:"domain_similar_match" mapstructure:"domain_similar_match"`
	TLDCoJP                int `yaml:"tld_co_jp" mapstructure:"tld_co_jp"`
	TLDComNet              int `yaml:"tld_com_net" mapstructure:"tld_com_net"`
	OfficialKeywordBonus   int `yaml:"official_keyword_bonus" mapstructure:"official_keyword_bonus"`
	SearchRankBonus        int `yaml:"search_rank_bonus" mapstructure:"search_rank_bonus"`
	PathDepthPenaltyFactor int `yaml:"path_depth_penalty_factor" mapstructure:"path_depth_penalty_factor"`
	PathDepthPenaltyFloor  int `yaml:"path_depth_penalty_floor" mapstructure:"path_depth_penalty_floor"`
	DomainJPPenalty        int `yaml:"domain_jp_penalty" mapstructure:"domain_jp_penalty"`
	PathKeywordPenalty     int `yaml:"path_keyword_penalty" mapstructure:"path_keyword_penalty"`
}

// Thresholds holds the decision thresholds. A best score at or above
// AutoAdopt auto-adopts; at or above NeedsReview it is flagged for review;
// below that it falls to manual review.
type Thresholds struct {
	AutoAdopt   int `yaml:"auto_adopt" mapstructure:"auto_adopt"`
	NeedsReview int `yaml:"needs_review" mapstructure:"needs_review"`
}

// ScoringConfig configures the candidate scorer and decision engine.
type ScoringConfig struct {
	Weights             Weights    `yaml:"weights" mapstructure:"weights"`
	Thresholds          Thresholds `yaml:"thresholds" mapstructure:"thresholds"`
	SimilarityThreshold int        `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	RejectFloor         int        `yaml:"reject_floor" mapstructure:"reject_floor"`
	BlacklistFile       string     `yaml:"blacklist_file" mapstructure:"blacklist_file"`
	IndexFiles          []string   `yaml:"index_files" mapstructure:"index_files"`
}

// PipelineConfig bounds across-company concurrency.
type PipelineConfig struct {
	MaxConcurrentCompanies int `yaml:"max_concurrent_companies" mapstructure:"max_concurrent_companies"`
}

// StoreConfig configures the decision sink backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HPFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "hpfinder.db")
	v.SetDefault("brave.base_url", "https://api.search.brave.com/res/v1/web/search")
	v.SetDefault("brave.results_per_query", 10)
	v.SetDefault("brave.search_lang", "ja")
	v.SetDefault("brave.country", "JP")
	v.SetDefault("search.query_templates", []string{
		"{name} {industry} {region}",
		`"{name}" {region} 公式サイト`,
		`"{name}" {industry} 公式 site:co.jp OR site:com`,
	})
	v.SetDefault("search.requests_per_second", 1.0)
	v.SetDefault("search.safety_margin", 1.2)
	v.SetDefault("search.max_in_flight", 10)
	v.SetDefault("search.max_attempts", 3)
	v.SetDefault("search.backoff_initial_ms", 1000)
	v.SetDefault("search.backoff_max_ms", 10000)
	v.SetDefault("search.backoff_multiplier", 2.0)
	v.SetDefault("search.timeout_secs", 30)
	v.SetDefault("fetch.timeout_secs", 10)
	v.SetDefault("fetch.max_body_kb", 512)
	v.SetDefault("fetch.max_redirects", 10)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; HPFinderBot/1.0)")
	v.SetDefault("scoring.weights.top_page_bonus", 5)
	v.SetDefault("scoring.weights.domain_exact_match", 5)
	v.SetDefault("scoring.weights.domain_similar_match", 3)
	v.SetDefault("scoring.weights.tld_co_jp", 3)
	v.SetDefault("scoring.weights.tld_com_net", 1)
	v.SetDefault("scoring.weights.official_keyword_bonus", 2)
	v.SetDefault("scoring.weights.search_rank_bonus", 3)
	v.SetDefault("scoring.weights.path_depth_penalty_factor", -10)
	v.SetDefault("scoring.weights.path_depth_penalty_floor", -20)
	v.SetDefault("scoring.weights.domain_jp_penalty", -2)
	v.SetDefault("scoring.weights.path_keyword_penalty", -2)
	v.SetDefault("scoring.thresholds.auto_adopt", 9)
	v.SetDefault("scoring.thresholds.needs_review", 6)
	v.SetDefault("scoring.similarity_threshold", 80)
	v.SetDefault("scoring.reject_floor", -100)
	v.SetDefault("scoring.blacklist_file", "blacklist.yaml")
	v.SetDefault("scoring.index_files", []string{
		"index.html", "index.htm", "index.php", "index.asp", "index.aspx",
		"default.html", "default.htm", "default.asp", "default.aspx",
		"home.html", "home.htm",
	})
	v.SetDefault("pipeline.max_concurrent_companies", 10)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks configuration consistency. Any error here is fatal at
// startup, before the first company is processed.
func (c *Config) Validate() error {
	if c.Scoring.Thresholds.AutoAdopt < c.Scoring.Thresholds.NeedsReview {
		return eris.Errorf("config: auto_adopt threshold (%d) below needs_review threshold (%d)",
			c.Scoring.Thresholds.AutoAdopt, c.Scoring.Thresholds.NeedsReview)
	}
	if c.Scoring.SimilarityThreshold < 0 || c.Scoring.SimilarityThreshold > 100 {
		return eris.Errorf("config: similarity_threshold %d outside [0,100]", c.Scoring.SimilarityThreshold)
	}
	if c.Scoring.Weights.PathDepthPenaltyFactor > 0 {
		return eris.New("config: path_depth_penalty_factor must be zero or negative")
	}
	if c.Scoring.Weights.PathKeywordPenalty > 0 {
		return eris.New("config: path_keyword_penalty must be zero or negative")
	}
	if c.Scoring.RejectFloor >= c.Scoring.Thresholds.NeedsReview {
		return eris.Errorf("config: reject_floor %d must sit below the needs_review threshold", c.Scoring.RejectFloor)
	}
	if c.Search.RequestsPerSecond <= 0 {
		return eris.New("config: requests_per_second must be positive")
	}
	if c.Search.MaxInFlight <= 0 {
		return eris.New("config: max_in_flight must be positive")
	}
	if c.Pipeline.MaxConcurrentCompanies <= 0 {
		return eris.New("config: max_concurrent_companies must be positive")
	}
	if len(c.Search.QueryTemplates) == 0 {
		return eris.New("config: at least one query template is required")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
