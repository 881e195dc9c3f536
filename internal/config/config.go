package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Reference ReferenceConfig `yaml:"reference" mapstructure:"reference"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Evidence  EvidenceConfig  `yaml:"evidence" mapstructure:"evidence"`
	Admin     AdminConfig     `yaml:"admin" mapstructure:"admin"`
}

// StoreConfig configures the grade persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the grading API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ReferenceConfig locates the reference dataset and optional template overlay.
type ReferenceConfig struct {
	Path          string `yaml:"path" mapstructure:"path"`
	TemplatesPath string `yaml:"templates_path" mapstructure:"templates_path"`
}

// AdminConfig holds the shared-secret credential for override endpoints.
type AdminConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// EvidenceConfig configures the background evidence extraction collaborator.
type EvidenceConfig struct {
	TimeoutSecs        int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CacheTTLSecs       int      `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
	MaxSnippetsPerTerm int      `yaml:"max_snippets_per_term" mapstructure:"max_snippets_per_term"`
	RequestsPerSecond  float64  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Retries            int      `yaml:"retries" mapstructure:"retries"`
	MaxConcurrent      int      `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	TrustedDomains     []string `yaml:"trusted_domains" mapstructure:"trusted_domains"`
}

// SpeedTier maps an elapsed-minutes bound to a speed score.
type SpeedTier struct {
	MaxMinutes float64 `yaml:"max_minutes" mapstructure:"max_minutes"`
	Score      float64 `yaml:"score" mapstructure:"score"`
}

// ScoringConfig holds every tunable constant of the deterministic scoring
// engine. Immutable once loaded.
type ScoringConfig struct {
	NameSimilarityThreshold     float64 `yaml:"name_similarity_threshold" mapstructure:"name_similarity_threshold"`
	NamePartialThreshold        float64 `yaml:"name_partial_threshold" mapstructure:"name_partial_threshold"`
	CategorySimilarityThreshold float64 `yaml:"category_similarity_threshold" mapstructure:"category_similarity_threshold"`

	DateToleranceYears int `yaml:"date_tolerance_years" mapstructure:"date_tolerance_years"`

	NumericTolerancePercent        float64 `yaml:"numeric_tolerance_percent" mapstructure:"numeric_tolerance_percent"`
	NumericPartialTolerancePercent float64 `yaml:"numeric_partial_tolerance_percent" mapstructure:"numeric_partial_tolerance_percent"`
	PercentageTolerance            float64 `yaml:"percentage_tolerance" mapstructure:"percentage_tolerance"`
	PercentagePartialTolerance     float64 `yaml:"percentage_partial_tolerance" mapstructure:"percentage_partial_tolerance"`

	SpeedTiers []SpeedTier `yaml:"speed_tiers" mapstructure:"speed_tiers"`

	SourceCredibility map[string]float64 `yaml:"source_credibility" mapstructure:"source_credibility"`
	CompanyDomains    []string           `yaml:"company_domains" mapstructure:"company_domains"`

	ConfidenceThreshold        float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	SourceCredibilityThreshold float64 `yaml:"source_credibility_threshold" mapstructure:"source_credibility_threshold"`
	MaxMissingFields           int     `yaml:"max_missing_fields" mapstructure:"max_missing_fields"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("WARROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

	if err := ValidateScoring(cfg.Scoring); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "warroom.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("reference.path", "data/reference.json")

	v.SetDefault("evidence.timeout_secs", 30)
	v.SetDefault("evidence.cache_ttl_secs", 3600)
	v.SetDefault("evidence.max_snippets_per_term", 5)
	v.SetDefault("evidence.requests_per_second", 2.0)
	v.SetDefault("evidence.retries", 2)
	v.SetDefault("evidence.max_concurrent", 4)
	v.SetDefault("evidence.trusted_domains", []string{
		"ezzsteel.com", "linkedin.com", "crunchbase.com", "reuters.com",
		"bloomberg.com", "wsj.com", "ft.com", "sec.gov", "edgar.sec.gov",
	})

	v.SetDefault("scoring.name_similarity_threshold", 0.90)
	v.SetDefault("scoring.name_partial_threshold", 0.70)
	v.SetDefault("scoring.category_similarity_threshold", 0.85)
	v.SetDefault("scoring.date_tolerance_years", 1)
	v.SetDefault("scoring.numeric_tolerance_percent", 5.0)
	v.SetDefault("scoring.numeric_partial_tolerance_percent", 10.0)
	v.SetDefault("scoring.percentage_tolerance", 2.0)
	v.SetDefault("scoring.percentage_partial_tolerance", 5.0)
	v.SetDefault("scoring.speed_tiers", []map[string]any{
		{"max_minutes": 10, "score": 10.0},
		{"max_minutes": 20, "score": 8.0},
		{"max_minutes": 30, "score": 6.0},
		{"max_minutes": 40, "score": 4.0},
		{"max_minutes": 50, "score": 2.0},
		{"max_minutes": 60, "score": 1.0},
	})
	v.SetDefault("scoring.source_credibility", map[string]float64{
		"filings":           0.95,
		"company_domain":    0.90,
		"reuters_bloomberg": 0.85,
		"crunchbase":        0.80,
		"linkedin":          0.75,
		"blogs":             0.50,
		"social_media":      0.40,
		"unknown":           0.30,
	})
	v.SetDefault("scoring.company_domains", []string{"ezzsteel"})
	v.SetDefault("scoring.confidence_threshold", 0.75)
	v.SetDefault("scoring.source_credibility_threshold", 0.50)
	v.SetDefault("scoring.max_missing_fields", 2)
}

// DefaultScoring returns the scoring constants used when no config file or
// environment overrides are present.
func DefaultScoring() ScoringConfig {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err) // defaults always unmarshal
	}
	return cfg.Scoring
}

// ValidateScoring checks that a ScoringConfig is internally consistent.
func ValidateScoring(c ScoringConfig) error {
	var errs []string

	unit := map[string]float64{
		"name_similarity_threshold":     c.NameSimilarityThreshold,
		"name_partial_threshold":        c.NamePartialThreshold,
		"category_similarity_threshold": c.CategorySimilarityThreshold,
		"confidence_threshold":          c.ConfidenceThreshold,
		"source_credibility_threshold":  c.SourceCredibilityThreshold,
	}
	for name, val := range unit {
		if val < 0 || val > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in [0,1]", name))
		}
	}

	if c.NamePartialThreshold > c.NameSimilarityThreshold {
		errs = append(errs, "name_partial_threshold must not exceed name_similarity_threshold")
	}
	if c.DateToleranceYears < 0 {
		errs = append(errs, "date_tolerance_years must be >= 0")
	}
	if c.NumericTolerancePercent >= c.NumericPartialTolerancePercent {
		errs = append(errs, "numeric_tolerance_percent must be below numeric_partial_tolerance_percent")
	}
	if c.PercentageTolerance >= c.PercentagePartialTolerance {
		errs = append(errs, "percentage_tolerance must be below percentage_partial_tolerance")
	}
	if c.MaxMissingFields < 0 {
		errs = append(errs, "max_missing_fields must be >= 0")
	}

	if len(c.SpeedTiers) == 0 {
		errs = append(errs, "speed_tiers must not be empty")
	}
	for i := 1; i < len(c.SpeedTiers); i++ {
		if c.SpeedTiers[i].MaxMinutes <= c.SpeedTiers[i-1].MaxMinutes {
			errs = append(errs, "speed_tiers must be ordered by ascending max_minutes")
			break
		}
	}

	for class, score := range c.SourceCredibility {
		if score < 0 || score > 1 || math.IsNaN(score) {
			errs = append(errs, fmt.Sprintf("source_credibility[%s] must be in [0,1]", class))
		}
	}
	if _, ok := c.SourceCredibility["unknown"]; !ok && len(c.SourceCredibility) > 0 {
		errs = append(errs, "source_credibility must define an unknown class")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: scoring validation failed: %s", strings.Join(errs, "; "))
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
