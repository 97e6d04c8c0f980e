package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/ticker-crosswalk/internal/store"
	"github.com/sells-group/ticker-crosswalk/pkg/finnhub"
)

// Config holds the full application configuration.
type Config struct {
	Matcher  MatcherConfig  `yaml:"matcher" mapstructure:"matcher"`
	Store    store.Config   `yaml:"store" mapstructure:"store"`
	Feed     finnhub.Config `yaml:"feed" mapstructure:"feed"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// MatcherConfig tunes matching thresholds and domain knowledge.
type MatcherConfig struct {
	AutoMatchThreshold  float64           `yaml:"auto_match_threshold" mapstructure:"auto_match_threshold"`
	MinPromptConfidence float64           `yaml:"min_prompt_confidence" mapstructure:"min_prompt_confidence"`
	TopN                int               `yaml:"top_n" mapstructure:"top_n"`
	AcronymExpansions   map[string]string `yaml:"acronym_expansions" mapstructure:"acronym_expansions"`
	HardNegativePairs   [][2]string       `yaml:"hard_negative_pairs" mapstructure:"hard_negative_pairs"`
}

// RegistryConfig locates the canonical entity registry.
type RegistryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
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
	v.SetEnvPrefix("CROSSWALK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("matcher.auto_match_threshold", 90.0)
	v.SetDefault("matcher.min_prompt_confidence", 70.0)
	v.SetDefault("matcher.top_n", 5)
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.mappings_path", "ticker_mappings.json")
	v.SetDefault("store.audit_log_path", "ticker_match_log.csv")
	v.SetDefault("store.sqlite_path", "crosswalk.db")
	v.SetDefault("feed.base_url", finnhub.DefaultBaseURL)
	v.SetDefault("feed.exchange", "US")
	v.SetDefault("feed.timeout_secs", 30)
	v.SetDefault("feed.rate_limit", 10)
	v.SetDefault("feed.skip_symbol_types", []string{"index", "idx"})
	v.SetDefault("registry.path", "registry.json")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects thresholds outside the 0-100 score scale and inverted
// threshold pairs.
func (c *Config) Validate() error {
	m := c.Matcher
	if m.AutoMatchThreshold < 0 || m.AutoMatchThreshold > 100 {
		return eris.Errorf("config: auto_match_threshold %.1f outside [0,100]", m.AutoMatchThreshold)
	}
	if m.MinPromptConfidence < 0 || m.MinPromptConfidence > 100 {
		return eris.Errorf("config: min_prompt_confidence %.1f outside [0,100]", m.MinPromptConfidence)
	}
	if m.MinPromptConfidence > m.AutoMatchThreshold {
		return eris.Errorf("config: min_prompt_confidence %.1f above auto_match_threshold %.1f",
			m.MinPromptConfidence, m.AutoMatchThreshold)
	}
	if m.TopN < 1 {
		return eris.Errorf("config: top_n %d must be positive", m.TopN)
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
