package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database struct {
		URL             string        `yaml:"url" default:"postgres://localhost:5432/jobtailor"`
		ConnectTimeout  time.Duration `yaml:"connect_timeout" default:"5s"`
		MaxConns        int           `yaml:"max_conns" default:"4"`
		MigrateOnStart  bool          `yaml:"migrate_on_start" default:"true"`
		ApplicationName string        `yaml:"application_name" default:"jobtailor"`
	} `yaml:"database"`

	LLM struct {
		Provider    string        `yaml:"provider" default:"claude"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model" default:"claude-3-haiku-20240307"`
		MaxTokens   int           `yaml:"max_tokens" default:"4096"`
		Temperature float32       `yaml:"temperature" default:"0.1"`
		Timeout     time.Duration `yaml:"timeout" default:"60s"`
		// RewriteEnabled toggles the optional bullet rewrite step during
		// generation; rewriting never blocks generation when it fails.
		RewriteEnabled     bool    `yaml:"rewrite_enabled" default:"true"`
		RewriteTemperature float32 `yaml:"rewrite_temperature" default:"0.3"`
	} `yaml:"llm"`

	Embeddings struct {
		APIKey    string        `yaml:"api_key"`
		Model     string        `yaml:"model" default:"text-embedding-004"`
		Dimension int           `yaml:"dimension" default:"768"`
		Timeout   time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"embeddings"`

	Matcher struct {
		TopN int `yaml:"top_n" default:"6"`
		// MinFitScore skips records whose extracted fit score falls below
		// the threshold; 0 disables the filter.
		MinFitScore float64 `yaml:"min_fit_score" default:"0"`
	} `yaml:"matcher"`

	Generator struct {
		OutputDir   string        `yaml:"output_dir" default:"output"`
		CompileCmd  string        `yaml:"compile_cmd" default:"tectonic"`
		RendererURL string        `yaml:"renderer_url"`
		Timeout     time.Duration `yaml:"timeout" default:"60s"`
		Theme       string        `yaml:"theme" default:"default"`
	} `yaml:"generator"`

	Ingest struct {
		Feeds []FeedConfig `yaml:"feeds"`
	} `yaml:"ingest"`

	Workers struct {
		PoolSize  int `yaml:"pool_size" default:"4"`
		RateLimit int `yaml:"rate_limit" default:"30"` // collaborator calls per minute
	} `yaml:"workers"`

	Redis struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout" default:"5s"`
		TTL     time.Duration `yaml:"ttl" default:"720h"`
	} `yaml:"redis"`

	Profile struct {
		Path string `yaml:"path" default:"profile.yaml"`
	} `yaml:"profile"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
	} `yaml:"logging"`
}

// FeedConfig describes one HTTP JSON feed ingestion source.
type FeedConfig struct {
	Name     string            `yaml:"name"`
	BaseURL  string            `yaml:"base_url"`
	Params   map[string]string `yaml:"params"`
	Keywords []string          `yaml:"keywords"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Database.URL = "postgres://localhost:5432/jobtailor"
	config.Database.ConnectTimeout = 5 * time.Second
	config.Database.MaxConns = 4
	config.Database.MigrateOnStart = true
	config.Database.ApplicationName = "jobtailor"

	config.LLM.Provider = "claude"
	config.LLM.Model = "claude-3-haiku-20240307"
	config.LLM.MaxTokens = 4096
	config.LLM.Temperature = 0.1
	config.LLM.Timeout = 60 * time.Second
	config.LLM.RewriteEnabled = true
	config.LLM.RewriteTemperature = 0.3

	config.Embeddings.Model = "text-embedding-004"
	config.Embeddings.Dimension = 768
	config.Embeddings.Timeout = 30 * time.Second

	config.Matcher.TopN = 6

	config.Generator.OutputDir = "output"
	config.Generator.CompileCmd = "tectonic"
	config.Generator.Timeout = 60 * time.Second
	config.Generator.Theme = "default"

	config.Workers.PoolSize = 4
	config.Workers.RateLimit = 30

	config.Redis.Timeout = 5 * time.Second
	config.Redis.TTL = 30 * 24 * time.Hour

	config.Profile.Path = "profile.yaml"

	config.Logging.Level = "info"
	config.Logging.Format = "console"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, config.validate()
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		c.Database.URL = dbURL
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if apiKey := os.Getenv("EMBEDDINGS_API_KEY"); apiKey != "" {
		c.Embeddings.APIKey = apiKey
	}

	// The embeddings backend is the Gemini API; accept its conventional
	// variable as a fallback.
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" && c.Embeddings.APIKey == "" {
		c.Embeddings.APIKey = apiKey
	}

	if model := os.Getenv("EMBEDDINGS_MODEL"); model != "" {
		c.Embeddings.Model = model
	}

	if topN := os.Getenv("MATCHER_TOP_N"); topN != "" {
		if n, err := strconv.Atoi(topN); err == nil && n > 0 {
			c.Matcher.TopN = n
		}
	}

	if minFit := os.Getenv("MATCHER_MIN_FIT_SCORE"); minFit != "" {
		if f, err := strconv.ParseFloat(minFit, 64); err == nil {
			c.Matcher.MinFitScore = f
		}
	}

	if outputDir := os.Getenv("OUTPUT_DIR"); outputDir != "" {
		c.Generator.OutputDir = outputDir
	}

	if rendererURL := os.Getenv("PDF_RENDERER_URL"); rendererURL != "" {
		c.Generator.RendererURL = rendererURL
	}

	if compileCmd := os.Getenv("COMPILE_CMD"); compileCmd != "" {
		c.Generator.CompileCmd = compileCmd
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if profilePath := os.Getenv("PROFILE_PATH"); profilePath != "" {
		c.Profile.Path = profilePath
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}
}

// validate rejects configurations the pipeline cannot run with. Collaborator
// API keys are checked lazily by the stages that need them, so a partial run
// (e.g. ingest only) works without them.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.Matcher.TopN <= 0 {
		return fmt.Errorf("matcher.top_n must be positive, got %d", c.Matcher.TopN)
	}
	if c.Matcher.MinFitScore < 0 || c.Matcher.MinFitScore > 1 {
		return fmt.Errorf("matcher.min_fit_score must be in [0,1], got %g", c.Matcher.MinFitScore)
	}
	if c.Workers.PoolSize <= 0 {
		return fmt.Errorf("workers.pool_size must be positive, got %d", c.Workers.PoolSize)
	}
	return nil
}
