package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Image      ImageConfig      `mapstructure:"image"`
	CORS       CORSConfig       `mapstructure:"cors"`
	LogLevel   string           `mapstructure:"log_level"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	DatabaseURL string `mapstructure:"database_url"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisDB     int    `mapstructure:"redis_db"`
}

// ExtractionConfig selects and configures the extraction provider.
type ExtractionConfig struct {
	Provider     string        `mapstructure:"provider"`
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
	GeminiModel  string        `mapstructure:"gemini_model"`
	LocalURL     string        `mapstructure:"local_url"`
	LocalModel   string        `mapstructure:"local_model"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// ImageConfig bounds the stored recipe image.
type ImageConfig struct {
	MaxWidth    uint `mapstructure:"max_width"`
	JPEGQuality int  `mapstructure:"jpeg_quality"`
}

// CORSConfig holds the allowed browser origins.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	setDefaults()

	viper.SetEnvPrefix("FAMILYPLATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("storage.driver", "STORAGE_DRIVER")
	viper.BindEnv("storage.database_url", "DATABASE_URL")
	viper.BindEnv("storage.redis_addr", "REDIS_ADDR")
	viper.BindEnv("storage.redis_db", "REDIS_DB")
	viper.BindEnv("extraction.provider", "EXTRACTION_PROVIDER")
	viper.BindEnv("extraction.gemini_api_key", "GEMINI_API_KEY")
	viper.BindEnv("extraction.gemini_model", "GEMINI_MODEL")
	viper.BindEnv("extraction.local_url", "LOCAL_LLM_URL")
	viper.BindEnv("extraction.local_model", "LOCAL_LLM_MODEL")
	viper.BindEnv("log_level", "LOG_LEVEL")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("storage.driver", "memory")
	viper.SetDefault("storage.redis_addr", "localhost:6379")
	viper.SetDefault("storage.redis_db", 0)

	viper.SetDefault("extraction.provider", "gemini")
	viper.SetDefault("extraction.gemini_model", "gemini-1.5-flash")
	viper.SetDefault("extraction.local_url", "http://localhost:1234")
	viper.SetDefault("extraction.local_model", "gemma-3-12b-it")
	viper.SetDefault("extraction.timeout", "45s")

	viper.SetDefault("image.max_width", 1200)
	viper.SetDefault("image.jpeg_quality", 80)

	viper.SetDefault("cors.allow_origins", []string{"http://localhost:8081"})

	viper.SetDefault("log_level", "info")
}

func validate(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Storage.Driver {
	case "memory", "redis":
	case "postgres":
		if config.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	switch config.Extraction.Provider {
	case "gemini":
		if config.Extraction.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini extraction provider")
		}
	case "local":
	default:
		return fmt.Errorf("unknown extraction provider %q", config.Extraction.Provider)
	}

	if config.Image.MaxWidth == 0 {
		return fmt.Errorf("invalid image max width")
	}
	if config.Image.JPEGQuality <= 0 || config.Image.JPEGQuality > 100 {
		return fmt.Errorf("invalid jpeg quality")
	}

	return nil
}
