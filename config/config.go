package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "./config/config.yml"

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowOrigins   []string `yaml:"allowOrigins"`
		TrustedProxies []string `yaml:"trustedProxies"`
		APIPrefix      string   `yaml:"apiPrefix"`
	} `yaml:"server"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	JWT struct {
		Secret string `yaml:"secret"`
		Expiry int    `yaml:"expiry"` // minutes
	} `yaml:"jwt"`

	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`

	Interview struct {
		AnswerLimit        int           `yaml:"answerLimit"`
		AnswerWindow       time.Duration `yaml:"answerWindow"`
		SweepSchedule      string        `yaml:"sweepSchedule"`
		StaleSessionMaxAge time.Duration `yaml:"staleSessionMaxAge"`
	} `yaml:"interview"`

	Seed struct {
		DemoUsers bool `yaml:"demoUsers"`
	} `yaml:"seed"`
}

// Default returns a config usable for local development
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 8000
	cfg.Server.AllowOrigins = []string{"http://localhost:5173"}
	cfg.Server.TrustedProxies = []string{"127.0.0.1"}
	cfg.Server.APIPrefix = "/api/v1"
	cfg.Database.URI = "mongodb://localhost:27017/neurovisa"
	cfg.Redis.Addr = "localhost:6379"
	cfg.JWT.Expiry = 30
	cfg.Log.Level = "info"
	cfg.Interview.AnswerLimit = 20
	cfg.Interview.AnswerWindow = time.Minute
	cfg.Interview.SweepSchedule = "*/15 * * * *"
	cfg.Interview.StaleSessionMaxAge = 2 * time.Hour
	return &cfg
}

// LoadConfig reads the configuration file on top of the defaults, then applies
// environment overrides. A missing file is fine as long as the result validates.
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PathFromEnv returns CONFIG_PATH or the default location
func PathFromEnv() string {
	return getEnv("CONFIG_PATH", DefaultPath)
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvAsInt("NEUROVISA_PORT", c.Server.Port)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		c.Server.AllowOrigins = strings.Split(origins, ",")
	}
	c.Database.URI = getEnv("MONGO_URI", c.Database.URI)
	c.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)
	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.JWT.Expiry = getEnvAsInt("JWT_EXPIRY_MINUTES", c.JWT.Expiry)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
	c.Interview.AnswerLimit = getEnvAsInt("ANSWER_RATE_LIMIT", c.Interview.AnswerLimit)
	c.Interview.AnswerWindow = getEnvAsDuration("ANSWER_RATE_WINDOW", c.Interview.AnswerWindow)
	c.Interview.SweepSchedule = getEnv("SESSION_SWEEP_SCHEDULE", c.Interview.SweepSchedule)
	c.Interview.StaleSessionMaxAge = getEnvAsDuration("SESSION_MAX_AGE", c.Interview.StaleSessionMaxAge)
	c.Seed.DemoUsers = getEnvAsBool("SEED_DEMO_USERS", c.Seed.DemoUsers)
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.JWT.Expiry <= 0 {
		return fmt.Errorf("jwt.expiry must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Database.URI == "" {
		return fmt.Errorf("database.uri is required")
	}
	if c.Interview.AnswerLimit <= 0 || c.Interview.AnswerWindow <= 0 {
		return fmt.Errorf("interview answer rate limit must be positive")
	}
	if c.Interview.StaleSessionMaxAge <= 0 {
		return fmt.Errorf("interview.staleSessionMaxAge must be positive")
	}
	return nil
}

// TokenTTL is the access token lifetime
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.Expiry) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
