package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	GitHub    GitHubConfig
	Bitbucket BitbucketConfig
	Fetch     FetchConfig
}

type ServerConfig struct {
	Port            string
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// GitHubConfig holds the credentials used for every GitHub request.
// Token takes precedence over Username/Password when both are set.
type GitHubConfig struct {
	APIURL   string
	Username string
	Password string
	Token    string
}

type BitbucketConfig struct {
	APIURL string
}

type FetchConfig struct {
	Timeout     time.Duration
	Concurrency int
}

// Load loads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "3000"),
			Mode:            getEnv("GIN_MODE", "release"),
			ReadTimeout:     getEnvAsSeconds("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsSeconds("WRITE_TIMEOUT", 120),
			ShutdownTimeout: getEnvAsSeconds("SHUTDOWN_TIMEOUT", 10),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		GitHub: GitHubConfig{
			APIURL:   withTrailingSlash(getEnv("GITHUB_API_URL", "https://api.github.com/")),
			Username: getEnv("GITHUB_USERNAME", ""),
			Password: getEnv("GITHUB_PASSWORD", ""),
			Token:    getEnv("GITHUB_TOKEN", ""),
		},
		Bitbucket: BitbucketConfig{
			APIURL: withTrailingSlash(getEnv("BITBUCKET_API_URL", "https://api.bitbucket.org/1.0/")),
		},
		Fetch: FetchConfig{
			Timeout:     getEnvAsSeconds("HTTP_TIMEOUT", 30),
			Concurrency: getEnvAsInt("FETCH_CONCURRENCY", 4),
		},
	}

	if cfg.Fetch.Concurrency < 1 {
		cfg.Fetch.Concurrency = 1
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Invalid value for %s, using default: %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvAsSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultSeconds)) * time.Second
}

// go-github and the fetch helper resolve relative paths against the base URL,
// which only works when it ends with a slash.
func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
