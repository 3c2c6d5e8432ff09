package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Web      WebConfig
	Database DatabaseConfig
	Catalog  CatalogConfig
	Assets   AssetsConfig
	Images   ImagesConfig
}

type WebConfig struct {
	Port           int      // defaults to 8080
	Host           string   // defaults to 0.0.0.0
	AllowedOrigins []string // extra CORS origins besides localhost
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty keeps templates in memory
	MaxOpenConns int    // Maximum open connections (default 10)
	MaxIdleConns int    // Maximum idle connections (default 2)
}

type CatalogConfig struct {
	URL     string        // defaults to https://www.amiiboapi.org/api
	Timeout time.Duration // defaults to 10s
}

type AssetsConfig struct {
	Dir     string // local directory holding static back-design images
	BaseURL string // public URL prefix for static back-design images
}

// Base returns where static back-design paths resolve against.
// A configured URL wins over a directory.
func (c AssetsConfig) Base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return c.Dir
}

type ImagesConfig struct {
	CacheDir     string        // on-disk cache for downloaded images (optional)
	FetchTimeout time.Duration // defaults to 15s
	MaxSize      int           // longest edge kept after decode (default 1920)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable with a fallback for empty values.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList reads a comma-separated environment variable, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// envSeconds reads a positive number of seconds as a duration.
func envSeconds(key string, defaultVal time.Duration) time.Duration {
	return time.Duration(envInt(key, int(defaultVal/time.Second))) * time.Second
}

func Load() *Config {
	return &Config{
		Web: WebConfig{
			Port: envInt("WEB_PORT", 8080),
			Host: envString("WEB_HOST", "0.0.0.0"),

			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 2),
		},
		Catalog: CatalogConfig{
			URL:     envString("AMIIBO_API_URL", "https://www.amiiboapi.org/api"),
			Timeout: envSeconds("AMIIBO_API_TIMEOUT", 10*time.Second),
		},
		Assets: AssetsConfig{
			Dir:     os.Getenv("ASSET_DIR"),
			BaseURL: os.Getenv("ASSET_BASE_URL"),
		},
		Images: ImagesConfig{
			CacheDir:     os.Getenv("IMAGE_CACHE_DIR"),
			FetchTimeout: envSeconds("IMAGE_FETCH_TIMEOUT", 15*time.Second),
			MaxSize:      envInt("IMAGE_MAX_SIZE", 1920),
		},
	}
}
