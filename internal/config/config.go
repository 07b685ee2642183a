// README: Config loader with env defaults for HTTP, DB, Redis, artifacts, BigQuery and training settings.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type BigQueryConfig struct {
	Project         string
	Location        string
	CredentialsFile string
	BucketLimit     int
}

type TrainingConfig struct {
	AugmentRows int
	Seed        int64
	TestSize    float64
}

type Config struct {
	HTTP struct {
		Addr        string
		CORSOrigins []string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr     string
		CacheTTL time.Duration
	}
	Model struct {
		Dir string
	}
	Maps struct {
		APIKey string
	}
	BigQuery BigQueryConfig
	Training TrainingConfig
}

// Load reads a .env file when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("FARE_HTTP_ADDR", ":8000")
	cfg.HTTP.CORSOrigins = splitList(envOrDefault("FARE_CORS_ORIGINS", "*"))
	cfg.DB.DSN = envOrDefault("FARE_DB_DSN", dsnFromParts())
	cfg.Redis.Addr = os.Getenv("FARE_REDIS_ADDR")
	cfg.Redis.CacheTTL = envOrDefaultDuration("FARE_CACHE_TTL", 10*time.Minute)
	cfg.Model.Dir = envOrDefault("FARE_MODEL_DIR", "models")
	cfg.Maps.APIKey = os.Getenv("FARE_MAPS_API_KEY")

	cfg.BigQuery.Project = envOrDefault("FARE_BQ_PROJECT", "datapipeline-486114")
	cfg.BigQuery.Location = envOrDefault("FARE_BQ_LOCATION", "US")
	cfg.BigQuery.CredentialsFile = os.Getenv("FARE_BQ_CREDENTIALS")
	cfg.BigQuery.BucketLimit = envOrDefaultInt("FARE_BQ_BUCKET_LIMIT", 20000)

	cfg.Training.AugmentRows = envOrDefaultInt("FARE_AUGMENT_ROWS", 2500)
	cfg.Training.Seed = int64(envOrDefaultInt("FARE_SEED", 42))
	cfg.Training.TestSize = envOrDefaultFloat("FARE_TEST_SIZE", 0.2)

	if cfg.Training.TestSize <= 0 || cfg.Training.TestSize >= 1 {
		return cfg, fmt.Errorf("FARE_TEST_SIZE must be in (0, 1), got %v", cfg.Training.TestSize)
	}
	if cfg.BigQuery.BucketLimit <= 0 {
		return cfg, fmt.Errorf("FARE_BQ_BUCKET_LIMIT must be positive, got %d", cfg.BigQuery.BucketLimit)
	}
	if cfg.Training.AugmentRows < 0 {
		return cfg, fmt.Errorf("FARE_AUGMENT_ROWS must not be negative, got %d", cfg.Training.AugmentRows)
	}
	return cfg, nil
}

// dsnFromParts builds a DSN from the DB_* variables used by the docker setup.
func dsnFromParts() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(envOrDefault("DB_USER", "postgres"), envOrDefault("DB_PASSWORD", "postgres")),
		Host:     envOrDefault("DB_HOST", "localhost") + ":" + envOrDefault("DB_PORT", "5432"),
		Path:     "/" + envOrDefault("DB_NAME", "nyc_taxi"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
