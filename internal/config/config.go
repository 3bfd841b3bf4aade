package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret string

	// Studio settings.
	CatalogPath       string
	ArtifactDir       string
	Timezone          *time.Location
	PublishTimes      []string // "HH:MM" local clock times
	RenderConcurrency int
	IdeaTarget        int
	HealthInterval    time.Duration

	// External collaborators.
	RenderURL        string
	PublishURL       string
	PublishTokenPath string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          mustGetenv("DATABASE_URL"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",

		CatalogPath:       getenv("CATALOG_PATH", ""),
		ArtifactDir:       getenv("ARTIFACT_DIR", "generated_videos"),
		RenderConcurrency: getenvInt("RENDER_CONCURRENCY", 2),
		IdeaTarget:        getenvInt("IDEA_TARGET", 100),
		HealthInterval:    getenvDuration("HEALTH_INTERVAL", time.Hour),

		RenderURL:        getenv("RENDER_URL", "http://localhost:3020"),
		PublishURL:       getenv("PUBLISH_URL", "http://localhost:3021"),
		PublishTokenPath: getenv("PUBLISH_TOKEN_PATH", "publish_token.jwt"),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	for _, t := range strings.Split(getenv("PUBLISH_TIMES", "07:00,21:30"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			cfg.PublishTimes = append(cfg.PublishTimes, t)
		}
	}

	tz := getenv("TIMEZONE", "America/New_York")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}
	cfg.Timezone = loc

	cfg.JWTSecret = mustGetenv("JWT_SECRET")
	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}
