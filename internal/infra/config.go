package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Theme source strategies understood by the pipeline.
const (
	ThemeSourceLibrary = "library"
	ThemeSourcePexels  = "pexels"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	UploadDir      string
	ThemeDir       string
	OutputDir      string
	FrontendDir    string
	MaxUploadBytes int64

	ThemeSource  string
	PexelsAPIKey string

	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURI  string

	FFmpegPath  string
	FFprobePath string
	VideoCodec  string
	AudioCodec  string

	SearchTimeout    time.Duration
	TranscodeTimeout time.Duration

	DatabaseURL string
	GeoIPDBPath string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "5000"),

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		ThemeDir:       getEnv("THEME_DIR", "themes"),
		OutputDir:      getEnv("OUTPUT_DIR", "uploads"),
		FrontendDir:    getEnv("FRONTEND_DIR", "frontend/build"),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 50<<20),

		ThemeSource:  getEnv("THEME_SOURCE", ThemeSourcePexels),
		PexelsAPIKey: os.Getenv("PEXELS_API_KEY"),

		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		SpotifyRedirectURI:  os.Getenv("SPOTIFY_REDIRECT_URI"),

		FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),
		VideoCodec:  getEnv("VIDEO_CODEC", "copy"),
		AudioCodec:  getEnv("AUDIO_CODEC", "aac"),

		SearchTimeout:    time.Second * time.Duration(getEnvInt("SEARCH_TIMEOUT_SECONDS", 30)),
		TranscodeTimeout: time.Second * time.Duration(getEnvInt("TRANSCODE_TIMEOUT_SECONDS", 120)),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		GeoIPDBPath: os.Getenv("GEOIP_DB_PATH"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 60)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	switch cfg.ThemeSource {
	case ThemeSourceLibrary, ThemeSourcePexels:
	default:
		return nil, fmt.Errorf("THEME_SOURCE must be %q or %q, got %q", ThemeSourceLibrary, ThemeSourcePexels, cfg.ThemeSource)
	}

	if cfg.ThemeSource == ThemeSourcePexels && cfg.PexelsAPIKey == "" {
		return nil, fmt.Errorf("PEXELS_API_KEY is required when THEME_SOURCE=%s", ThemeSourcePexels)
	}

	switch cfg.VideoCodec {
	case "copy", "h264":
	default:
		return nil, fmt.Errorf("VIDEO_CODEC must be \"copy\" or \"h264\", got %q", cfg.VideoCodec)
	}

	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	return cfg, nil
}

// Production reports whether the server runs in production mode, which enables
// serving the bundled frontend build.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
