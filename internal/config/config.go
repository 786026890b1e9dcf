package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode          Mode
	HTTPAddr      string
	RolesHTTPAddr string
	PublicURL     string
	LogMode       string

	DBDriver string
	DBDSN    string

	BlobBasePath string // uploaded notes
	DataRoot     string // question bank: <std>/<subject>/manifest.json

	AuthSecret string
	TokenTTL   time.Duration

	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	UploadMaxBytes    int64
	TokensPerApproval int
	LeaderboardLimit  int
}

// Load reads an optional .env file (path from ENV_FILE, default ".env") and
// then builds the config from the environment. Real env vars win.
func Load() Config {
	_ = godotenv.Load(envOr("ENV_FILE", ".env"))
	return FromEnv()
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	logMode := "dev"
	if mode == ModeOnline {
		logMode = "prod"
	}
	return Config{
		Mode:               mode,
		HTTPAddr:           envOr("HTTP_ADDR", ":3001"),
		RolesHTTPAddr:      envOr("ROLES_HTTP_ADDR", ":3002"),
		PublicURL:          strings.TrimSuffix(envOr("PUBLIC_URL", "http://localhost:3001"), "/"),
		LogMode:            envOr("LOG_MODE", logMode),
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		BlobBasePath:       envOr("BLOB_BASE_PATH", "./data/blobs"),
		DataRoot:           envOr("DATA_ROOT", "./public/data"),
		AuthSecret:         envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		TokenTTL:           envDuration("TOKEN_TTL", 8*time.Hour),
		AdminUser:          envOr("ADMIN_USER", "admin"),
		AdminPassHash:      os.Getenv("ADMIN_PASS_HASH"),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://studyhub.example.com"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),
		UploadMaxBytes:     int64(envInt("UPLOAD_MAX_BYTES", 10<<20)),
		TokensPerApproval:  envInt("TOKENS_PER_APPROVAL", 50),
		LeaderboardLimit:   envInt("LEADERBOARD_LIMIT", 100),
	}
}

func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envInt(k string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return v
}
func envDuration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(k)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
