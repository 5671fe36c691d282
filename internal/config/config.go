package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port     string
	Env      string // "dev" | "prod"
	MongoURI string
	MongoDB  string

	JWTSecret      string
	AccessTTLHours int

	RedisAddr       string
	RateLimitPerMin int

	RabbitURL string

	FrontendURL string
	BackendURL  string

	GoogleClientID     string
	GoogleClientSecret string
	GithubClientID     string
	GithubClientSecret string
	OAuthStateSecret   string

	// SessionTransport selects how the OAuth callback hands the session to
	// the browser: "cookie" (http-only cookie, nothing sensitive in the
	// redirect) or "query" (token + user in the redirect query string).
	SessionTransport string
	CookieDomain     string
	CookieSecure     bool
}

func Load() Config {
	return Config{
		Port:     getenv("APP_PORT", "8080"),
		Env:      getenv("APP_ENV", "dev"),
		MongoURI: getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getenv("MONGO_DB", "notes_db"),

		JWTSecret:      getenv("JWT_SECRET", "default_secret_key"),
		AccessTTLHours: atoi(getenv("ACCESS_TTL_HOURS", "168")), // one week

		RedisAddr:       getenv("REDIS_ADDR", ""),
		RateLimitPerMin: atoi(getenv("RATE_LIMIT_PER_MIN", "10")),

		RabbitURL: getenv("RABBIT_URL", ""),

		FrontendURL: getenv("FRONTEND_URL", "http://localhost:3000"),
		BackendURL:  getenv("BACKEND_URL", "http://localhost:8080"),

		GoogleClientID:     getenv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getenv("GOOGLE_CLIENT_SECRET", ""),
		GithubClientID:     getenv("GITHUB_CLIENT_ID", ""),
		GithubClientSecret: getenv("GITHUB_CLIENT_SECRET", ""),
		OAuthStateSecret:   getenv("OAUTH_STATE_SECRET", "default_state_key"),

		SessionTransport: getenv("SESSION_TRANSPORT", "cookie"),
		CookieDomain:     getenv("COOKIE_DOMAIN", "localhost"),
		CookieSecure:     getenv("COOKIE_SECURE", "false") == "true",
	}
}

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
