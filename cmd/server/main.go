package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tazhibayda/notes-service/internal/config"
	api "github.com/tazhibayda/notes-service/internal/http"
	"github.com/tazhibayda/notes-service/internal/log"
	"github.com/tazhibayda/notes-service/internal/metrics"
	"github.com/tazhibayda/notes-service/internal/oauth"
	"github.com/tazhibayda/notes-service/internal/queue"
	"github.com/tazhibayda/notes-service/internal/repo"
	"github.com/tazhibayda/notes-service/internal/security"
	"github.com/tazhibayda/notes-service/internal/service"
)

// @title Notes API
// @version 0.1.0
// @description Note-taking backend with local and OAuth authentication.
// @schemes http https
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	logger, err := log.Init(cfg.Env == "dev")
	if err != nil {
		stdlog.Fatalf("log init: %v", err)
	}
	defer log.Sync()

	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	var rds *repo.Redis
	if cfg.RedisAddr != "" {
		rds = repo.NewRedis(cfg.RedisAddr)
		if err := rds.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, rate limiting disabled", zap.Error(err))
			rds = nil
		} else {
			defer rds.Close()
		}
	}

	pub := queue.NewNoop()
	if cfg.RabbitURL != "" {
		p, err := queue.NewRabbit(cfg.RabbitURL, queue.ExchangeAuth, queue.ExchangeNotes)
		if err != nil {
			logger.Fatal("rabbit connect", zap.Error(err))
		}
		pub = p
	}
	defer pub.Close()

	iss := security.NewIssuer(cfg.JWTSecret, time.Duration(cfg.AccessTTLHours)*time.Hour)
	auth := service.NewAuth(store)

	h := api.NewHandler(auth, store, iss, pub)
	h.Redis = rds
	h.Health = store
	h.State = oauth.NewStateSigner(cfg.OAuthStateSecret)
	h.RateLimitPerMin = cfg.RateLimitPerMin
	h.FrontendURL = cfg.FrontendURL
	h.SessionTransport = cfg.SessionTransport
	h.CookieDomain = cfg.CookieDomain
	h.CookieSecure = cfg.CookieSecure

	if cfg.GoogleClientID != "" {
		h.AddProvider(oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret,
			cfg.BackendURL+"/auth/google/callback"))
	}
	if cfg.GithubClientID != "" {
		h.AddProvider(oauth.NewGithub(cfg.GithubClientID, cfg.GithubClientSecret,
			cfg.BackendURL+"/auth/github/callback"))
	}

	r := api.NewRouter(h)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	logger.Info("notes-service listening", zap.String("port", cfg.Port),
		zap.String("session_transport", cfg.SessionTransport))

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		logger.Error("server error", zap.Error(err))
	}
}
