package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"portfolio-bot/api"
	"portfolio-bot/config"
	"portfolio-bot/dao"
	"portfolio-bot/internal/logger"
	"portfolio-bot/internal/mailclient"
	"portfolio-bot/route"
	"portfolio-bot/service"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn().Err(err).Msg("failed to load .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize logger")
	}

	knowledge, err := openKnowledge(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load knowledge base")
	}
	defer knowledge.Close()
	kb := knowledge.Current()
	logger.Info().
		Str("source", kb.Source()).
		Int("categories", len(kb.Categories())).
		Int("typos", kb.Normalizer().Len()).
		Msg("knowledge base loaded")

	store, err := openSessionStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open session store")
	}
	defer store.Close()

	chatSvc := service.NewChatService(knowledge, store, service.WithDefaultSession(cfg.DefaultSession))

	if err := os.MkdirAll(filepath.Dir(cfg.Contact.InboxPath), 0o755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create inbox directory")
	}
	inbox, err := dao.OpenContactInbox(cfg.Contact.InboxPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open contact inbox")
	}
	defer inbox.Close()

	mail := mailclient.NewClient(cfg.Contact.BaseURL, cfg.Contact.ResendAPIKey, cfg.Contact.ToEmail)
	if !mail.Configured() {
		logger.Warn().Msg("contact notifier not configured: set RESEND_API_KEY and PORTFOLIO_BOT_CONTACT_TO_EMAIL")
	}
	contactSvc := service.NewContactService(inbox, mail)

	var limiter *api.RateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = api.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 0)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	route.Register(r, route.Deps{
		Chat:       chatSvc,
		Contact:    contactSvc,
		Knowledge:  knowledge,
		Delay:      api.Delay{Min: cfg.Reply.DelayMin, Max: cfg.Reply.DelayMax},
		Limiter:    limiter,
		AdminToken: cfg.AdminToken,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("session_backend", cfg.Session.Backend).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func openKnowledge(cfg *config.Config) (*service.KnowledgeStore, error) {
	if cfg.KnowledgePath == "" {
		return service.NewKnowledgeStore(func() (*service.KnowledgeBase, error) {
			return service.ParseKnowledge(config.DefaultKnowledge, "embedded")
		})
	}

	knowledge, err := service.NewFileKnowledgeStore(cfg.KnowledgePath)
	if err != nil {
		return nil, err
	}
	if cfg.KnowledgeWatch {
		if err := knowledge.Watch(cfg.KnowledgePath); err != nil {
			knowledge.Close()
			return nil, err
		}
	}
	return knowledge, nil
}

func openSessionStore(cfg *config.Config) (dao.SessionStore, error) {
	if cfg.Session.Backend != "redis" {
		return dao.NewMemoryStore(cfg.Session.Capacity), nil
	}

	store := dao.NewRedisStore(dao.RedisOptions{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		KeyPrefix:  cfg.Redis.KeyPrefix,
		TTL:        cfg.Redis.TTL,
		Capacity:   cfg.Session.Capacity,
		MaxRetries: cfg.Redis.MaxRetries,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
