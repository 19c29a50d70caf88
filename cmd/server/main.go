package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	sessredis "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"session-auth/internal/config"
	apphttp "session-auth/internal/http"
	"session-auth/internal/repository/mongodb"
	"session-auth/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mongodb.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		logger.Fatalf("connect mongodb: %v", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	userRepo := mongodb.NewUserRepository(client.Database(cfg.Mongo.Database))
	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}

	authService := service.NewAuthService(userRepo)

	store, err := buildSessionStore(cfg, logger)
	if err != nil {
		logger.Fatalf("setup session store: %v", err)
	}

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sessions.Sessions(apphttp.SessionCookieName, store))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORS.AllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	handler := apphttp.NewHandler(authService, logger)
	handler.RegisterRoutes(router)

	if cfg.Server.StaticDir != "" {
		if _, err := os.Stat(cfg.Server.StaticDir); err == nil {
			router.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.Server.StaticDir))))
		}
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildSessionStore prefers a Redis-backed store so sessions live server-side
// with the cookie holding only an opaque id. Without a Redis address the
// signed cookie store keeps local development dependency-free; Validate
// forbids that combination in release mode.
func buildSessionStore(cfg config.Config, logger *logrus.Logger) (sessions.Store, error) {
	secret := cfg.Session.Secret
	if secret == "" {
		secret = "insecure-dev-session-secret"
	}

	var store sessions.Store
	if cfg.Redis.Addr != "" {
		s, err := sessredis.NewStore(10, "tcp", cfg.Redis.Addr, cfg.Redis.Password, []byte(secret))
		if err != nil {
			return nil, fmt.Errorf("redis session store: %w", err)
		}
		store = s
	} else {
		logger.Warn("redis addr not set, sessions stored in signed cookies")
		store = cookie.NewStore([]byte(secret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   apphttp.SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   cfg.Server.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})

	return store, nil
}
