// Package app wires configuration, storage and HTTP routing into runnable
// commands.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/inkpress/internal/auth"
	"github.com/inkpress/inkpress/internal/config"
	"github.com/inkpress/inkpress/internal/db"
	httpx "github.com/inkpress/inkpress/internal/http"
	adminapi "github.com/inkpress/inkpress/internal/http/api/admin"
	"github.com/inkpress/inkpress/internal/http/api/public"
	"github.com/inkpress/inkpress/internal/logging"
	"github.com/inkpress/inkpress/internal/session"
	"github.com/inkpress/inkpress/internal/settings"
	"github.com/inkpress/inkpress/internal/stats"
	"github.com/inkpress/inkpress/internal/webui"
	log "github.com/sirupsen/logrus"
)

// shutdownTimeout bounds graceful HTTP server shutdown.
const shutdownTimeout = 10 * time.Second

// Migrate opens the database and runs schema migrations.
func Migrate(ctx context.Context, configPath string) error {
	cfg, errLoad := config.Load(configPath)
	if errLoad != nil {
		return errLoad
	}
	logging.Setup(cfg.Log)
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	return db.Migrate(conn)
}

// Seed migrates the database and loads the demo content set.
func Seed(ctx context.Context, configPath string) error {
	cfg, errLoad := config.Load(configPath)
	if errLoad != nil {
		return errLoad
	}
	logging.Setup(cfg.Log)
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	return db.Seed(ctx, conn)
}

// CreateAdmin bootstraps the first admin account from the command line. It
// fails once an account exists.
func CreateAdmin(ctx context.Context, configPath, email, password, displayName string) error {
	cfg, errLoad := config.Load(configPath)
	if errLoad != nil {
		return errLoad
	}
	logging.Setup(cfg.Log)
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	admin, errBootstrap := auth.NewService(conn, cfg.Auth.BcryptCost).Bootstrap(ctx, email, password, displayName)
	if errBootstrap != nil {
		return errBootstrap
	}
	log.WithField("email", admin.Email).Info("admin account created")
	return nil
}

// RunServer boots the blog server and blocks until ctx is cancelled.
func RunServer(ctx context.Context, configPath string) error {
	cfg, errLoad := config.Load(configPath)
	if errLoad != nil {
		return errLoad
	}
	logging.Setup(cfg.Log)

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = randomSecret()
		log.Warn("auth secret not configured, using a random one; sessions will not survive a restart")
	}

	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errRefresh := settings.Refresh(ctx, conn); errRefresh != nil {
		return errRefresh
	}
	settings.NewPoller(conn, 0).Start(ctx)

	var revoker session.Revoker
	if cfg.Redis.Addr != "" {
		redisRevoker := session.NewRedisRevoker(cfg.Redis)
		if errPing := redisRevoker.Ping(ctx); errPing != nil {
			log.WithError(errPing).Warn("redis unreachable, session revocation disabled")
		} else {
			revoker = redisRevoker
			log.WithField("addr", cfg.Redis.Addr).Info("session revocation enabled")
		}
	}

	bundle, errBundle := webui.Load()
	if errBundle != nil {
		return errBundle
	}

	sessions := session.NewManager(secret, cfg.Auth.SessionTTL, cfg.IsProduction(), revoker)
	authService := auth.NewService(conn, cfg.Auth.BcryptCost)
	views := stats.NewRecorder(conn)

	engine := newEngine(cfg)
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	public.RegisterPublicRoutes(engine, conn, views)
	adminapi.RegisterAdminRoutes(engine, conn, authService, sessions, views)
	registerAdminPages(engine, sessions, bundle)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"addr": cfg.Server.Addr, "env": cfg.Environment}).Info("server listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		log.Info("server stopped")
		return nil
	case errServe := <-serveErr:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}

// newEngine builds the gin engine with mode and recovery configured per
// environment.
func newEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogMiddleware())
	return engine
}

// registerAdminPages serves the embedded admin SPA. Page paths run through
// the session gate so unauthenticated visitors land on the login page.
func registerAdminPages(engine *gin.Engine, sessions *session.Manager, bundle webui.Bundle) {
	engine.StaticFS("/admin/assets", bundle.AssetsFS)

	serve := bundle.ServeIndex()
	engine.NoRoute(func(c *gin.Context) {
		requestPath := c.Request.URL.Path
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		if !strings.HasPrefix(requestPath, httpx.AdminPrefix) || strings.HasPrefix(requestPath, httpx.AdminAPIPrefix) {
			c.Status(http.StatusNotFound)
			return
		}
		httpx.SessionGateMiddleware(sessions)(c)
		if c.IsAborted() {
			return
		}
		serve(c)
	})
}

// requestLogMiddleware logs one line per request at debug level.
func requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).Round(time.Millisecond).String(),
		}).Debug("request")
	}
}

// randomSecret generates a throwaway signing secret for development runs.
func randomSecret() string {
	buf := make([]byte, 32)
	if _, errRead := rand.Read(buf); errRead != nil {
		return time.Now().UTC().Format(time.RFC3339Nano)
	}
	return hex.EncodeToString(buf)
}
