package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-commerce/internal/audit"
	"campus-commerce/internal/cart"
	"campus-commerce/internal/catalog"
	"campus-commerce/internal/config"
	"campus-commerce/internal/httpapi"
	"campus-commerce/internal/identity"
	"campus-commerce/internal/images"
	"campus-commerce/internal/ragsync"
	"campus-commerce/internal/rbac"
	"campus-commerce/internal/store"
	"campus-commerce/pkg/logger"
	"campus-commerce/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Identity gateway: verifier + JIT profile provisioning. Constructed
	// once; no ambient globals.
	verifier, err := identity.NewProviderVerifier(cfg.Identity)
	if err != nil {
		log.Error("verifier init failed", "err", err)
		os.Exit(1)
	}
	gateway, err := identity.NewGateway(verifier, store.NewProfileStore(db), cfg.Identity)
	if err != nil {
		log.Error("identity gateway init failed", "err", err)
		os.Exit(1)
	}
	guard := rbac.NewGuard(store.NewRoleStore(db), cfg.Identity.RoleStoreTimeout)

	auditSvc := audit.NewService(audit.NewPostgresRepo(db))

	// Outbound collaborators are optional by config: without them the
	// catalog still works, only uploads / retrieval sync are off.
	var imageClient *images.Client
	if cfg.Images.BaseURL != "" {
		if imageClient, err = images.NewClient(cfg.Images); err != nil {
			log.Error("image client init failed", "err", err)
			os.Exit(1)
		}
	}

	var syncer catalog.Syncer
	if cfg.Embeddings.BaseURL != "" {
		embedder, err := ragsync.NewHTTPEmbedder(cfg.Embeddings)
		if err != nil {
			log.Error("embedder init failed", "err", err)
			os.Exit(1)
		}
		syncer = ragsync.NewService(embedder, ragsync.NewPostgresRepo(db))
	}

	catalogSvc := catalog.NewService(catalog.NewPostgresRepo(db), guard, auditSvc, syncer)
	cartSvc := cart.NewService(cart.NewRedisStore(rdb), catalogSvc)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	h := httpapi.Handlers{
		Catalog: catalogSvc,
		Cart:    cartSvc,
		Images:  imageClient,
	}
	registerRoutes(r, cfg, h, identity.RequireAuth(gateway), httpapi.WriteCap(rdb, 4, 30*time.Second))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
