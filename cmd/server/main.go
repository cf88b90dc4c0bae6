// Command server runs the certified content HTTP service.
//
// @title                      Certified Content API
// @version                    1.0
// @description                Proposes learning plans, locks them, and publishes signed cert.v1 artifacts.
// @BasePath                   /api/v1
// @securityDefinitions.apikey AdminToken
// @in                         header
// @name                       X-Admin-Token
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/tbourn/go-certified-backend/docs"
	"github.com/tbourn/go-certified-backend/internal/artifacts"
	"github.com/tbourn/go-certified-backend/internal/citations"
	"github.com/tbourn/go-certified-backend/internal/config"
	httpapi "github.com/tbourn/go-certified-backend/internal/http"
	"github.com/tbourn/go-certified-backend/internal/keys"
	"github.com/tbourn/go-certified-backend/internal/observability"
	"github.com/tbourn/go-certified-backend/internal/planner"
	"github.com/tbourn/go-certified-backend/internal/repo"
	"github.com/tbourn/go-certified-backend/internal/services"
	"github.com/tbourn/go-certified-backend/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, observability.ServiceInfo{Version: version, Mode: cfg.AppMode})
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	dsn := cfg.DBPath
	if cfg.DBDriver == repo.DriverPostgres {
		dsn = cfg.DatabaseURL
	}
	db, err := repo.Open(cfg.DBDriver, dsn)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	ks := keys.NewKeyStore(keys.Config{
		Mode:       keys.Mode(cfg.AppMode),
		PublicKey:  cfg.Cert.PublicKey,
		PrivateKey: cfg.Cert.PrivateKey,
	})
	if _, err := ks.Load(); err != nil {
		log.Fatal().Err(err).Str("mode", cfg.AppMode).Msg("signing keys unavailable")
	}
	if ks.Mode() == keys.ModeTest {
		log.Warn().Msg("running with test signing keys; artifacts will not verify after restart")
	}

	store, closeStore := openStore(ctx, cfg.Artifacts)
	defer closeStore()

	opts := citations.Options{Timeout: cfg.Citations.Timeout, MaxBytes: cfg.Citations.MaxBytes}
	if cfg.Citations.CacheRedisURL != "" {
		cache, err := citations.NewRedisCache(ctx, cfg.Citations.CacheRedisURL, cfg.Citations.CacheTTL)
		if err != nil {
			log.Warn().Err(err).Msg("citation cache disabled")
		} else {
			opts.Cache = cache
			defer cache.Close()
		}
	}
	validator := citations.NewValidator(opts)
	log.Info().
		Dur("timeout", validator.Timeout()).
		Int("max_bytes", validator.MaxBytes()).
		Bool("cache", opts.Cache != nil).
		Msg("citation validator")

	registry, err := planner.DefaultRegistry(cfg.Planner.ExternalURL)
	if err != nil {
		log.Fatal().Err(err).Msg("proposer registry")
	}
	proposers, err := registry.Resolve(cfg.Planner.Engines)
	if err != nil {
		log.Fatal().Err(err).Strs("available", registry.Names()).Msg("unknown proposer engine")
	}
	runner := planner.NewRunner(proposers, cfg.Planner.ProposerTimeout)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		docs.SwaggerInfo.Version = version
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	httpapi.RegisterRoutes(r, db, httpapi.Pipeline{
		Runner:  runner,
		Checker: planner.NewChecker(validator),
		Store:   store,
		Keys:    ks,
		Audit:   services.NewAuditLog(cfg.Audit.Buffer),
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", version).
			Strs("engines", runner.Engines()).
			Str("artifacts", cfg.Artifacts.Backend).
			Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStore builds the configured artifact body store. The returned func
// releases any client the store holds.
func openStore(ctx context.Context, cfg config.ArtifactsConfig) (artifacts.BlobStore, func()) {
	switch cfg.Backend {
	case "gcs":
		s, err := artifacts.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSPrefix)
		if err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.GCSBucket).Msg("gcs store")
		}
		return s, func() { _ = s.Close() }
	default:
		s, err := artifacts.NewFSStore(cfg.Dir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.Dir).Msg("fs store")
		}
		return s, func() {}
	}
}
