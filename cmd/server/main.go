package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Lohit-Behera/canva/internal/auth"
	"github.com/Lohit-Behera/canva/internal/config"
	"github.com/Lohit-Behera/canva/internal/forms"
	"github.com/Lohit-Behera/canva/internal/logging"
	"github.com/Lohit-Behera/canva/internal/store"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	ctx := context.Background()

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect")
	}
	defer mongoClient.Disconnect(ctx)
	mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongo indexes")
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect")
	}
	defer rdb.Close()
	revoked := auth.NewRevocationStore(rdb)

	// ── PostgreSQL (optional audit trail) ────────────────────
	var audit auth.AuditLog = auth.NopAudit{}
	if cfg.PostgresDSN != "" {
		pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connect")
		}
		defer pgPool.Close()
		pgStore := store.NewPostgresStore(pgPool)
		if err := pgStore.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("postgres migrate")
		}
		audit = pgStore
	} else {
		log.Info().Msg("POSTGRES_DSN not set, auth audit trail disabled")
	}

	// ── MinIO ────────────────────────────────────────────────
	mediaStore, err := store.NewMinioStore(ctx, store.MinioOptions{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
		PublicURL: cfg.MediaPublicURL,
		Memory:    cfg.MediaMemory,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("minio connect")
	}

	// ── Services ─────────────────────────────────────────────
	tokens := auth.NewTokenIssuer(cfg.AccessTokenSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenSecret, cfg.RefreshTokenExpiry)
	google := auth.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	svc := services{
		auth:  auth.NewService(mongoStore, mediaStore, tokens, revoked, google, audit),
		forms: forms.NewService(mongoStore, mongoStore, mediaStore),
	}

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, svc),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("prefix", cfg.APIPrefix).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
