package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/skinscan/internal/bootstrap"
	"github.com/yanqian/skinscan/internal/domain/auth"
	"github.com/yanqian/skinscan/internal/domain/chatbot"
	"github.com/yanqian/skinscan/internal/domain/detection"
	"github.com/yanqian/skinscan/internal/domain/patient"
	"github.com/yanqian/skinscan/internal/infra/chatstore"
	"github.com/yanqian/skinscan/internal/infra/clinicianrepo"
	"github.com/yanqian/skinscan/internal/infra/config"
	"github.com/yanqian/skinscan/internal/infra/detectionrepo"
	"github.com/yanqian/skinscan/internal/infra/imagestore"
	"github.com/yanqian/skinscan/internal/infra/patientrepo"
	"github.com/yanqian/skinscan/pkg/util"
)

// backends holds optional shared connections; nil fields mean "use memory".
type backends struct {
	pool   *pgxpool.Pool
	valkey valkey.Client
}

func provideBackends(cfg *config.Config, logger *slog.Logger) *backends {
	return &backends{
		pool:   connectPostgres(cfg.Database, logger),
		valkey: connectValkey(cfg.Chat.Redis, logger),
	}
}

func provideResources(b *backends) *bootstrap.Resources {
	var closePool, closeValkey func()
	if b.pool != nil {
		closePool = b.pool.Close
	}
	if b.valkey != nil {
		closeValkey = b.valkey.Close
	}
	return bootstrap.NewResources(closePool, closeValkey)
}

func connectPostgres(cfg config.DatabaseConfig, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		logger.Info("database dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func connectValkey(cfg config.RedisConfig, logger *slog.Logger) valkey.Client {
	if !cfg.Enabled {
		return nil
	}
	opt, err := buildValkeyOptions(cfg.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return nil
	}
	logger.Info("valkey chat store enabled", "addr", cfg.Addr)
	return client
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		Issuer:          cfg.Auth.Issuer,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}
}

func provideAuthRepository(b *backends) auth.Repository {
	if b.pool != nil {
		return clinicianrepo.NewPostgresRepository(b.pool)
	}
	return clinicianrepo.NewMemoryRepository()
}

func providePatientRepository(b *backends) patient.Repository {
	if b.pool != nil {
		return patientrepo.NewPostgresRepository(b.pool)
	}
	return patientrepo.NewMemoryRepository()
}

func providePatientLookup(repo patient.Repository) detection.PatientLookup {
	return patientrepo.NewNameLookup(repo)
}

func provideDetectionRepository(b *backends, lookup detection.PatientLookup) detection.Repository {
	if b.pool != nil {
		return detectionrepo.NewPostgresRepository(b.pool)
	}
	return detectionrepo.NewMemoryRepository(lookup)
}

func provideImageStorage(cfg *config.Config, logger *slog.Logger) detection.ImageStorage {
	s := cfg.Storage
	if !s.Enabled() {
		logger.Info("object storage not configured, using memory image store")
		return imagestore.NewMemoryStore()
	}
	store, err := imagestore.NewS3Store(s.Endpoint, s.AccessKey, s.SecretKey, s.Bucket, s.Region, logger)
	if err != nil {
		logger.Error("failed to init object storage, using memory image store", "error", err)
		return imagestore.NewMemoryStore()
	}
	logger.Info("s3 image store enabled", "bucket", s.Bucket)
	return store
}

func provideClassifier(cfg *config.Config) detection.Classifier {
	return detection.NewRandomClassifier(util.NewLockedRand(cfg.Detection.ClassifierSeed), cfg.Detection.SimulatedLatency)
}

func provideDetectionConfig(cfg *config.Config) detection.Config {
	return detection.Config{
		MaxImageBytes:    cfg.Detection.MaxImageBytes,
		AllowedMimeTypes: cfg.Detection.AllowedMimeTypes,
	}
}

func provideChatConfig(cfg *config.Config) chatbot.Config {
	return chatbot.Config{TopTrending: cfg.Chat.TopTrending}
}

func provideResponder(cfg *config.Config, logger *slog.Logger) *chatbot.Responder {
	loader := chatbot.NewCatalogLoader(cfg.Chat.CatalogPath, logger)
	return chatbot.NewResponder(loader.Catalog(), util.NewLockedRand(cfg.Chat.RandomSeed))
}

func provideChatStore(cfg *config.Config, b *backends) chatbot.Store {
	if b.valkey != nil {
		return chatstore.NewValkeyStore(b.valkey, cfg.Chat.Redis.Prefix, cfg.Chat.MaxTracked, cfg.Chat.Redis.DisplayTTL)
	}
	return chatstore.NewMemoryStore(cfg.Chat.MaxTracked)
}
