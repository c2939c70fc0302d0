package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"chefgpt-server/internal/config"
	domain "chefgpt-server/internal/domain/conversation"
	"chefgpt-server/internal/infrastructure/auth"
	"chefgpt-server/internal/infrastructure/database"
	"chefgpt-server/internal/infrastructure/gateway"
	"chefgpt-server/internal/infrastructure/lock"
	"chefgpt-server/internal/infrastructure/repository/conversationrepo"
	"chefgpt-server/internal/interfaces/httpserver"
	"chefgpt-server/pkg/telemetry"
)

func newStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("using in-memory transcript store, data is lost on restart")
		return conversationrepo.NewInMemoryStore(), func() {}, nil

	case config.StoreDriverMongo:
		store, err := conversationrepo.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		cleanup := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Close(closeCtx); err != nil {
				log.Error().Err(err).Msg("close mongo")
			}
		}
		return store, cleanup, nil
	}

	driver := database.DriverPostgres
	if cfg.StoreDriver == config.StoreDriverSQLite {
		driver = database.DriverSQLite
	}
	db, err := database.Connect(database.Config{
		Driver:          driver,
		DSN:             cfg.DatabaseURL,
		SQLitePath:      cfg.SQLitePath,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db, driver, log); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
	}
	return conversationrepo.NewGormStore(db), cleanup, nil
}

func newLocker(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Locker, func(), error) {
	if cfg.RedisURL == "" {
		return lock.NewLocalLocker(), func() {}, nil
	}
	locker, err := lock.NewRedisLocker(ctx, cfg.RedisURL, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return locker, func() { _ = locker.Close() }, nil
}

func newGateway(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Gateway, error) {
	profile := cfg.Assistant
	return gateway.New(ctx, gateway.Settings{
		Provider:        cfg.GatewayProvider,
		APIKey:          cfg.GatewayAPIKey(),
		BaseURL:         cfg.GatewayBaseURL(),
		Model:           profile.Model,
		Temperature:     profile.Temperature,
		MaxOutputTokens: profile.MaxOutputTokens,
		ThinkingBudget:  profile.ThinkingBudget,
		IncludeThoughts: profile.IncludeThoughts,
	}, log)
}

func newResolver(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Resolver, func(), error) {
	resolver, err := auth.NewResolver(ctx, auth.Config{
		Secret:    cfg.JWTSecret,
		JWKSURL:   cfg.AuthJWKSURL,
		Issuer:    cfg.AuthIssuer,
		Audience:  cfg.AuthAudience,
		CacheSize: cfg.AuthCacheSize,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	return resolver, resolver.Close, nil
}

func newSanitizer(cfg *config.Config) *telemetry.Sanitizer {
	salt := cfg.LogPIISalt
	if salt == "" {
		salt = cfg.ServiceName
	}
	return telemetry.NewSanitizer(telemetry.ParsePIILevel(cfg.LogPIILevel), salt)
}

func newService(store domain.Store, gw domain.Gateway, locker domain.Locker, cfg *config.Config, log zerolog.Logger, sanitizer *telemetry.Sanitizer) domain.Service {
	return domain.NewService(store, gw, locker, domain.Config{
		SystemInstruction: cfg.Assistant.SystemInstruction,
		ListLimit:         cfg.ListLimit,
		TitleMaxLength:    cfg.TitleMaxLength,
		GatewayTimeout:    cfg.GatewayTimeout,
		LockTTL:           cfg.LockTTL,
	}, log, domain.WithSanitizer(sanitizer))
}

func newHTTPServer(cfg *config.Config, log zerolog.Logger, service domain.Service, resolver *auth.Resolver, store domain.Store) *httpserver.HttpServer {
	return httpserver.New(cfg, log, service, resolver, store)
}
