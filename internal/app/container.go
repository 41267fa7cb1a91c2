package app

import (
	"context"
	"log"
	"time"

	"account-service/internal/config"
	"account-service/internal/database"
	"account-service/internal/database/migrations"
	dbpostgres "account-service/internal/database/postgres"
	"account-service/internal/infrastructure/cache"
	"account-service/internal/infrastructure/storage"
	profileuc "account-service/internal/usecase/profile"

	"github.com/pressly/goose/v3"
)

type Container struct {
	Config  config.Config
	DB      database.DB
	Redis   *cache.Redis
	Avatars profileuc.AvatarStore
	Logger  *log.Logger
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	rds := cache.NewRedis(cfg.Redis, logger)

	var avatars profileuc.AvatarStore
	if cfg.Storage.S3Bucket != "" {
		store, err := storage.NewS3AvatarStore(ctx, cfg.Storage)
		if err != nil {
			_ = db.Close()
			_ = rds.Close()
			return nil, err
		}
		avatars = store
	} else if logger != nil {
		logger.Printf("[Storage] no S3 bucket configured, avatar uploads disabled")
	}

	return &Container{Config: cfg, DB: db, Redis: rds, Avatars: avatars, Logger: logger}, nil
}

func runMigrations(ctx context.Context, db database.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db.SQLDB(), ".")
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
