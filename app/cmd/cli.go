package cmd

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/go-blog/app/configs"
	"github.com/Rakhulsr/go-blog/app/db/seeders"
	"github.com/Rakhulsr/go-blog/app/models/migrations"
	"github.com/Rakhulsr/go-blog/app/utils/logger"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

// NewApp builds the command tree. With no sub-command the server starts.
func NewApp(env configs.ENV) *cli.Command {
	log := logger.New(env.LogLevel)

	return &cli.Command{
		Name:  "go-blog",
		Usage: "multi-user blog server",
		Action: func(ctx context.Context, c *cli.Command) error {
			return Serve(ctx, env, log)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, c *cli.Command) error {
					return Serve(ctx, env, log)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := openMigrated(env, log)
					if err != nil {
						return err
					}
					defer closeDB(db, log)
					log.Info("migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Seed default categories, and demo content with --demo",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "demo",
						Usage: "number of demo users to create, each with posts and comments",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := openMigrated(env, log)
					if err != nil {
						return err
					}
					defer closeDB(db, log)

					if n := int(c.Int("demo")); n > 0 {
						return seeders.SeedDemo(ctx, db, n, log)
					}
					_, err = seeders.SeedCategories(ctx, db, log)
					return err
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate new session, encryption and CSRF keys into an env file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env-file",
						Value: ".env",
						Usage: "file the keys are written to",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					if err := configs.GenerateAndPrintSessionKeys(c.String("env-file")); err != nil {
						return err
					}
					log.Info("key generation complete")
					return nil
				},
			},
		},
	}
}

func openMigrated(env configs.ENV, log *logrus.Logger) (*gorm.DB, error) {
	db, err := configs.OpenConnection(env, log)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := migrations.AutoMigrate(db); err != nil {
		closeDB(db, log)
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB, log *logrus.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Warn("failed to close database")
	}
}
