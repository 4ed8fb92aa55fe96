package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	cfg       Config
	logger    *zap.SugaredLogger
	jwtSecret []byte // loaded from JWT_SECRET (fallback to dev default)
)

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = zl.Sync() }()
	logger = zl.Sugar()

	cfg = loadConfig()
	jwtSecret = []byte(cfg.JWTSecret)

	if err := initDB(cfg); err != nil {
		logger.Fatalw("database init failed", "error", err)
	}

	// Lightweight migrate command: `./financas migrate` runs AutoMigrate
	// and seeding then exits, even with DB_AUTO_MIGRATE off. Useful for CI
	// or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if !cfg.AutoMigrate {
			if err := migrateAndSeed(db); err != nil {
				logger.Fatalw("migration failed", "error", err)
			}
		}
		logger.Infow("migration and seeding completed")
		return
	}

	r := gin.Default()
	setupRoutes(r)

	logger.Infow("listening", "addr", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatalw("server exited", "error", err)
	}
}
