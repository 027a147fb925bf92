package main

import (
	"go.uber.org/zap"

	"github.com/cppla/inkblog/config"
	"github.com/cppla/inkblog/middleware"
	"github.com/cppla/inkblog/routes"
	"github.com/cppla/inkblog/services"
	"github.com/cppla/inkblog/utils"
)

func main() {
	cfg := config.Get()

	// Initialize logger early
	logger, err := utils.InitLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := config.OpenDatabase(cfg)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}

	rc := utils.NewRedis(cfg, logger)
	if rc != nil {
		defer func() { _ = rc.Close() }()
	}

	users := services.NewUserService(db, logger.Named("users"))
	categories := services.NewCategoryService(db, logger.Named("categories"))
	posts := services.NewPostService(db, logger.Named("posts"), users, categories)

	accessLogger, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		logger.Warn("gin access log disabled", zap.String("path", cfg.GinPath), zap.Error(err))
		accessLogger = nil
	}

	r := routes.SetupRouter(cfg, routes.Dependencies{
		Users:        users,
		Categories:   categories,
		Posts:        posts,
		Blacklist:    utils.NewTokenBlacklist(rc, logger.Named("blacklist")),
		Metrics:      middleware.NewMetrics("inkblog"),
		Logger:       logger,
		AccessLogger: accessLogger,
	})

	logger.Info("starting server", zap.String("port", cfg.AppPort), zap.String("driver", cfg.DBDriver))
	if err := utils.GraceServer(":"+cfg.AppPort, r, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}
