package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pressly/goose/v3"

	"candlecast/configs"
	"candlecast/internal/handler"
	"candlecast/internal/repository"
	"candlecast/internal/router"
	"candlecast/internal/service"
	"candlecast/internal/storage"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations and exit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := configs.AppLoad()

	db, err := storage.Open(cfg.DBDSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if *migrateFlag {
		sqlDB, err := db.DB()
		if err != nil {
			logger.Error("failed to get sql.DB", "error", err)
			os.Exit(1)
		}
		if err := goose.SetDialect("postgres"); err != nil {
			logger.Error("goose: failed to set dialect", "error", err)
			os.Exit(1)
		}
		logger.Info("running database migrations")
		if err := goose.Up(sqlDB, "migrations"); err != nil {
			logger.Error("goose migration failed", "error", err)
			os.Exit(1)
		}
	}

	candleRepo := repository.NewGormCandleRepository(db)
	candleService := service.NewCandleService(candleRepo)
	candleHandler := handler.NewCandleHandler(candleService, logger)

	routerConfig := &router.Config{
		CandleHandler: candleHandler,
	}

	r := router.NewRouter(routerConfig)

	if err := r.Run(fmt.Sprintf(":%s", cfg.ServerPort)); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
