package main

import (
	"context"
	"time"

	api "github.com/mind-engage/studyhub/internal/api/http"
	"github.com/mind-engage/studyhub/internal/app"
	"github.com/mind-engage/studyhub/internal/config"
	"github.com/mind-engage/studyhub/internal/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	a, err := app.New(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("startup failed", "err", err)
	}
	defer a.Close()

	log.Info("gateway starting", "mode", cfg.Mode, "db", cfg.DBDriver, "data_root", cfg.DataRoot)
	if err := api.Serve(context.Background(), cfg.HTTPAddr, api.NewRouter(a.Deps), log); err != nil {
		log.Error("server stopped", "err", err)
	}
}
