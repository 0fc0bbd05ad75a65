package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/material-desk/internal/bot"
	"github.com/Spok95/material-desk/internal/config"
	"github.com/Spok95/material-desk/internal/dialog"
	"github.com/Spok95/material-desk/internal/domain/inventory"
	"github.com/Spok95/material-desk/internal/domain/invoice"
	"github.com/Spok95/material-desk/internal/domain/users"
	"github.com/Spok95/material-desk/internal/infra/db"
	httpx "github.com/Spok95/material-desk/internal/infra/http"
	"github.com/Spok95/material-desk/internal/infra/invoices"
	"github.com/Spok95/material-desk/internal/infra/logger"
	"github.com/Spok95/material-desk/internal/infra/store"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	path := "config/example.yaml"
	if p := os.Getenv("APP_CONFIG"); p != "" {
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := db.Migrate(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	materialStore := store.New(cfg.Store.BaseURL, cfg.Store.Token, cfg.Store.Timeout, log.With("component", "store"))
	invoiceRepo := invoice.NewMockRepo()

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, invoices.NewHandler(log.With("component", "invoices"), invoiceRepo))
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	log.Info("telegram authorized", "username", api.Self.UserName)

	b := bot.New(api, log.With("component", "bot"), bot.Deps{
		Users:     users.NewRepo(pool),
		States:    dialog.NewRepo(pool),
		Store:     materialStore,
		Invoices:  invoiceRepo,
		Journal:   inventory.NewRepo(pool),
		Links:     invoices.NewLinks(cfg.HTTP.PublicURL),
		AdminChat: cfg.Telegram.AdminChatID,
		PageSize:  cfg.List.PageSize,
	})
	if err := b.Run(ctx, cfg.Telegram.TimeoutSec); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bot stopped", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
