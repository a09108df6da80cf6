package main

// ENTRY POINT

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"steam-topup-bot/internal/bot"
	"steam-topup-bot/internal/config"
	"steam-topup-bot/pkg/funpay"
	"steam-topup-bot/pkg/logger"
	"steam-topup-bot/pkg/schedule"
	"steam-topup-bot/pkg/steamapi"
)

func main() {
	_ = godotenv.Load()

	zapLogger, err := logger.New()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("Failed to load config", zap.Error(err))
	}
	zapLogger.Info("Configuration loaded",
		zap.Bool("auto_refund", cfg.AutoRefund),
		zap.Bool("auto_deactivate", cfg.AutoDeactivate),
		zap.Float64("min_balance", cfg.MinBalance),
		zap.String("category_id", cfg.CategoryID),
		zap.Duration("session_ttl", cfg.SessionTTL))

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	steamClient := steamapi.NewClient(
		cfg.SteamAPIBaseURL,
		cfg.SteamAPIUser,
		cfg.SteamAPIPass,
		cfg.ServiceID,
		cfg.HTTPRequestTimeout,
		zapLogger,
	)
	if err := steamClient.Connect(ctx); err != nil {
		zapLogger.Fatal("Failed to authenticate with provider", zap.Error(err))
	}

	fp := funpay.NewClient(cfg.FunpayBaseURL, cfg.FunpayToken, cfg.HTTPRequestTimeout, zapLogger)

	store := bot.NewStore(cfg.SessionTTL, zapLogger)
	comp := bot.NewCompensator(fp, cfg.AutoRefund, cfg.AdminChatID, zapLogger)
	intake := bot.NewIntake(store, fp, steamClient, comp, cfg.CategoryID, zapLogger)
	payments := bot.NewPayments(
		steamClient,
		fp,
		comp,
		decimal.NewFromFloat(cfg.MinBalance),
		cfg.AutoDeactivate,
		cfg.CategoryID,
		zapLogger,
	)
	engine := bot.NewEngine(store, fp, steamClient, payments, zapLogger)
	b := bot.New(fp, store, intake, engine, zapLogger)

	sched := schedule.New(zapLogger)
	sched.Register(schedule.Job{
		Name:     "steam-token-refresh",
		Interval: cfg.TokenRefreshInterval,
		Handler:  steamClient.RefreshToken,
	})

	runner := funpay.NewRunner(fp, cfg.PollDelay, zapLogger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(ctx) })
	g.Go(func() error { return b.Run(ctx, runner.Events(ctx)) })

	if err := g.Wait(); err != nil {
		zapLogger.Fatal("Bot stopped with error", zap.Error(err))
	}
	zapLogger.Info("Bot shutdown gracefully")
}
