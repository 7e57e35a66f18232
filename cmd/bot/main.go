package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"dramahub/internal/catalog"
	"dramahub/internal/ingest"
	"dramahub/internal/nav"
	"dramahub/internal/ops"
	"dramahub/internal/telegram"
	"dramahub/pkg/utils"
)

func main() {
	cfg, err := utils.LoadBotConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := zl.Sugar()

	// The catalog is the only shared mutable state; everything else
	// holds it by reference.
	store := catalog.NewStore()
	hub := ops.NewHub()
	admission := ingest.NewAdmission(cfg.AdminIDs, ingest.Policy(cfg.AdminPolicy))
	pipeline := ingest.NewPipeline(admission, store, hub, logger)
	engine := nav.NewEngine(store, admission)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatalw("telegram connect failed", "err", err)
	}
	bot := telegram.New(api, engine, pipeline, cfg.IngestChannel, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	tokens := ops.TokenService{
		Secret:   []byte(cfg.OpsSecret),
		Issuer:   cfg.OpsIssuer,
		Duration: cfg.OpsTokenTTL,
	}
	ops.NewHandler(store, hub, tokens, cfg.OpsKey, logger).RegisterRoutes(router)

	httpSrv := &http.Server{Addr: cfg.OpsAddr, Handler: router}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Infow("ops server listening", "addr", cfg.OpsAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Infow("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		logger.Errorw("server error", "err", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("http shutdown error", "err", err)
	}

	wg.Wait()
	logger.Info("stopped")
}
