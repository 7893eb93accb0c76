package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kodbank/internal/config"
	"kodbank/internal/db"
	"kodbank/internal/game"
	httpServer "kodbank/internal/http"
	"kodbank/internal/http/handlers"
	"kodbank/internal/http/middleware"
	"kodbank/internal/logger"
	"kodbank/internal/market"
	"kodbank/internal/repository"
	"kodbank/internal/rng"
	"kodbank/internal/service"
	"kodbank/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store repository.Store
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool := db.Connect(cfg.DatabaseURL)
		defer pool.Close()
		store = repository.NewPgStore(pool)
	default:
		logger.Warn("using in-memory storage, data is lost on restart")
		store = repository.NewMemoryStore()
	}

	var revocations service.Revocations
	if rdb := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		defer rdb.Close()
		middleware.UseRedis(rdb)
		revocations = service.NewRedisRevocations(rdb)
	}

	src := rng.Default()
	sim := market.NewSimulator(market.SimulatorConfig{
		Interval:    cfg.MarketTick,
		EventLogCap: cfg.MarketEventLog,
	}, src)
	hub := ws.NewHub()
	sim.Subscribe(hub)
	go sim.Run(ctx)

	monitor := service.NewStoreMonitor(store, cfg.StoreHealthInterval)
	go monitor.Run(ctx)

	sessions := service.NewSessionManager(cfg.JWTSecret, cfg.SessionTTL, revocations)
	rewards := service.NewRewardService(store, game.NewWheel(src), game.NewBonusDropper(src))
	h := &handlers.Handler{
		Auth:          service.NewAuthService(store, sessions, service.LogOTPSender{}),
		Sessions:      sessions,
		Directory:     service.NewDirectoryService(store),
		Rewards:       rewards,
		Ledger:        service.NewLedgerService(store, sim, service.UnconditionalPolicy{}),
		Dashboard:     service.NewDashboardService(rewards, sim, market.NewTrendGenerator(src, time.Now)),
		Market:        sim,
		SecureCookies: cfg.SecureCookies,
	}

	r := gin.Default()

	// CORS for the browser frontend
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, cfg, httpServer.Deps{
		Handler:   h,
		Health:    handlers.NewHealthHandler(store, cfg.StorageDriver, version),
		Readiness: monitor,
		Hub:       hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exited")
}
