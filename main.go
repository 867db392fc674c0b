package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ad-funnel-gate/auth"
	"ad-funnel-gate/backend"
	"ad-funnel-gate/cache"
	"ad-funnel-gate/config"
	_ "ad-funnel-gate/docs" // Swagger docs
	"ad-funnel-gate/funnel"
	"ad-funnel-gate/handler"
	appLogger "ad-funnel-gate/logger"
	"ad-funnel-gate/middleware"
	redisClient "ad-funnel-gate/redis"
	"ad-funnel-gate/security"
	"ad-funnel-gate/storage"

	"github.com/rs/zerolog/log"
)

// @title Ad Funnel Gate API
// @version 1.0
// @description Ad-gated download funnel with countdown pages, operator consoles, short links and per-user data.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @securityDefinitions.apikey ConsoleSession
// @in cookie
// @name funnel_client

// @tag.name Funnel
// @tag.description Ad pages, countdown gate and download

// @tag.name Console
// @tag.description Admin and developer console (fixed accounts)

// @tag.name Developer
// @tag.description User and role management

// @tag.name Users
// @tag.description End user sign-up and data bundles

// @tag.name Links
// @tag.description Short link redirects and QR codes

// @tag.name System
// @tag.description Health checks and system metrics

func main() {
	appLogger.Initialize()

	cfg := config.MustLoadConfig()
	appLogger.Configure(cfg.LogLevel, cfg.LogFormat)
	log.Info().Msg("Configuration loaded successfully")

	rdb := redisClient.NewClient(cfg.Redis)

	cacheClient, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache")
	}

	buckets := storage.NewBuckets(rdb, time.Duration(cfg.Funnel.GateTTLHours)*time.Hour)
	store := funnel.NewStore(rdb, cfg.Funnel.UpdateRetries)
	flow := funnel.NewFlow(store, buckets, cfg.Funnel.EnforceGate)

	console, err := auth.NewHardcodedProvider(buckets,
		time.Duration(cfg.Auth.SessionTimeoutHours)*time.Hour,
		time.Duration(cfg.Auth.IdleTimeoutHours)*time.Hour,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize console accounts")
	}

	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("auth.jwt_secret is empty, end user tokens will not verify")
	}
	remote := backend.New(cfg.Backend)
	identity := auth.NewDelegatedProvider(
		auth.NewJWTManager(cfg.Auth.JWTSecret),
		remote,
		cacheClient,
		remote,
		time.Duration(cfg.Auth.RoleResolveWaitMS)*time.Millisecond,
	)

	var urlScanner *security.URLScanner
	if cfg.Security.URLScanningEnabled {
		urlScanner = security.NewURLScanner(cfg.Security)
	}
	log.Info().
		Bool("url_scanning_enabled", cfg.Security.URLScanningEnabled).
		Bool("blocklist_enabled", cfg.Security.BlocklistEnabled).
		Bool("safe_browsing_enabled", cfg.Security.SafeBrowsingAPIKey != "").
		Msg("URL security scanner initialized")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	detector := security.NewBotDetector(cfg.Security)
	go detector.Run(ctx, time.Minute)
	botProtection := middleware.NewBotProtection(detector, cfg.Security.BotDetectionEnabled, rdb)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go rateLimiter.Run(ctx, time.Minute)

	sweepInterval := time.Duration(cfg.Auth.SweepIntervalSeconds) * time.Second
	go auth.RunSweeper(ctx, console, sweepInterval)

	h := handler.New(handler.Deps{
		Config:   cfg,
		Redis:    rdb,
		Cache:    cacheClient,
		Store:    store,
		Flow:     flow,
		Console:  console,
		Identity: identity,
		Backend:  remote,
		Scanner:  urlScanner,
		Bots:     botProtection,
	})

	serverAddress := fmt.Sprintf("%s:%s", cfg.WebServer.IP, cfg.WebServer.Port)
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      h.Router(rateLimiter, botProtection),
		ReadTimeout:  time.Duration(cfg.WebServer.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WebServer.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().
			Str("address", serverAddress).
			Str("scheme", cfg.WebServer.Scheme).
			Msg("Starting server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.WebServer.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	cacheClient.Close()

	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Redis connection")
	}

	log.Info().Msg("Server stopped gracefully")
}
