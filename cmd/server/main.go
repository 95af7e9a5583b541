package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cshum/vipsgen/vips"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/dnscache"
	"go.uber.org/zap"

	"fastimage/internal/cache"
	"fastimage/internal/config"
	"fastimage/internal/decoder"
	"fastimage/internal/fetcher"
	httphandlers "fastimage/internal/http"
	"fastimage/internal/loader"
	"fastimage/internal/logger"
	"fastimage/internal/telemetry"
	"fastimage/internal/vipsdecoder"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var imageDecoder decoder.Decoder
	switch cfg.Decoder {
	case "vips":
		startVips(cfg, log)
		defer vips.Shutdown()
		imageDecoder = vipsdecoder.New()
	case "std":
		log.Info("Using pure-Go image decoder")
		imageDecoder = decoder.NewStd()
	default:
		log.Fatal("Unknown decoder", zap.String("decoder", cfg.Decoder))
	}

	imageCache, err := cache.NewCache(cfg.CacheType, cfg.CacheFileDir, cfg.CacheMaxEntries, log)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(reg)

	resolver := &dnscache.Resolver{}
	go fetcher.RefreshDNS(ctx, resolver, cfg.DNSCacheRefresh)

	imageFetcher := fetcher.New(fetcher.NewClient(resolver, cfg.HTTPTimeout), fetcher.Options{
		StrictStatus: cfg.StrictStatus,
		MaxBodyBytes: cfg.MaxImageBytes,
	})

	opts := []loader.Option{loader.WithMetrics(metrics)}
	if cfg.SingleFlight {
		opts = append(opts, loader.WithSingleFlight())
	}
	imageLoader := loader.New(imageCache, imageFetcher, imageDecoder, log, opts...)

	var placeholder httphandlers.Renderable
	if cfg.PlaceholderFile != "" {
		static, err := httphandlers.LoadStaticPlaceholder(cfg.PlaceholderFile)
		if err != nil {
			log.Fatal("Failed to load placeholder", zap.Error(err))
		}
		placeholder = static
	}

	handlers := httphandlers.New(cfg, log, imageLoader, placeholder, metrics)

	if len(cfg.WarmupURLs) > 0 {
		go imageLoader.Prefetch(ctx, cfg.WarmupURLs, cfg.WarmupWorkers)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httphandlers.NewRouter(handlers, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	log.Info("Server started",
		zap.Int("port", cfg.Port),
		zap.String("cache", cfg.CacheType),
		zap.String("decoder", cfg.Decoder),
		zap.Bool("single_flight", cfg.SingleFlight),
		zap.Bool("strict_status", cfg.StrictStatus),
	)

	<-ctx.Done()

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}

func startVips(cfg *config.Config, log *zap.Logger) {
	vipsConfig := &vips.Config{
		ConcurrencyLevel: cfg.VipsConcurrency,
		MaxCacheMem:      cfg.VipsMaxCacheMB * 1024 * 1024, // Convert MB to bytes
		MaxCacheFiles:    0,                                // Disable disk cache
		MaxCacheSize:     0,
		ReportLeaks:      false,
		CacheTrace:       false,
		VectorEnabled:    true,
	}

	// Map vips log levels to zap levels
	vips.SetLogging(func(domain string, level vips.LogLevel, message string) {
		if level >= vips.LogLevelError {
			log.Error("vips", zap.String("domain", domain), zap.Int("level", int(level)), zap.String("message", message))
		} else if level >= vips.LogLevelWarning {
			log.Warn("vips", zap.String("domain", domain), zap.Int("level", int(level)), zap.String("message", message))
		}
	}, vips.LogLevelWarning)

	vips.Startup(vipsConfig)

	log.Info("VIPS initialized",
		zap.Int("max_cache_mb", cfg.VipsMaxCacheMB),
		zap.Int("concurrency", cfg.VipsConcurrency),
	)
}
