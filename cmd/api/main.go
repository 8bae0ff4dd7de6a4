package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"taboo.local/gee"
	"taboo.local/gee/middleware"
	"taboo.local/internal/app/videolink"
	"taboo.local/internal/app/videolink/backend"
	vlcache "taboo.local/internal/app/videolink/cache"
	"taboo.local/internal/app/videolink/httpapi"
	"taboo.local/internal/app/videolink/repo"
	"taboo.local/internal/app/videolink/stats"
	"taboo.local/internal/platform/auth"
	platformcache "taboo.local/internal/platform/cache"
	"taboo.local/internal/platform/config"
	"taboo.local/internal/platform/db"
	"taboo.local/internal/platform/httpmiddleware"
	"taboo.local/internal/platform/httpserver"
	"taboo.local/internal/platform/metrics"
	"taboo.local/internal/platform/migrate"
	"taboo.local/internal/platform/ratelimit"
	"taboo.local/internal/platform/trace"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cfg := config.Load()

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h).With("service", cfg.ServiceName))

	for name, base := range map[string]string{"WEB_BASE_URL": cfg.WebBaseURL, "SHARE_BASE_URL": cfg.ShareBaseURL} {
		if base == "" {
			continue
		}
		if err := videolink.ValidateBaseURL(base); err != nil {
			log.Fatalf("%s=%q: %v", name, base, err)
		}
	}

	metrics.Init()

	if cfg.TracingEnabled {
		shutdown := trace.InitTrace(cfg.OtlpGrpcEndpoint, cfg.OtlpServiceName, version)
		if shutdown == nil {
			slog.Error("trace init failed")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					slog.Error("trace shutdown failed", "err", err)
				}
			}()
		}
	} else {
		slog.Warn("tracing disabled by config", "TRACING_ENABLED", false)
	}

	// DB, optional: without it links are still encoded but not recorded.
	var dbPool *pgxpool.Pool
	if cfg.DBDSN != "" {
		dbCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		pool, err := db.New(dbCtx, cfg.DBDSN)
		if err != nil {
			cancel()
			log.Fatal(err)
		}
		if err := pool.Ping(dbCtx); err != nil {
			cancel()
			log.Fatal(err)
		}
		cancel()
		dbPool = pool
		defer dbPool.Close()
		slog.Info("database connected")

		if cfg.MigrateOnStart {
			migCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			res, err := migrate.Up(migCtx, dbPool, migrate.Options{Dir: cfg.MigrationsDir})
			cancel()
			if err != nil {
				log.Fatal(err)
			}
			slog.Info("migrations applied", "source", res.Source, "applied", len(res.AppliedFiles), "skipped", len(res.SkippedFiles))
		}
	} else {
		slog.Warn("DB_DSN empty, share storage and click stats disabled")
	}

	// Redis, optional: without it the content cache is L1 only.
	var redisClient *redis.Client
	if rc, err := platformcache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		slog.Warn("redis unavailable, running without shared cache", "addr", cfg.RedisAddr, "err", err)
	} else {
		redisClient = rc
		defer redisClient.Close()
	}

	var limiter ratelimit.Allower
	switch {
	case !cfg.RateLimitEnabled:
		slog.Warn("rate limit disabled by config", "RATELIMIT_ENABLED", false)
	case cfg.RateLimitBackend == "redis" && redisClient != nil:
		limiter = ratelimit.NewLimiter(redisClient)
	default:
		slog.Info("using in-process rate limiter")
		limiter = ratelimit.NewLocalLimiter()
	}

	// content cache: 100k ids in L1, one minute locally, CONTENT_CACHE_TTL in Redis
	localCache, err := vlcache.NewLocalCache(100_000, time.Minute)
	if err != nil {
		log.Fatal(err)
	}
	contentCache := vlcache.NewContentCache(redisClient, localCache, cfg.ContentCacheTTL)
	defer contentCache.Close()

	backendClient, err := backend.NewClient(cfg.BackendURL, cfg.BackendToken, cfg.BackendTimeout, nil)
	if err != nil {
		log.Fatalf("BACKEND_URL=%q: %v", cfg.BackendURL, err)
	}
	contentRepo := repo.NewContentRepo(backendClient, contentCache)

	var shares httpapi.ShareStore
	var sharesRepo *repo.SharesRepo
	var collector stats.Collector
	var kafkaConsumer *stats.KafkaConsumer
	var channelConsumer *stats.Consumer
	if dbPool != nil {
		// 1M shared videos at 1% false positives
		bloomFilter := vlcache.NewBloomFilter(1_000_000, 0.01)
		sharesRepo = repo.NewSharesRepo(dbPool, bloomFilter)
		warmCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if n, err := sharesRepo.WarmBloom(warmCtx); err != nil {
			slog.Warn("bloom warmup failed", "err", err)
		} else {
			slog.Info("bloom warmed", "content_ids", n, "estimated_distinct", bloomFilter.Count())
		}
		cancel()
		shares = sharesRepo

		sink := stats.NewPGSink(dbPool)
		if cfg.KafkaEnabled {
			slog.Info("collecting clicks through kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
			collector = stats.NewKafkaCollector(cfg.KafkaBrokers, cfg.KafkaTopic)
			kafkaConsumer = stats.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, sink)
		} else {
			slog.Info("collecting clicks through channel")
			channelCollector := stats.NewChannelCollector(10000)
			collector = channelCollector
			channelConsumer = stats.NewConsumer(sink, channelCollector)
		}
	}

	// JWT
	ts, err := auth.NewHS256Service(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		log.Fatal(err)
	}

	deps := httpapi.Deps{
		Lookup:        contentRepo,
		Shares:        shares,
		Collector:     collector,
		Tokens:        ts,
		Limiter:       limiter,
		WebBaseURL:    cfg.WebBaseURL,
		ShareBaseURL:  cfg.ShareBaseURL,
		LookupTimeout: cfg.BackendTimeout,
	}

	r := gee.New()
	r.Use(gee.Recovery(), middleware.ReqID(), middleware.AccessLog(), httpmiddleware.Metrics(), httpmiddleware.TraceName())

	httpapi.RegisterPublicRoutes(r, deps)
	httpapi.RegisterAPIRoutes(r.Group("/api/v1"), deps)

	r.GET("/healthz", func(ctx *gee.Context) {
		ctx.String(http.StatusOK, "ok")
	})

	publicHandler := http.Handler(r)
	if cfg.TracingEnabled {
		publicHandler = otelhttp.NewHandler(r, "http")
	}
	publicSrv := httpserver.New(cfg, publicHandler)

	// loopback / private network only
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if dbPool == nil {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready (no db)"))
			return
		}
		pingCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := dbPool.Ping(pingCtx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("db ping failed"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("db ready"))
	})
	adminMux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"service_name": cfg.ServiceName,
			"version":      version,
			"commit":       commit,
			"build_time":   buildTime,
			"go_version":   runtime.Version(),
		})
	})
	if cfg.PprofEnabled {
		adminMux.HandleFunc("/debug/pprof/", pprof.Index)
		adminMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		adminMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		adminMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		adminMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	adminSrv := httpserver.NewAdmin(cfg, adminMux)

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errch := make(chan error, 2)
	go func() {
		errch <- httpserver.RunWithGracefulShutdownContext(publicSrv, cfg.ShutdownTimeout, stopCtx)
	}()
	go func() {
		errch <- httpserver.RunWithGracefulShutdownContext(adminSrv, cfg.ShutdownTimeout, stopCtx)
	}()
	slog.Info("listening", "addr", cfg.Addr, "admin_addr", cfg.AdminAddr, "version", version)

	consumersDone := make(chan struct{})
	go func() {
		defer close(consumersDone)
		switch {
		case kafkaConsumer != nil:
			defer kafkaConsumer.Close()
			kafkaConsumer.Run(stopCtx)
		case channelConsumer != nil:
			// returns once the collector is closed after the public server drained
			channelConsumer.Run(context.Background())
		}
	}()
	if sharesRepo != nil {
		go sharesRepo.RefreshBloom(stopCtx, cfg.BloomRefreshInterval)
	}

	err = <-errch
	if err != nil {
		stop()
		select {
		case <-errch:
		case <-time.After(cfg.ShutdownTimeout + time.Second):
		}
		log.Fatal(err)
	}

	stop()
	<-errch

	if !closeAndDrain(collector, consumersDone, cfg.ShutdownTimeout) {
		slog.Warn("click consumer did not drain in time")
	}
}
