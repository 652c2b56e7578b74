package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"rebuyrnot/internal/config"
	"rebuyrnot/internal/db"
	"rebuyrnot/internal/notify"
	"rebuyrnot/internal/router"
	"rebuyrnot/internal/services"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)
	gin.SetMode(cfg.GinMode)

	// Initialize Database
	gdb, err := db.Open(cfg)
	if err != nil {
		slog.Error("database init failed", "error", err)
		os.Exit(1)
	}

	bus := notify.NewBus()

	limiter, redisClient, err := newRateLimiter(cfg, gdb)
	if err != nil {
		slog.Error("rate limiter init failed", "error", err)
		os.Exit(1)
	}

	catalog := services.NewCatalogStore(gdb, bus)
	reference := services.NewReferenceStore(gdb, bus)
	accounts := services.NewAccountService(gdb, bus, cfg.AdminEmails)

	// 并发预热缓存
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 30*time.Second)
	g, gctx := errgroup.WithContext(warmCtx)
	g.Go(func() error { return catalog.Refresh(gctx) })
	g.Go(func() error { return reference.Refresh(gctx) })
	g.Go(func() error { return accounts.GrantAdminRoles(gctx) })
	err = g.Wait()
	cancelWarm()
	if err != nil {
		slog.Error("startup warm-up failed", "error", err)
		os.Exit(1)
	}
	slog.Info("stores ready", "products", catalog.Count(), "total_votes", catalog.TotalVotes())

	listenCtx, stopListener := context.WithCancel(context.Background())
	if _, ok := limiter.(*services.TableLimiter); ok {
		// 后台清理过期的频率记录
		go services.NewRateLimitJanitor(gdb, cfg.VoteRateWindow, 10*time.Minute).Run(listenCtx)
	}
	listenerDone := make(chan struct{})
	if cfg.DBDriver == "postgres" {
		listener := notify.NewPGListener(cfg.DatabaseURL, bus)
		go func() {
			defer close(listenerDone)
			if err := listener.Run(listenCtx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("change listener stopped", "error", err)
			}
		}()
	} else {
		close(listenerDone)
	}

	r := router.New(router.Deps{
		SessionSecret: cfg.SessionSecret,
		SiteURL:       cfg.SiteURL,
		Catalog:       catalog,
		Reference:     reference,
		Votes:         services.NewVoteService(gdb, limiter, bus),
		Accounts:      accounts,
		Admin:         services.NewAdminService(gdb, bus),
		Submissions:   services.NewSubmissionService(gdb, bus),
		Tokens:        services.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	httpDone := make(chan struct{})
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				defer close(httpDone)
				return srv.Shutdown(ctx)
			},
			"background-workers": func(ctx context.Context) error {
				catalog.Close()
				reference.Close()
				stopListener()
				select {
				case <-listenerDone:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			},
			"database": func(ctx context.Context) error {
				// 等 HTTP 排空后再关库
				select {
				case <-httpDone:
				case <-ctx.Done():
				}
				return closeDB(gdb)
			},
			"redis": func(ctx context.Context) error {
				if redisClient == nil {
					return nil
				}
				return redisClient.Close()
			},
		},
	)

	exitCode := <-wait
	slog.Info("server exited", "code", exitCode)
	os.Exit(exitCode)
}

func setupLogger(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func newRateLimiter(cfg *config.Config, gdb *gorm.DB) (services.RateLimiter, *redis.Client, error) {
	if cfg.VoteRateLimit <= 0 {
		slog.Warn("vote rate limiting disabled")
		return services.NoopLimiter{}, nil, nil
	}

	switch cfg.RateLimitBackend {
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		slog.Info("vote rate limiter using redis", "limit", cfg.VoteRateLimit, "window", cfg.VoteRateWindow)
		return services.NewRedisLimiter(client, "rebuyrnot:votes:", cfg.VoteRateLimit, cfg.VoteRateWindow), client, nil
	default:
		slog.Info("vote rate limiter using database", "limit", cfg.VoteRateLimit, "window", cfg.VoteRateWindow)
		return services.NewTableLimiter(gdb, cfg.VoteRateLimit, cfg.VoteRateWindow), nil, nil
	}
}

func closeDB(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
