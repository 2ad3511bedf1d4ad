package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/demo"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/identity"
	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/logger"
	"github.com/mrlokans/bookshelf/internal/profile"
	"github.com/mrlokans/bookshelf/internal/ratings"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/social"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, log *logger.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the server so no task outlives its stores.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	log.Info("server exiting")
}

func Run(cfg *config.Config, version string) {
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("starting bookshelf", "version", version, "store", cfg.Store.Backend, "identity", cfg.Identity.Mode)
	if cfg.Demo.Enabled {
		log.Info("demo mode enabled, write operations will be blocked")
	}
	ctx := context.Background()

	backend, err := OpenBackend(ctx, cfg.Store)
	if err != nil {
		log.Fatal("failed to open store", "error", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("error closing store", "error", err)
		}
	}()

	idm, err := identity.NewMiddleware(cfg.Identity)
	if err != nil {
		log.Fatal("failed to configure identity", "error", err)
	}

	healthChecks := map[string]http_controllers.Pinger{"store": backend.Pinger}

	// Catalog search, optionally cached in redis
	var searchCache catalog.Cache
	if cfg.Catalog.RedisURL != "" {
		redisCache, err := catalog.NewRedisCache(ctx, cfg.Catalog.RedisURL, cfg.Catalog.CacheTTL)
		if err != nil {
			log.Warn("catalog cache disabled", "error", err)
		} else {
			searchCache = redisCache
			healthChecks["catalog_cache"] = redisCache
			defer redisCache.Close()
		}
	}
	catalogClient := catalog.NewClient(catalog.Options{
		BaseURL:       cfg.Catalog.BaseURL,
		APIKey:        cfg.Catalog.APIKey,
		RatePerSecond: cfg.Catalog.RatePerSecond,
		Burst:         cfg.Catalog.Burst,
		Cache:         searchCache,
		Logger:        log,
	})

	coverCache, err := covers.NewCache(cfg.Covers.Dir)
	if err != nil {
		log.Warn("cover cache disabled", "error", err)
	}

	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Store.DatabasePath, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}, log)
		if err != nil {
			log.Fatal("failed to initialize task queue", "error", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error("error closing task client", "error", err)
			}
		}()
	}

	libraryCfg := library.Config{Store: backend.Shelves, Counters: backend.Counters, Logger: log}
	if taskClient != nil && coverCache != nil {
		libraryCfg.Covers = taskClient
	}
	librarySvc := library.NewService(libraryCfg)
	ratingsSvc := ratings.NewService(backend.Reviews, log)
	socialSvc := social.NewService(backend.Profiles, backend.Friends, log)
	facade := profile.NewFacade(librarySvc, ratingsSvc, socialSvc, log)

	routerCfg := http_controllers.RouterConfig{
		Catalog:        catalogClient,
		Shelves:        librarySvc,
		Entries:        librarySvc,
		Reviews:        ratingsSvc,
		Social:         socialSvc,
		Profiles:       facade,
		Identity:       idm,
		DemoMiddleware: demo.NewMiddleware(cfg.Demo.Enabled),
		HealthChecks:   healthChecks,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Version:        version,
		Logger:         log,
	}
	if coverCache != nil {
		routerCfg.CoverCache = coverCache
	}

	var (
		taskCancel      context.CancelFunc
		reconcileSched  *scheduler.ReconcileScheduler
		schedulerCancel context.CancelFunc
	)
	if taskClient != nil {
		if coverCache != nil {
			taskClient.Register(tasks.NewCacheCoverQueue(coverCache))
		}
		if backend.Counters != nil {
			taskClient.Register(tasks.NewReconcileShelfCountersQueue(librarySvc, log))
			routerCfg.Reconciler = taskClient
		}
		routerCfg.TaskStatus = taskClient

		var taskCtx context.Context
		taskCtx, taskCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if cfg.Reconcile.Enabled && backend.Counters != nil {
			reconcileSched = scheduler.NewReconcileScheduler(taskClient, cfg.Reconcile.Schedule, log)
			var schedCtx context.Context
			schedCtx, schedulerCancel = context.WithCancel(context.Background())
			if err := reconcileSched.Start(schedCtx); err != nil {
				log.Fatal("failed to start reconciliation scheduler", "error", err)
			}
		}
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if reconcileSched != nil {
			reconcileSched.Stop()
			schedulerCancel()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
			taskCancel()
		}
	}

	Serve(router, cfg, log, onShutdown)
}
