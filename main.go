package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tree-crawler/internal/crawl"
	"tree-crawler/internal/database"
	"tree-crawler/internal/extract"
	"tree-crawler/internal/handlers"
	"tree-crawler/internal/logging"
	"tree-crawler/internal/startup"
)

func main() {
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Crawl generation ids only ever increase; the new crawl is one past the
	// highest stored generation.
	crawlID, err := db.NextCrawlID(ctx)
	if err != nil {
		startup.LogFatal("Failed to determine crawl id: %v", err)
	}
	logging.Info("Starting crawl generation %d", crawlID)

	units := crawl.Partition(config.Roots, config.UnitSize)
	if len(units) == 0 {
		startup.LogFatal("No directories found under configured roots")
	}

	// All units are enqueued before the workers start; an empty channel is
	// how a worker recognizes completion.
	work := make(chan crawl.WorkUnit, len(units))
	for _, unit := range units {
		work <- unit
	}
	commands := make(chan crawl.Command, config.NumWorkers)

	extractor := extract.New(config.ExtractorPath)
	pool := crawl.NewPool(db, extractor, crawlID, config.NumWorkers)

	srv := startOpsServer(config, db, pool)

	// Forward termination signals as Stop commands, one per worker. Stop
	// takes effect between units; in-flight units run to completion.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info("Received %s, stopping workers", sig)
		for i := 0; i < config.NumWorkers; i++ {
			commands <- crawl.Stop
		}
	}()

	pool.Start(ctx, work, commands)
	pool.Wait()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Ops server shutdown: %v", err)
	}
}

// startOpsServer serves health and metrics in the background.
func startOpsServer(config *startup.Config, db *database.Database, pool *crawl.Pool) *http.Server {
	router := mux.NewRouter()
	handlers.New(db, pool).Register(router)
	if config.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler())
	}

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Info("Ops server listening on :%s", config.Port)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logging.Error("Ops server error: %v", err)
		}
	}()

	return srv
}
