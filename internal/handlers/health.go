package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"

	"github.com/gorilla/mux"

	"tree-crawler/internal/crawl"
	"tree-crawler/internal/database"
	"tree-crawler/internal/logging"
	"tree-crawler/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusCrawling = "crawling"
)

// Handlers serves the ops endpoints for a running crawl.
type Handlers struct {
	db   *database.Database
	pool *crawl.Pool
}

// New creates the ops handlers.
func New(db *database.Database, pool *crawl.Pool) *Handlers {
	return &Handlers{db: db, pool: pool}
}

// Register attaches the ops routes to the router.
func (h *Handlers) Register(router *mux.Router) {
	router.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
}

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string       `json:"status"`
	Version string       `json:"version"`
	Crawl   crawl.Status `json:"crawl"`

	// System info
	GoVersion     string `json:"goVersion"`
	NumGoroutine  int    `json:"numGoroutine"`
	DBConnections int    `json:"dbConnections"`
}

// HealthCheck reports crawl progress and process health.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	status := h.pool.Status()

	response := HealthResponse{
		Status:        statusHealthy,
		Version:       startup.Version,
		Crawl:         status,
		GoVersion:     runtime.Version(),
		NumGoroutine:  runtime.NumGoroutine(),
		DBConnections: h.db.Stats().OpenConnections,
	}
	if status.ActiveWorkers > 0 {
		response.Status = statusCrawling
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.Error("Failed to encode health response: %v", err)
	}
}
