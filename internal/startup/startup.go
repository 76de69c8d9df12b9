package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"tree-crawler/internal/logging"
	"tree-crawler/internal/workers"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	GoVersion = runtime.Version()
)

// Config holds all crawler configuration
type Config struct {
	Roots          []string
	DatabaseDir    string
	ExtractorPath  string
	NumWorkers     int
	UnitSize       int
	Port           string
	MetricsEnabled bool

	// Derived paths
	DatabasePath string
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	logging.Info("tree-crawler %s (%s, %s)", Version, Commit, GoVersion)
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	rootsStr := getEnv("CRAWL_ROOTS", "")
	databaseDir := getEnv("DATABASE_DIR", "/database")
	extractorPath := getEnv("EXTRACTOR_PATH", "exiftool")
	// Directories per work unit. The batched insert binds parameters per file
	// found under those directories; lower this for file-dense trees so a
	// unit's records stay under the SQLite statement parameter cap.
	unitSize := getEnvInt("UNIT_SIZE", 16)
	port := getEnv("PORT", "8080")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)

	// Mixed workload: hashing is CPU-bound, extractor and database are I/O.
	numWorkers := workers.ForMixed(16)

	logging.Info("  CRAWL_ROOTS:     %s", rootsStr)
	logging.Info("  DATABASE_DIR:    %s", databaseDir)
	logging.Info("  EXTRACTOR_PATH:  %s", extractorPath)
	logging.Info("  CRAWL_WORKERS:   %d", numWorkers)
	logging.Info("  UNIT_SIZE:       %d", unitSize)
	logging.Info("  PORT:            %s", port)
	logging.Info("  METRICS_ENABLED: %v", metricsEnabled)
	logging.Info("  LOG_LEVEL:       %s", logging.GetLevel())

	if rootsStr == "" {
		return nil, fmt.Errorf("CRAWL_ROOTS must name at least one directory to crawl")
	}

	var roots []string
	for _, root := range strings.Split(rootsStr, ",") {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve crawl root %s: %w", root, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("crawl root %s: %w", abs, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("crawl root %s is not a directory", abs)
		}
		roots = append(roots, abs)
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("CRAWL_ROOTS must name at least one directory to crawl")
	}

	databaseDir, err := filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory: %w", err)
	}
	if err := os.MkdirAll(databaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if unitSize <= 0 {
		logging.Warn("  Invalid UNIT_SIZE, using default: 16")
		unitSize = 16
	}

	return &Config{
		Roots:          roots,
		DatabaseDir:    databaseDir,
		ExtractorPath:  extractorPath,
		NumWorkers:     numWorkers,
		UnitSize:       unitSize,
		Port:           port,
		MetricsEnabled: metricsEnabled,
		DatabasePath:   filepath.Join(databaseDir, "crawl.db"),
	}, nil
}

// LogFatal logs a fatal startup error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
