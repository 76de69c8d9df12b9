// Package metrics defines the Prometheus metrics exported by the crawler.
//
// All metrics are registered via promauto at package load and exposed by the
// ops HTTP server on /metrics. Three groups exist: crawl engine counters
// (units, records, worker states), extractor subprocess metrics, and database
// operation metrics.
package metrics
