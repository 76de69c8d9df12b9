// Package handlers implements the crawler's ops HTTP endpoints.
package handlers
