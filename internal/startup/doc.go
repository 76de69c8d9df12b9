// Package startup loads and validates crawler configuration from environment
// variables and logs the effective settings at boot.
package startup
