// Package logging provides leveled logging for the crawler.
//
// The level is read once from the LOG_LEVEL environment variable
// (debug, info, warn, error) or forced to debug via DEBUG=true.
// The default level is info.
package logging
