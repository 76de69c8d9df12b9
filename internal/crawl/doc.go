// Package crawl implements the crawl execution engine.
//
// A pool of workers consumes work units (batches of directory paths) and
// control commands from two shared channels. For each unit a worker invokes
// the metadata extractor once, validates and normalizes the results into file
// records with content hashes, persists the whole unit in a single atomic
// batched insert, and runs cross-generation deletion detection for every
// directory the unit touched.
//
// The command channel has strict priority over work: each loop iteration
// polls it first, non-blocking. Pause parks the worker on the command channel
// until the next command arrives (there is no timeout). Stop, an unrecognized
// command, or an exhausted work channel terminate the worker, which then
// releases its database connection and drains any remaining units so no
// producer can block on an abandoned channel.
package crawl
