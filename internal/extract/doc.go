// Package extract invokes the external metadata extractor.
//
// The extractor is an opaque executable (exiftool-compatible) run once per
// work unit with the unit's paths; it emits a JSON array with one object per
// file. Each object's raw JSON is retained verbatim so the persistence layer
// can store it for audit alongside the normalized record.
package extract
