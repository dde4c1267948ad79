// Package services defines shared utilities consumed by the export worker and
// external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across components.
//
// Use these helpers when wiring new processing logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
