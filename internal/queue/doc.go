// Package queue persists export jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, heartbeat tracking, stuck-job recovery, and the status
// transitions the worker relies on. Jobs capture the source video, the
// project file describing the pipeline, the output target, and live
// progress so the CLI can observe a run without talking to the worker.
//
// The database is treated as transient storage for in-flight jobs rather
// than a long-term archive. Schema changes bump the version in schema.go;
// users clear the database to adopt the new schema.
package queue
