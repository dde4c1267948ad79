// Package workflow runs queued export jobs in the background.
//
// A Manager polls the queue store for pending jobs, claims them one at a
// time, and hands each to a JobRunner that decodes the source, applies the
// job's project pipeline, and writes the requested output. While a job runs
// the manager maintains its heartbeat so a crashed worker's jobs can be
// reclaimed by the next one. Worker wraps a manager with a file lock so only
// one worker processes a given queue at a time.
package workflow
