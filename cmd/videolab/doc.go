// Package main hosts the videolab CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into media
// inspection, pipeline exports, project file edits, queue maintenance, and
// the worker process that drains queued export jobs. It centralizes
// configuration resolution and store access so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
