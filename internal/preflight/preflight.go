package preflight

import (
	"context"

	"videolab/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// MinExportSpace is the free-space floor for the output directory. Exports
// write whole re-encoded containers, so a nearly full disk fails late and
// wastes the run.
const MinExportSpace = 1 << 30 // 1 GiB

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckTool(ctx, "FFmpeg", cfg.FFmpegBinary(), "decodes sources and encodes exports"),
		CheckTool(ctx, "FFprobe", cfg.FFprobeBinary(), "inspects source metadata"),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Snapshot directory", cfg.Paths.SnapshotDir),
		CheckFreeSpace("Output disk space", cfg.Paths.OutputDir, MinExportSpace),
	}
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
