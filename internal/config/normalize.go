package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizePlayback()
	c.normalizeTracking()
	c.normalizeExport()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SnapshotDir) == "" {
		c.Paths.SnapshotDir = defaultSnapshotDir
	}
	if c.Paths.SnapshotDir, err = expandPath(c.Paths.SnapshotDir); err != nil {
		return fmt.Errorf("paths.snapshot_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
}

func (c *Config) normalizePlayback() {
	if c.Playback.FallbackFPS == 0 {
		c.Playback.FallbackFPS = defaultFallbackFPS
	}
}

func (c *Config) normalizeTracking() {
	if c.Tracking.MaxCorners == 0 {
		c.Tracking.MaxCorners = defaultMaxCorners
	}
	if c.Tracking.QualityLevel == 0 {
		c.Tracking.QualityLevel = defaultQualityLevel
	}
	if c.Tracking.MinDistance == 0 {
		c.Tracking.MinDistance = defaultMinDistance
	}
	if c.Tracking.BlockSize == 0 {
		c.Tracking.BlockSize = defaultBlockSize
	}
	if c.Tracking.FlowWindow == 0 {
		c.Tracking.FlowWindow = defaultFlowWindow
	}
	if c.Tracking.FlowLevels == 0 {
		c.Tracking.FlowLevels = defaultFlowLevels
	}
	if c.Tracking.FlowIterations == 0 {
		c.Tracking.FlowIterations = defaultFlowIterations
	}
	if c.Tracking.FlowEpsilon == 0 {
		c.Tracking.FlowEpsilon = defaultFlowEpsilon
	}
}

func (c *Config) normalizeExport() {
	c.Export.Format = strings.ToLower(strings.TrimSpace(c.Export.Format))
	if c.Export.Format == "" {
		c.Export.Format = defaultExportFormat
	}
	c.Export.SequenceFormat = strings.ToLower(strings.TrimSpace(c.Export.SequenceFormat))
	switch c.Export.SequenceFormat {
	case "":
		c.Export.SequenceFormat = defaultSequenceFormat
	case "jpeg":
		c.Export.SequenceFormat = "jpg"
	}
	if c.Export.Quality == 0 {
		c.Export.Quality = defaultExportQuality
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval == 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.HeartbeatInterval == 0 {
		c.Workflow.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.Workflow.HeartbeatTimeout == 0 {
		c.Workflow.HeartbeatTimeout = defaultHeartbeatTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
