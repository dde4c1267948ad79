package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if err := c.validateTracking(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if c.Playback.FallbackFPS <= 0 {
		return errors.New("playback.fallback_fps must be positive")
	}
	return nil
}

func (c *Config) validateTracking() error {
	t := c.Tracking
	if t.MaxCorners <= 0 {
		return errors.New("tracking.max_corners must be positive")
	}
	if t.QualityLevel <= 0 || t.QualityLevel > 1 {
		return errors.New("tracking.quality_level must be between 0 and 1")
	}
	if t.MinDistance < 0 {
		return errors.New("tracking.min_distance must be >= 0")
	}
	if t.BlockSize <= 0 {
		return errors.New("tracking.block_size must be positive")
	}
	if t.BlockSize%2 == 0 {
		return errors.New("tracking.block_size must be odd")
	}
	if t.FlowWindow <= 0 {
		return errors.New("tracking.flow_window must be positive")
	}
	if t.FlowLevels < 0 {
		return errors.New("tracking.flow_levels must be >= 0")
	}
	if t.FlowIterations <= 0 {
		return errors.New("tracking.flow_iterations must be positive")
	}
	if t.FlowEpsilon <= 0 {
		return errors.New("tracking.flow_epsilon must be positive")
	}
	return nil
}

func (c *Config) validateExport() error {
	switch c.Export.Format {
	case "mp4", "avi", "mov":
	default:
		return fmt.Errorf("export.format must be one of mp4, avi, mov (got %q)", c.Export.Format)
	}
	if c.Export.Quality < 0 || c.Export.Quality > 51 {
		return errors.New("export.quality must be between 0 and 51")
	}
	switch c.Export.SequenceFormat {
	case "png", "jpg", "webp":
	default:
		return fmt.Errorf("export.sequence_format must be one of png, jpg, webp (got %q)", c.Export.SequenceFormat)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval": c.Workflow.QueuePollInterval,
		"workflow.heartbeat_interval":  c.Workflow.HeartbeatInterval,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
