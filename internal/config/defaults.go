package config

const (
	defaultOutputDir   = "~/.local/share/videolab/output"
	defaultLogDir      = "~/.local/share/videolab/logs"
	defaultSnapshotDir = "~/.local/share/videolab/snapshots"

	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"

	defaultFallbackFPS = 30.0

	defaultMaxCorners   = 100
	defaultQualityLevel = 0.3
	defaultMinDistance  = 7.0
	defaultBlockSize    = 7

	defaultFlowWindow     = 15
	defaultFlowLevels     = 2
	defaultFlowIterations = 10
	defaultFlowEpsilon    = 0.03

	defaultExportFormat   = "mp4"
	defaultExportQuality  = 23
	defaultSequenceFormat = "png"

	defaultQueuePollInterval = 5
	defaultHeartbeatInterval = 15
	defaultHeartbeatTimeout  = 120

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:   defaultOutputDir,
			LogDir:      defaultLogDir,
			SnapshotDir: defaultSnapshotDir,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Playback: Playback{
			FallbackFPS: defaultFallbackFPS,
		},
		Tracking: Tracking{
			MaxCorners:     defaultMaxCorners,
			QualityLevel:   defaultQualityLevel,
			MinDistance:    defaultMinDistance,
			BlockSize:      defaultBlockSize,
			FlowWindow:     defaultFlowWindow,
			FlowLevels:     defaultFlowLevels,
			FlowIterations: defaultFlowIterations,
			FlowEpsilon:    defaultFlowEpsilon,
		},
		Export: Export{
			Format:         defaultExportFormat,
			Quality:        defaultExportQuality,
			SequenceFormat: defaultSequenceFormat,
		},
		Workflow: Workflow{
			QueuePollInterval: defaultQueuePollInterval,
			HeartbeatInterval: defaultHeartbeatInterval,
			HeartbeatTimeout:  defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
