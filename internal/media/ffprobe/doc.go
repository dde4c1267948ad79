// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Result.VideoInfo condenses the probe into the media.SourceInfo the raw
// frame decoder needs, estimating the frame count when the container does
// not carry one.
package ffprobe
