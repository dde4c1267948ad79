// Package media defines the decoder and encoder contracts shared by
// playback, tracking, and export.
//
// A Source produces frames in presentation order with random access via
// Seek; a Sink consumes them. Concrete implementations live in the ffprobe
// and rawvideo subpackages, which shell out to the FFmpeg tools; in-memory
// doubles for tests live in testsupport.
package media
