// Package rawvideo decodes and encodes video by piping raw RGB24 frames
// through ffmpeg.
//
// Decoder implements media.Source: it reads fixed-size frames from ffmpeg's
// stdout and seeks by either discarding frames or restarting the process
// with an input-side -ss at the target timestamp. Encoder implements
// media.Sink: it feeds frames to ffmpeg's stdin and finalizes the container
// on Close. Both capture ffmpeg's stderr so failures surface the tool's own
// diagnostics.
package rawvideo
