// Package playback drives interactive review of a video source.
//
// Controller owns the playhead: it clamps seeks and steps into range,
// renders frames through the live pipeline snapshot, and runs an optional
// real-time play loop that compensates for decode and render time when
// pacing frames. Detected feature points ride along with the playhead and,
// when enabled in the configuration, follow the content via optical flow as
// playback moves frame to frame.
package playback
