// Package preflight verifies the environment before work starts: the ffmpeg
// tools videolab shells out to, access to its directories, and free disk
// space for export output. The worker runs these checks at startup and the
// queue status command surfaces them.
package preflight
