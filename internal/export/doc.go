// Package export renders a full source through the effects pipeline into a
// destination.
//
// Driver is the ordered frame pump shared by every export flavor; the
// destination decides the artifact. A rawvideo.Encoder produces a video
// container, while SequenceSink produces numbered image files. Progress is
// reported per frame so callers can surface it in a terminal bar or persist
// it to the job queue.
package export
