// Package pipeline composes per-frame processing: an ordered effect list,
// then overlay compositing, then cropping.
//
// The mutable State is what the control surface edits; frame processors never
// read it directly. Instead they call State.Snapshot and apply the returned
// immutable Snapshot, which freezes the effect list, pre-scales the overlay,
// and copies the crop rectangle. This split is what makes pipeline output a
// pure function of (frame, snapshot) and keeps concurrent playback and export
// from observing torn parameter updates.
package pipeline
