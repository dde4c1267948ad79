package media

import (
	"time"

	"videolab/internal/frame"
)

// SourceInfo describes a decodable video source.
type SourceInfo struct {
	Width      int
	Height     int
	FrameCount int
	FPS        float64
	Codec      string
	Duration   time.Duration
}

// Source yields decoded frames in presentation order.
//
// Implementations are not safe for concurrent use; callers serialize access.
type Source interface {
	// Info reports the source geometry and timing. It is constant for the
	// lifetime of the source.
	Info() SourceInfo
	// Seek positions the source so the next ReadNext returns the frame at
	// index.
	Seek(index int) error
	// ReadNext decodes and returns the next frame, or io.EOF once the
	// source is exhausted.
	ReadNext() (*frame.Frame, error)
	Close() error
}

// Sink consumes frames in presentation order.
type Sink interface {
	Write(f *frame.Frame) error
	// Close finalizes the output. The sink is unusable afterwards.
	Close() error
}

// ReadAt positions src at index and decodes a single frame.
func ReadAt(src Source, index int) (*frame.Frame, error) {
	if err := src.Seek(index); err != nil {
		return nil, err
	}
	return src.ReadNext()
}
