package testsupport

import (
	"errors"
	"fmt"
	"io"
	"time"

	"videolab/internal/frame"
	"videolab/internal/media"
)

// SolidFrame returns a frame filled with a single color.
func SolidFrame(width, height int, r, g, b byte) *frame.Frame {
	f := frame.New(width, height)
	for i := 0; i < len(f.Pix); i += frame.BytesPerPixel {
		f.Pix[i] = r
		f.Pix[i+1] = g
		f.Pix[i+2] = b
	}
	return f
}

// SequenceFrames returns count frames where every pixel of frame i carries
// the value byte(i), so ordering stays checkable after processing.
func SequenceFrames(count, width, height int) []*frame.Frame {
	frames := make([]*frame.Frame, count)
	for i := range frames {
		v := byte(i)
		f := SolidFrame(width, height, v, v, v)
		f.Index = i
		frames[i] = f
	}
	return frames
}

// MemorySource serves pre-built frames as a media.Source.
type MemorySource struct {
	Frames []*frame.Frame
	FPS    float64
	// FailAt injects a read error when the frame at this index is
	// requested. Negative disables injection.
	FailAt int

	pos    int
	closed bool
}

// NewMemorySource wraps frames in a source reporting the given frame rate.
func NewMemorySource(frames []*frame.Frame, fps float64) *MemorySource {
	return &MemorySource{Frames: frames, FPS: fps, FailAt: -1}
}

func (s *MemorySource) Info() media.SourceInfo {
	var w, h int
	if len(s.Frames) > 0 {
		w, h = s.Frames[0].Width, s.Frames[0].Height
	}
	fps := s.FPS
	if fps <= 0 {
		fps = 30
	}
	return media.SourceInfo{
		Width:      w,
		Height:     h,
		FrameCount: len(s.Frames),
		FPS:        fps,
		Codec:      "rawvideo",
		Duration:   time.Duration(float64(len(s.Frames)) / fps * float64(time.Second)),
	}
}

func (s *MemorySource) Seek(index int) error {
	if s.closed {
		return errors.New("source closed")
	}
	if index < 0 || index >= len(s.Frames) {
		return fmt.Errorf("seek out of range: %d", index)
	}
	s.pos = index
	return nil
}

func (s *MemorySource) ReadNext() (*frame.Frame, error) {
	if s.closed {
		return nil, errors.New("source closed")
	}
	if s.pos >= len(s.Frames) {
		return nil, io.EOF
	}
	if s.FailAt >= 0 && s.pos == s.FailAt {
		return nil, errors.New("injected read failure")
	}
	f := s.Frames[s.pos].Clone()
	f.Index = s.pos
	s.pos++
	return f, nil
}

func (s *MemorySource) Close() error {
	s.closed = true
	return nil
}

// MemorySink collects frames written through the media.Sink interface.
type MemorySink struct {
	Frames []*frame.Frame
	// FailAt injects a write error once this many frames have been
	// accepted. Negative disables injection.
	FailAt int
	Closed bool
}

func NewMemorySink() *MemorySink {
	return &MemorySink{FailAt: -1}
}

func (s *MemorySink) Write(f *frame.Frame) error {
	if s.Closed {
		return errors.New("sink closed")
	}
	if s.FailAt >= 0 && len(s.Frames) == s.FailAt {
		return errors.New("injected write failure")
	}
	s.Frames = append(s.Frames, f.Clone())
	return nil
}

func (s *MemorySink) Close() error {
	s.Closed = true
	return nil
}
