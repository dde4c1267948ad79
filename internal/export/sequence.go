package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"videolab/internal/frame"
	"videolab/internal/services"
)

// SequenceSink writes each frame as an individually numbered image file
// named frame_000000.ext, frame_000001.ext, and so on after the frame's
// index.
type SequenceSink struct {
	dir     string
	format  string
	written int
	closed  bool
}

// NewSequenceSink prepares dir for an image sequence in the given format:
// png, jpg, or webp.
func NewSequenceSink(dir, format string) (*SequenceSink, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "png", "jpg", "webp":
	default:
		return nil, services.Wrap(services.ErrValidation, "export", "sequence sink",
			fmt.Sprintf("unsupported image format %q", format), nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "export", "sequence sink", "create output directory", err)
	}
	return &SequenceSink{dir: dir, format: format}, nil
}

// Write implements media.Sink.
func (s *SequenceSink) Write(f *frame.Frame) error {
	if s.closed {
		return services.Wrap(services.ErrValidation, "export", "sequence sink", "sink closed", nil)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("frame_%06d.%s", f.Index, s.format))
	img := f.ToNRGBA()

	var err error
	switch s.format {
	case "png":
		err = imaging.Save(img, path)
	case "jpg":
		err = imaging.Save(img, path, imaging.JPEGQuality(95))
	case "webp":
		var file *os.File
		file, err = os.Create(path)
		if err == nil {
			err = webp.Encode(file, img, &webp.Options{Quality: 90})
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
		}
	}
	if err != nil {
		return services.Wrap(services.ErrTransient, "export", "sequence sink",
			fmt.Sprintf("encode %s", filepath.Base(path)), err)
	}
	s.written++
	return nil
}

// Close implements media.Sink. Image sequences need no finalization.
func (s *SequenceSink) Close() error {
	s.closed = true
	return nil
}

// Written reports how many files the sink has produced.
func (s *SequenceSink) Written() int { return s.written }
