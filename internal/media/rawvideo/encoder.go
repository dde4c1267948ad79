package rawvideo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"videolab/internal/frame"
	"videolab/internal/services"
)

// EncodeOptions describes the stream an Encoder accepts and the container it
// produces.
type EncodeOptions struct {
	Width  int
	Height int
	FPS    float64
	// Format selects the container: mp4, mov, or avi.
	Format string
	// Quality is on the CRF scale, 0-51, lower meaning better. For avi it
	// is remapped onto the mpeg4 q:v range.
	Quality int
}

// Encoder pipes RGB24 frames into an ffmpeg process that writes a video
// container. Frames must arrive in presentation order, and Close must be
// called for the container to be finalized. Not safe for concurrent use.
type Encoder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	opts   EncodeOptions
	closed bool
}

// NewEncoder starts an ffmpeg process writing to path, replacing any
// existing file.
func NewEncoder(ctx context.Context, binary, path string, opts EncodeOptions) (*Encoder, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, services.Wrap(services.ErrValidation, "rawvideo", "encode", "output dimensions unknown", nil)
	}
	if opts.FPS <= 0 {
		return nil, services.Wrap(services.ErrValidation, "rawvideo", "encode", "output frame rate unknown", nil)
	}
	args, err := encodeArgs(path, opts)
	if err != nil {
		return nil, err
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "rawvideo", "encode", "open stdin pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "rawvideo", "encode", "start ffmpeg", err)
	}
	return &Encoder{cmd: cmd, stdin: stdin, stderr: stderr, opts: opts}, nil
}

// encodeArgs builds the ffmpeg argument list for muxing raw RGB24 frames
// from stdin into the requested container. H.264 output pads odd dimensions
// by a pixel because yuv420p subsampling needs even sizes.
func encodeArgs(path string, opts EncodeOptions) ([]string, error) {
	args := []string{
		"-v", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", strconv.FormatFloat(opts.FPS, 'f', -1, 64),
		"-i", "-",
	}
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "mp4", "mov":
		args = append(args,
			"-c:v", "libx264",
			"-preset", "medium",
			"-crf", strconv.Itoa(clampInt(opts.Quality, 0, 51)),
			"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
			"-pix_fmt", "yuv420p",
			"-movflags", "+faststart",
		)
	case "avi":
		args = append(args,
			"-c:v", "mpeg4",
			"-q:v", strconv.Itoa(clampInt(opts.Quality/2, 2, 31)),
		)
	default:
		return nil, services.Wrap(services.ErrValidation, "rawvideo", "encode",
			fmt.Sprintf("unsupported container format %q", opts.Format), nil)
	}
	return append(args, path), nil
}

// Write implements media.Sink.
func (e *Encoder) Write(f *frame.Frame) error {
	if e.closed {
		return services.Wrap(services.ErrValidation, "rawvideo", "encode", "encoder closed", nil)
	}
	if f.Width != e.opts.Width || f.Height != e.opts.Height {
		return services.Wrap(services.ErrValidation, "rawvideo", "encode",
			fmt.Sprintf("frame is %dx%d, encoder expects %dx%d", f.Width, f.Height, e.opts.Width, e.opts.Height), nil)
	}
	if _, err := e.stdin.Write(f.Pix); err != nil {
		message := "write frame"
		if tail := strings.TrimSpace(e.stderr.String()); tail != "" {
			message = "write frame: " + tail
		}
		return services.Wrap(services.ErrExternalTool, "rawvideo", "encode", message, err)
	}
	return nil
}

// Close implements media.Sink. It closes ffmpeg's stdin and waits for the
// container to be finalized.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	closeErr := e.stdin.Close()
	if waitErr := e.cmd.Wait(); waitErr != nil {
		return services.Wrap(services.ErrExternalTool, "rawvideo", "encode",
			exitMessage(strings.TrimSpace(e.stderr.String())), waitErr)
	}
	if closeErr != nil {
		return services.Wrap(services.ErrExternalTool, "rawvideo", "encode", "close stdin", closeErr)
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
