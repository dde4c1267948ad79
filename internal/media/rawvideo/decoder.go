package rawvideo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"videolab/internal/frame"
	"videolab/internal/media"
	"videolab/internal/media/ffprobe"
	"videolab/internal/services"
)

// seekRestartThreshold is the largest forward gap bridged by decoding and
// discarding frames instead of restarting ffmpeg.
const seekRestartThreshold = 32

// Decoder streams RGB24 frames out of an ffmpeg process. Seeking backwards,
// or far enough forward, restarts ffmpeg with an input-side -ss at the
// target timestamp. Not safe for concurrent use.
type Decoder struct {
	ctx       context.Context
	binary    string
	path      string
	info      media.SourceInfo
	frameSize int

	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
	next   int
	eof    bool
	closed bool
}

// NewDecoder starts an ffmpeg pipeline decoding path from frame zero. info
// must carry the source dimensions and frame rate, typically from
// ffprobe.Result.VideoInfo. ctx bounds the lifetime of every ffmpeg process
// the decoder spawns.
func NewDecoder(ctx context.Context, binary, path string, info media.SourceInfo) (*Decoder, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, services.Wrap(services.ErrValidation, "rawvideo", "open", "source dimensions unknown", nil)
	}
	if info.FPS <= 0 {
		return nil, services.Wrap(services.ErrValidation, "rawvideo", "open", "source frame rate unknown", nil)
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	d := &Decoder{
		ctx:       ctx,
		binary:    binary,
		path:      path,
		info:      info,
		frameSize: info.Width * info.Height * frame.BytesPerPixel,
	}
	if err := d.start(0); err != nil {
		return nil, err
	}
	return d, nil
}

// OpenSource probes path with ffprobe and starts a decoder for its video
// stream.
func OpenSource(ctx context.Context, ffmpegBinary, ffprobeBinary, path string, fallbackFPS float64) (*Decoder, error) {
	probe, err := ffprobe.Inspect(ctx, ffprobeBinary, path)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "rawvideo", "probe", "inspect source", err)
	}
	info, err := probe.VideoInfo(fallbackFPS)
	if err != nil {
		return nil, err
	}
	return NewDecoder(ctx, ffmpegBinary, path, info)
}

// Info implements media.Source.
func (d *Decoder) Info() media.SourceInfo { return d.info }

// decodeArgs builds the ffmpeg argument list for decoding path to raw RGB24
// on stdout, optionally seeking the input to startSeconds first.
func decodeArgs(path string, startSeconds float64) []string {
	args := []string{"-v", "error", "-nostdin"}
	if startSeconds > 0 {
		args = append(args, "-ss", strconv.FormatFloat(startSeconds, 'f', 6, 64))
	}
	return append(args,
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	)
}

func (d *Decoder) start(index int) error {
	d.stop()

	cmd := exec.CommandContext(d.ctx, d.binary, decodeArgs(d.path, float64(index)/d.info.FPS)...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "rawvideo", "decode", "open stdout pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, "rawvideo", "decode", "start ffmpeg", err)
	}
	d.cmd = cmd
	d.stdout = stdout
	d.stderr = stderr
	d.next = index
	d.eof = false
	return nil
}

// stop kills and reaps the current ffmpeg process, if any.
func (d *Decoder) stop() {
	if d.cmd == nil {
		if d.stdout != nil {
			_ = d.stdout.Close()
			d.stdout = nil
		}
		return
	}
	if d.cmd.Process != nil {
		_ = d.cmd.Process.Kill()
	}
	if d.stdout != nil {
		_ = d.stdout.Close()
		d.stdout = nil
	}
	_ = d.cmd.Wait()
	d.cmd = nil
}

// finish reaps the process after its stream ended and reports how it exited.
func (d *Decoder) finish() error {
	if d.stdout != nil {
		_ = d.stdout.Close()
		d.stdout = nil
	}
	if d.cmd == nil {
		return nil
	}
	err := d.cmd.Wait()
	d.cmd = nil
	return err
}

func (d *Decoder) stderrTail() string {
	if d.stderr == nil {
		return ""
	}
	return strings.TrimSpace(d.stderr.String())
}

// ReadNext implements media.Source. Once the stream ends it keeps returning
// io.EOF until the decoder is reseeked.
func (d *Decoder) ReadNext() (*frame.Frame, error) {
	if d.closed {
		return nil, services.Wrap(services.ErrValidation, "rawvideo", "read", "decoder closed", nil)
	}
	if d.eof || d.stdout == nil {
		return nil, io.EOF
	}

	f := frame.New(d.info.Width, d.info.Height)
	if _, err := io.ReadFull(d.stdout, f.Pix); err != nil {
		d.eof = true
		if errors.Is(err, io.EOF) {
			if waitErr := d.finish(); waitErr != nil {
				return nil, services.Wrap(services.ErrExternalTool, "rawvideo", "read", exitMessage(d.stderrTail()), waitErr)
			}
			return nil, io.EOF
		}
		_ = d.finish()
		message := "short frame read"
		if tail := d.stderrTail(); tail != "" {
			message = "short frame read: " + tail
		}
		return nil, services.Wrap(services.ErrExternalTool, "rawvideo", "read", message, err)
	}
	f.Index = d.next
	d.next++
	return f, nil
}

// Seek implements media.Source. Seeking to the current position is free and
// small forward gaps are bridged by discarding frames; anything else
// restarts ffmpeg at the target timestamp.
func (d *Decoder) Seek(index int) error {
	if d.closed {
		return services.Wrap(services.ErrValidation, "rawvideo", "seek", "decoder closed", nil)
	}
	if index < 0 {
		return services.Wrap(services.ErrValidation, "rawvideo", "seek", fmt.Sprintf("negative frame index %d", index), nil)
	}
	if d.info.FrameCount > 0 && index >= d.info.FrameCount {
		return services.Wrap(services.ErrValidation, "rawvideo", "seek",
			fmt.Sprintf("frame index %d beyond last frame %d", index, d.info.FrameCount-1), nil)
	}
	if !d.eof && d.stdout != nil {
		if index == d.next {
			return nil
		}
		if index > d.next && index-d.next <= seekRestartThreshold {
			scratch := make([]byte, d.frameSize)
			for d.next < index {
				if _, err := io.ReadFull(d.stdout, scratch); err != nil {
					return d.start(index)
				}
				d.next++
			}
			return nil
		}
	}
	return d.start(index)
}

// Close implements media.Source.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.stop()
	return nil
}

func exitMessage(tail string) string {
	if tail == "" {
		return "ffmpeg exited"
	}
	return "ffmpeg exited: " + tail
}
