package playback

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"videolab/internal/config"
	"videolab/internal/frame"
	"videolab/internal/logging"
	"videolab/internal/media"
	"videolab/internal/pipeline"
	"videolab/internal/tracker"
)

// Status describes whether the controller is advancing frames.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusPlaying Status = "playing"
)

// PreviewFunc receives every frame rendered by the play loop, along with the
// frame index and a copy of the tracked points at that moment.
type PreviewFunc func(f *frame.Frame, index int, points []tracker.Point)

// Controller owns the playhead over a video source. Seeks and steps clamp
// into range, frames render through the live pipeline snapshot, and an
// optional play loop paces frames at the source rate, compensating for the
// time spent decoding and rendering.
type Controller struct {
	src    media.Source
	state  *pipeline.State
	cfg    *config.Config
	logger *slog.Logger

	fps      float64
	interval time.Duration
	count    int

	mu      sync.Mutex
	index   int
	playing bool
	stop    chan struct{}
	wg      sync.WaitGroup
	preview PreviewFunc
	points  []tracker.Point
	cached  *frame.Frame
}

// New builds a controller for src. The source's frame rate paces playback;
// sources without one fall back to the configured rate.
func New(src media.Source, state *pipeline.State, cfg *config.Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	info := src.Info()
	fps := info.FPS
	if fps <= 0 {
		fps = cfg.Playback.FallbackFPS
	}
	if fps <= 0 {
		fps = 30
	}
	return &Controller{
		src:      src,
		state:    state,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "playback"),
		fps:      fps,
		interval: time.Duration(float64(time.Second) / fps),
		count:    info.FrameCount,
	}
}

// SetPreview registers fn to receive frames rendered by the play loop.
// Call it before Play.
func (c *Controller) SetPreview(fn PreviewFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preview = fn
}

// Current returns the playhead position.
func (c *Controller) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Status reports whether the play loop is running.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return StatusPlaying
	}
	return StatusStopped
}

// FPS reports the effective playback rate after fallback resolution.
func (c *Controller) FPS() float64 { return c.fps }

// Seek clamps index into range and repositions the playhead. Moving exactly
// one frame forward propagates tracked points when propagation is enabled in
// the configuration; any other move leaves them untouched.
func (c *Controller) Seek(index int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekLocked(c.clampIndex(index))
}

// Step moves the playhead by delta frames, clamping at both ends.
func (c *Controller) Step(delta int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekLocked(c.clampIndex(c.index + delta))
}

// Render decodes the frame under the playhead and applies the current
// pipeline snapshot.
func (c *Controller) Render() (*frame.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

// DetectFeatures runs corner detection on the frame under the playhead,
// replacing any existing points.
func (c *Controller) DetectFeatures() ([]tracker.Point, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := c.rawAtLocked(c.index)
	if err != nil {
		return nil, err
	}
	c.points = tracker.Detect(raw, c.detectParams())
	return c.pointsCopyLocked(), nil
}

// Points returns a copy of the tracked points.
func (c *Controller) Points() []tracker.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pointsCopyLocked()
}

// ClearPoints drops all tracked points.
func (c *Controller) ClearPoints() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.points = nil
}

// Play starts advancing frames at the playback rate until Pause is called or
// the final frame has been shown. Playing while already playing is a no-op;
// playing from the last frame shows it once and stops.
func (c *Controller) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return
	}
	c.playing = true
	c.stop = make(chan struct{})
	c.wg.Add(1)
	go c.loop(c.stop)
}

// Pause stops playback and waits for the play loop to exit. The playhead
// stays on the last rendered frame.
func (c *Controller) Pause() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	stop := c.stop
	c.playing = false
	c.stop = nil
	c.mu.Unlock()

	close(stop)
	c.wg.Wait()
}

func (c *Controller) loop(stop chan struct{}) {
	defer c.wg.Done()
	for {
		started := time.Now()
		last, ok := c.renderTick()
		if !ok || last {
			return
		}
		// Sleep out the remainder of the frame interval, net of the time
		// spent decoding and rendering.
		wait := c.interval - time.Since(started)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-stop:
			return
		case <-time.After(wait):
		}
		if !c.advanceTick() {
			return
		}
	}
}

// renderTick renders the frame under the playhead and reports whether it was
// the final frame and whether playback should continue.
func (c *Controller) renderTick() (last, ok bool) {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return false, false
	}
	rendered, err := c.renderLocked()
	if err != nil {
		c.logger.Warn("playback render failed", logging.Error(err))
		c.stopLocked()
		c.mu.Unlock()
		return false, false
	}
	index := c.index
	points := c.pointsCopyLocked()
	preview := c.preview
	last = c.count > 0 && index >= c.count-1
	if last {
		c.stopLocked()
	}
	c.mu.Unlock()

	if preview != nil {
		preview(rendered, index, points)
	}
	return last, true
}

// advanceTick moves the playhead one frame forward between ticks.
func (c *Controller) advanceTick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return false
	}
	if _, err := c.seekLocked(c.index + 1); err != nil {
		if !errors.Is(err, io.EOF) {
			c.logger.Warn("playback advance failed", logging.Error(err))
		}
		c.stopLocked()
		return false
	}
	return true
}

// stopLocked flips the controller to stopped without waiting; only the play
// loop calls it.
func (c *Controller) stopLocked() {
	c.playing = false
	c.stop = nil
}

func (c *Controller) clampIndex(index int) int {
	if index < 0 {
		return 0
	}
	if c.count > 0 && index > c.count-1 {
		return c.count - 1
	}
	return index
}

func (c *Controller) seekLocked(index int) (int, error) {
	prev := c.cached
	raw, err := c.rawAtLocked(index)
	if err != nil {
		return c.index, err
	}
	if c.cfg.Tracking.EnablePropagation &&
		len(c.points) > 0 &&
		prev != nil && index == prev.Index+1 {
		moved, err := tracker.Propagate(prev, raw, c.points, c.flowParams())
		if err != nil {
			c.logger.Warn("point propagation failed", logging.Error(err))
		} else {
			c.points = moved
		}
	}
	c.index = index
	return c.index, nil
}

// rawAtLocked decodes the frame at index, serving repeated reads of the same
// position from a one-frame cache.
func (c *Controller) rawAtLocked(index int) (*frame.Frame, error) {
	if c.cached != nil && c.cached.Index == index {
		return c.cached, nil
	}
	f, err := media.ReadAt(c.src, index)
	if err != nil {
		return nil, err
	}
	c.cached = f
	return f, nil
}

func (c *Controller) renderLocked() (*frame.Frame, error) {
	raw, err := c.rawAtLocked(c.index)
	if err != nil {
		return nil, err
	}
	return c.state.Snapshot().Apply(raw)
}

func (c *Controller) pointsCopyLocked() []tracker.Point {
	if len(c.points) == 0 {
		return nil
	}
	return append([]tracker.Point(nil), c.points...)
}

func (c *Controller) detectParams() tracker.DetectParams {
	t := c.cfg.Tracking
	return tracker.DetectParams{
		MaxCorners:   t.MaxCorners,
		QualityLevel: t.QualityLevel,
		MinDistance:  t.MinDistance,
		BlockSize:    t.BlockSize,
	}
}

func (c *Controller) flowParams() tracker.FlowParams {
	t := c.cfg.Tracking
	return tracker.FlowParams{
		Window:     t.FlowWindow,
		Levels:     t.FlowLevels,
		Iterations: t.FlowIterations,
		Epsilon:    t.FlowEpsilon,
	}
}
