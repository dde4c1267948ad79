package tracker

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{"frame", "point_id", "x", "y"}

// CSVWriter streams tracked points as CSV, one row per point per frame.
// Coordinates are written with the shortest decimal form that round-trips,
// so detections stay integral and flow results keep their precision.
type CSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// WritePoints appends one row per point for the given frame index, emitting
// the header first if nothing has been written yet.
func (c *CSVWriter) WritePoints(frameIndex int, pts []Point) error {
	if !c.wroteHeader {
		if err := c.w.Write(csvHeader); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	for _, p := range pts {
		row := []string{
			strconv.Itoa(frameIndex),
			strconv.Itoa(p.ID),
			strconv.FormatFloat(p.X, 'f', -1, 64),
			strconv.FormatFloat(p.Y, 'f', -1, 64),
		}
		if err := c.w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush forces buffered rows to the underlying writer and reports any write
// error encountered so far.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// WriteCSV writes a single frame's points, with header, to w.
func WriteCSV(w io.Writer, frameIndex int, pts []Point) error {
	cw := NewCSVWriter(w)
	if err := cw.WritePoints(frameIndex, pts); err != nil {
		return err
	}
	return cw.Flush()
}
