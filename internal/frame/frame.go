package frame

// BytesPerPixel is the storage cost of one pixel in a Frame.
const BytesPerPixel = 3

// Frame is a single decoded video frame stored as packed RGB24: three bytes
// per pixel, row-major, no row padding. Pix has length Width*Height*3.
//
// Index is the zero-based position of the frame within its source. Frames are
// plain buffers; they carry no reference to the decoder that produced them.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
	Index  int
}

// New allocates a zeroed frame with the given dimensions.
func New(width, height int) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// Clone returns a deep copy sharing no storage with the receiver.
func (f *Frame) Clone() *Frame {
	cp := &Frame{
		Width:  f.Width,
		Height: f.Height,
		Index:  f.Index,
		Pix:    make([]byte, len(f.Pix)),
	}
	copy(cp.Pix, f.Pix)
	return cp
}

// Offset returns the index into Pix of the red byte at (x, y).
// Callers are responsible for passing in-bounds coordinates.
func (f *Frame) Offset(x, y int) int {
	return (y*f.Width + x) * BytesPerPixel
}

// RGB returns the color channels of the pixel at (x, y).
func (f *Frame) RGB(x, y int) (r, g, b byte) {
	i := f.Offset(x, y)
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// SetRGB stores the color channels of the pixel at (x, y).
func (f *Frame) SetRGB(x, y int, r, g, b byte) {
	i := f.Offset(x, y)
	f.Pix[i] = r
	f.Pix[i+1] = g
	f.Pix[i+2] = b
}

// GrayF32 converts the frame to single-channel luma using the BT.601
// weights (0.299, 0.587, 0.114). The result has length Width*Height.
func (f *Frame) GrayF32() []float32 {
	gray := make([]float32, f.Width*f.Height)
	for i := range gray {
		p := i * BytesPerPixel
		r := float32(f.Pix[p])
		g := float32(f.Pix[p+1])
		b := float32(f.Pix[p+2])
		gray[i] = 0.299*r + 0.587*g + 0.114*b
	}
	return gray
}
