package frame

import (
	"image"

	"github.com/disintegration/imaging"
)

// ToNRGBA converts the frame to an NRGBA image with full opacity. The result
// shares no storage with the frame.
func (f *Frame) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		src := y * f.Width * BytesPerPixel
		dst := y * img.Stride
		for x := 0; x < f.Width; x++ {
			img.Pix[dst] = f.Pix[src]
			img.Pix[dst+1] = f.Pix[src+1]
			img.Pix[dst+2] = f.Pix[src+2]
			img.Pix[dst+3] = 0xff
			src += BytesPerPixel
			dst += 4
		}
	}
	return img
}

// FromNRGBA builds a frame from an NRGBA image, dropping alpha.
func FromNRGBA(img *image.NRGBA, index int) *Frame {
	bounds := img.Bounds()
	f := New(bounds.Dx(), bounds.Dy())
	f.Index = index
	for y := 0; y < f.Height; y++ {
		src := y * img.Stride
		dst := y * f.Width * BytesPerPixel
		for x := 0; x < f.Width; x++ {
			f.Pix[dst] = img.Pix[src]
			f.Pix[dst+1] = img.Pix[src+1]
			f.Pix[dst+2] = img.Pix[src+2]
			src += 4
			dst += BytesPerPixel
		}
	}
	return f
}

// FromImage builds a frame from an arbitrary image, dropping alpha.
func FromImage(img image.Image, index int) *Frame {
	return FromNRGBA(imaging.Clone(img), index)
}
