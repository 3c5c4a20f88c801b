package tenniscourt

import (
	"image"

	"golang.org/x/image/draw"
)

// Frame is one RGB video frame. Pix holds Width*Height*3 bytes, row major.
// The pipeline never keeps a reference to Pix past the call it was given to.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// Valid reports whether the frame has a positive area and a pixel buffer
// large enough for its dimensions. The size check divides the buffer length
// instead of multiplying the dimensions, which could overflow.
func (f Frame) Valid() bool {
	if f.Width <= 0 || f.Height <= 0 {
		return false
	}
	return f.Width <= len(f.Pix)/3/f.Height
}

// rgb returns the channels of the pixel at (x, y). Callers check bounds.
func (f Frame) rgb(x, y int) (int, int, int) {
	i := (y*f.Width + x) * 3
	return int(f.Pix[i]), int(f.Pix[i+1]), int(f.Pix[i+2])
}

// FrameFromImage copies an image into an RGB frame.
func FrameFromImage(img image.Image) Frame {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	f := Frame{Width: width, Height: height, Pix: make([]byte, width*height*3)}

	if rgba, ok := img.(*image.RGBA); ok {
		for y := range height {
			row := rgba.Pix[rgba.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			for x := range width {
				i := (y*width + x) * 3
				f.Pix[i] = row[x*4]
				f.Pix[i+1] = row[x*4+1]
				f.Pix[i+2] = row[x*4+2]
			}
		}
		return f
	}

	for y := range height {
		for x := range width {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := (y*width + x) * 3
			f.Pix[i] = byte(r >> 8)
			f.Pix[i+1] = byte(g >> 8)
			f.Pix[i+2] = byte(b >> 8)
		}
	}
	return f
}

// Image converts the frame back into an *image.RGBA.
func (f Frame) Image() *image.RGBA {
	if !f.Valid() {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	dst := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := range f.Height {
		for x := range f.Width {
			i := (y*f.Width + x) * 3
			j := y*dst.Stride + x*4
			dst.Pix[j] = f.Pix[i]
			dst.Pix[j+1] = f.Pix[i+1]
			dst.Pix[j+2] = f.Pix[i+2]
			dst.Pix[j+3] = 255
		}
	}
	return dst
}

// Downscale returns a copy of the frame resized by scale using bilinear
// interpolation. A scale outside (0, 1) returns the frame unchanged.
func (f Frame) Downscale(scale float64) Frame {
	if scale <= 0 || scale >= 1 || !f.Valid() {
		return f
	}

	width := max(1, int(float64(f.Width)*scale))
	height := max(1, int(float64(f.Height)*scale))

	src := f.Image()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return FrameFromImage(dst)
}
