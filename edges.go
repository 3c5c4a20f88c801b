package tenniscourt

import (
	"math"
)

const (
	// edgeMagnitudeThreshold is the Sobel magnitude a pixel must exceed to be an edge.
	edgeMagnitudeThreshold = 100.0

	edgeOn = 255
)

// EdgeMap is a binary edge image: every value is 0 or 255.
type EdgeMap struct {
	Width  int
	Height int
	Pix    []uint8
}

// At returns the edge value at (x, y), 0 outside the map.
func (e EdgeMap) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= e.Width || y >= e.Height {
		return 0
	}
	return e.Pix[y*e.Width+x]
}

// Count returns the number of edge pixels.
func (e EdgeMap) Count() int {
	n := 0
	for _, v := range e.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// ExtractEdges turns a frame into an edge map biased toward white court paint.
// When scale is in (0, 1) the frame is downscaled first and the map has the
// reduced dimensions. Malformed frames give an empty map; their dimensions
// are not trusted for an allocation.
func ExtractEdges(frame Frame, scale float64) EdgeMap {
	if !frame.Valid() {
		return EdgeMap{}
	}

	frame = frame.Downscale(scale)

	lum := luminanceField(frame)
	return sobelEdges(lum, frame.Width, frame.Height)
}

// isCourtLinePixel matches bright, roughly neutral pixels: painted lines.
func isCourtLinePixel(r, g, b int) bool {
	if r > 200 && g > 200 && b > 200 {
		return true
	}
	return abs(r-g) < 30 && abs(g-b) < 30 && r > 150
}

// luminanceField computes per-pixel luminance with court-line pixels forced to white.
func luminanceField(frame Frame) []int {
	lum := make([]int, frame.Width*frame.Height)
	for y := range frame.Height {
		for x := range frame.Width {
			r, g, b := frame.rgb(x, y)
			if isCourtLinePixel(r, g, b) {
				lum[y*frame.Width+x] = 255
				continue
			}
			lum[y*frame.Width+x] = int(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
		}
	}
	return lum
}

// sobelEdges thresholds the Sobel gradient magnitude of a luminance field.
// Border pixels are never edges.
func sobelEdges(lum []int, width, height int) EdgeMap {
	edges := EdgeMap{Width: width, Height: height, Pix: make([]uint8, width*height)}

	at := func(x, y int) int { return lum[y*width+x] }

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)

			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)

			if math.Sqrt(float64(gx*gx+gy*gy)) > edgeMagnitudeThreshold {
				edges.Pix[y*width+x] = edgeOn
			}
		}
	}

	return edges
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
