package tenniscourt

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// CourtDebugImage draws the court model and regions over a copy of src.
// Model lines are scaled back to src coordinates.
func CourtDebugImage(src image.Image, model CourtModel, regions CourtRegions) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)

	if regions.Valid {
		drawRect(dst, regions.CourtBounds, color.RGBA{255, 255, 0, 255})
		drawRect(dst, regions.DeuceServiceBox, color.RGBA{0, 255, 255, 255})
		drawRect(dst, regions.AdServiceBox, color.RGBA{255, 0, 255, 255})
	}

	fx, fy := model.frameFactors()

	slots := model.slots()
	for i, s := range slots {
		if s.seg == nil {
			continue
		}
		// spread the roles around the hue circle so each is distinct
		c := colorful.Hsv(360*float64(i)/float64(len(slots)), 1, 1)
		seg := s.seg.ScaledXY(fx, fy)
		drawSegment(dst, seg, c)
		drawString(dst, int(seg.MidX())+4, int(seg.MidY())-4, s.name, c)
	}

	red := color.RGBA{255, 0, 0, 255}
	for _, c := range CourtCorners(model) {
		drawCross(dst, int(c[0]*fx), int(c[1]*fy), 10, red)
	}

	status := fmt.Sprintf("court: %v conf: %0.2f", model.Detected, model.Confidence)
	drawString(dst, 5, 15, status, red)

	return dst
}

// CourtCorners returns where the baselines meet the sidelines, in analysed
// frame coordinates: top left, top right, bottom right, bottom left.
// Missing lines give no corners.
func CourtCorners(model CourtModel) [][2]float64 {
	if model.BaselineTop == nil || model.BaselineBottom == nil ||
		model.SidelineLeft == nil || model.SidelineRight == nil {
		return nil
	}

	pairs := [][2]*Segment{
		{model.BaselineTop, model.SidelineLeft},
		{model.BaselineTop, model.SidelineRight},
		{model.BaselineBottom, model.SidelineRight},
		{model.BaselineBottom, model.SidelineLeft},
	}

	var corners [][2]float64
	for _, p := range pairs {
		x, y, ok := p[0].Intersection(*p[1])
		if !ok {
			return nil
		}
		corners = append(corners, [2]float64{x, y})
	}
	return corners
}

func drawCross(img *image.RGBA, cx, cy, size int, c color.Color) {
	for d := -size; d <= size; d++ {
		img.Set(cx+d, cy, c)
		img.Set(cx, cy+d, c)
	}
}

func drawSegment(dst *image.RGBA, s Segment, c color.Color) {
	steps := int(math.Max(math.Abs(s.X2-s.X1), math.Abs(s.Y2-s.Y1)))
	if steps == 0 {
		dst.Set(int(s.X1), int(s.Y1), c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := s.X1 + t*(s.X2-s.X1)
		y := s.Y1 + t*(s.Y2-s.Y1)
		dst.Set(int(math.Round(x)), int(math.Round(y)), c)
	}
}

func drawRect(dst *image.RGBA, r r2.Rect, c color.Color) {
	if r.IsEmpty() {
		return
	}
	lo, hi := r.Lo(), r.Hi()
	drawSegment(dst, Segment{lo.X, lo.Y, hi.X, lo.Y}, c)
	drawSegment(dst, Segment{hi.X, lo.Y, hi.X, hi.Y}, c)
	drawSegment(dst, Segment{hi.X, hi.Y, lo.X, hi.Y}, c)
	drawSegment(dst, Segment{lo.X, hi.Y, lo.X, lo.Y}, c)
}

func drawString(dst *image.RGBA, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}
