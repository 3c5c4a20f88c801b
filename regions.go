package tenniscourt

import (
	"fmt"
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

const (
	// NetHeightCm is the regulation net height at the centre strap.
	NetHeightCm = 91.4

	// defaultServiceOffset is how far from the net a missing service line is assumed to be.
	defaultServiceOffset = 50.0
)

// CourtRegions are the rectangles point judgments are made against, in full
// frame coordinates. Every rectangle test is closed on both ends.
type CourtRegions struct {
	Valid bool

	DeuceServiceBox r2.Rect
	AdServiceBox    r2.Rect
	CourtBounds     r2.Rect

	NetY               float64
	ServiceLineTopY    float64
	ServiceLineBottomY float64
	CenterX            float64

	NetHeightCm float64
}

// DefaultRegions are the fallback regions for a frame before any court has
// been detected. They are usable, but Valid is false.
func DefaultRegions(width, height int) CourtRegions {
	w, h := float64(width), float64(height)
	netY := h / 2
	return buildRegions(0, w, w/2, netY, netY-defaultServiceOffset, netY+defaultServiceOffset, false)
}

// MapRegions derives regions from a detected model. width and height are the
// full frame dimensions. An undetected model leaves previous untouched.
func MapRegions(model CourtModel, width, height int, previous CourtRegions) CourtRegions {
	if !model.Detected {
		return previous
	}

	fx, fy := model.frameFactors()

	w, h := float64(width), float64(height)

	netY := h / 2
	if model.Net != nil {
		netY = model.Net.MidY() * fy
	}

	leftX, rightX := 0.0, w
	if model.SidelineLeft != nil {
		leftX = model.SidelineLeft.MidX() * fx
	}
	if model.SidelineRight != nil {
		rightX = model.SidelineRight.MidX() * fx
	}

	centerX := w / 2
	if model.CenterServiceLine != nil {
		centerX = model.CenterServiceLine.MidX() * fx
	}

	topY := netY - defaultServiceOffset
	if model.ServiceLineTop != nil {
		topY = model.ServiceLineTop.MidY() * fy
	}
	bottomY := netY + defaultServiceOffset
	if model.ServiceLineBottom != nil {
		bottomY = model.ServiceLineBottom.MidY() * fy
	}

	return buildRegions(leftX, rightX, centerX, netY, topY, bottomY, true)
}

func buildRegions(leftX, rightX, centerX, netY, topY, bottomY float64, valid bool) CourtRegions {
	bounds := r2.Rect{
		X: r1.Interval{Lo: math.Min(leftX, rightX), Hi: math.Max(leftX, rightX)},
		Y: r1.Interval{Lo: math.Min(topY, bottomY), Hi: math.Max(topY, bottomY)},
	}

	// the centre line splits the court; keep it inside so the boxes cannot overlap
	splitX := math.Max(bounds.X.Lo, math.Min(bounds.X.Hi, centerX))

	deuce := r2.RectFromPoints(r2.Point{X: splitX, Y: topY}, r2.Point{X: bounds.X.Hi, Y: netY})
	ad := r2.RectFromPoints(r2.Point{X: bounds.X.Lo, Y: topY}, r2.Point{X: splitX, Y: netY})

	return CourtRegions{
		Valid:              valid,
		DeuceServiceBox:    deuce.Intersection(bounds),
		AdServiceBox:       ad.Intersection(bounds),
		CourtBounds:        bounds,
		NetY:               netY,
		ServiceLineTopY:    topY,
		ServiceLineBottomY: bottomY,
		CenterX:            centerX,
		NetHeightCm:        NetHeightCm,
	}
}

// Contains reports whether (x, y) is inside the court bounds.
func (r CourtRegions) Contains(x, y float64) bool {
	return r.CourtBounds.ContainsPoint(r2.Point{X: x, Y: y})
}

func (r CourtRegions) String() string {
	return fmt.Sprintf("valid: %v bounds: %s deuce: %s ad: %s net-y: %0.1f center-x: %0.1f",
		r.Valid, rectString(r.CourtBounds), rectString(r.DeuceServiceBox), rectString(r.AdServiceBox), r.NetY, r.CenterX)
}

func rectString(r r2.Rect) string {
	if r.IsEmpty() {
		return "[empty]"
	}
	return fmt.Sprintf("[%0.1f,%0.1f]x[%0.1f,%0.1f]", r.X.Lo, r.X.Hi, r.Y.Lo, r.Y.Hi)
}
