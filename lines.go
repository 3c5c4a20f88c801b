package tenniscourt

import (
	"fmt"
	"math"
)

// Segment is a line segment in frame coordinates.
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// MidX returns the mean x of the endpoints.
func (s Segment) MidX() float64 { return (s.X1 + s.X2) / 2 }

// MidY returns the mean y of the endpoints.
func (s Segment) MidY() float64 { return (s.Y1 + s.Y2) / 2 }

// Scaled multiplies every coordinate by f.
func (s Segment) Scaled(f float64) Segment {
	return s.ScaledXY(f, f)
}

// ScaledXY multiplies x coordinates by fx and y coordinates by fy.
func (s Segment) ScaledXY(fx, fy float64) Segment {
	return Segment{s.X1 * fx, s.Y1 * fy, s.X2 * fx, s.Y2 * fy}
}

// Angle is the direction of the segment, normalized to [0, pi).
func (s Segment) Angle() float64 {
	return normalizeAngle(math.Atan2(s.Y2-s.Y1, s.X2-s.X1))
}

func (s Segment) String() string {
	return fmt.Sprintf("(%.1f,%.1f)-(%.1f,%.1f)", s.X1, s.Y1, s.X2, s.Y2)
}

// DetectedLine is a line candidate produced by the Hough detector.
// Angle is the direction of the line in [0, pi): 0 is horizontal.
type DetectedLine struct {
	Segment
	Angle    float64
	Strength int
}

// NewDetectedLine builds a candidate from its endpoints.
func NewDetectedLine(x1, y1, x2, y2 float64, strength int) DetectedLine {
	s := Segment{x1, y1, x2, y2}
	return DetectedLine{Segment: s, Angle: s.Angle(), Strength: max(0, strength)}
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, math.Pi)
	if a < 0 {
		a += math.Pi
	}
	if a >= math.Pi {
		a -= math.Pi
	}
	return a
}

// Intersection finds where the infinite lines through s and o cross.
func (s Segment) Intersection(o Segment) (float64, float64, bool) {
	dx1, dy1 := s.X2-s.X1, s.Y2-s.Y1
	dx2, dy2 := o.X2-o.X1, o.Y2-o.Y1

	det := dx1*dy2 - dy1*dx2
	if math.Abs(det) < 1e-10 {
		return 0, 0, false // Parallel lines
	}

	t := ((o.X1-s.X1)*dy2 - (o.Y1-s.Y1)*dx2) / det
	return s.X1 + t*dx1, s.Y1 + t*dy1, true
}

// clipSegment clips a segment to the rectangle [0,width-1] x [0,height-1]
// (Liang-Barsky). ok is false when the segment misses the rectangle.
func clipSegment(s Segment, width, height int) (Segment, bool) {
	maxX, maxY := float64(width-1), float64(height-1)
	dx, dy := s.X2-s.X1, s.Y2-s.Y1

	t0, t1 := 0.0, 1.0
	p := []float64{-dx, dx, -dy, dy}
	q := []float64{s.X1, maxX - s.X1, s.Y1, maxY - s.Y1}

	for i := range p {
		if p[i] == 0 {
			if q[i] < 0 {
				return Segment{}, false
			}
			continue
		}
		r := q[i] / p[i]
		if p[i] < 0 {
			if r > t1 {
				return Segment{}, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return Segment{}, false
			}
			t1 = math.Min(t1, r)
		}
	}

	return Segment{
		X1: s.X1 + t0*dx,
		Y1: s.Y1 + t0*dy,
		X2: s.X1 + t1*dx,
		Y2: s.Y1 + t1*dy,
	}, true
}
