package tenniscourt

import (
	"math"
)

// BallTracker estimates ball speed from consecutive sightings.
type BallTracker struct {
	scale float64

	last    ObjectPosition
	hasLast bool
	speed   float64
}

// NewBallTracker returns a tracker that multiplies pixel speed by scale.
func NewBallTracker(scale float64) *BallTracker {
	return &BallTracker{scale: scale}
}

// Observe records a sighting and returns the speed since the previous one, in
// scaled pixels per second. ok is false for the first sighting, for a time
// delta that is not positive, and for non-finite coordinates.
func (t *BallTracker) Observe(p ObjectPosition) (float64, bool) {
	if !finite(p.X, p.Y) {
		return 0, false
	}

	prev, had := t.last, t.hasLast
	if had && !p.Timestamp.After(prev.Timestamp) {
		return 0, false
	}

	t.last = p
	t.hasLast = true

	if !had {
		return 0, false
	}

	dt := p.Timestamp.Sub(prev.Timestamp).Seconds()
	t.speed = math.Hypot(p.X-prev.X, p.Y-prev.Y) / dt * t.scale
	return t.speed, true
}

// Speed is the last computed speed.
func (t *BallTracker) Speed() float64 {
	return t.speed
}

// Reset forgets the previous sighting.
func (t *BallTracker) Reset() {
	*t = BallTracker{scale: t.scale}
}
