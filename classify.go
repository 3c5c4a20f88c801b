package tenniscourt

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	// orientationTolerance is how far from horizontal/vertical a candidate may lean.
	orientationTolerance = 0.2

	// centreBand is the fraction of the image size a net or centre service
	// line may sit away from the image centre.
	centreBand = 0.1

	// minDetectedSlots is the number of populated roles needed for a usable model.
	minDetectedSlots = 6

	// confidenceCandidates is the candidate count at which confidence saturates.
	confidenceCandidates = 10.0
)

// CourtModel is the classified court geometry for one analysed frame.
// Coordinates are in the analysed frame. ScaleX and ScaleY are analysed size
// over full frame size per axis; they differ when downscaling rounds.
// A model is replaced as a whole, never edited.
type CourtModel struct {
	Detected   bool
	Confidence float64
	ScaleX     float64
	ScaleY     float64

	BaselineTop       *Segment
	BaselineBottom    *Segment
	ServiceLineTop    *Segment
	ServiceLineBottom *Segment
	SidelineLeft      *Segment
	SidelineRight     *Segment
	CenterServiceLine *Segment
	Net               *Segment

	Candidates int
}

// slots lists every role with its name, in a fixed order.
func (m CourtModel) slots() []struct {
	name string
	seg  *Segment
} {
	return []struct {
		name string
		seg  *Segment
	}{
		{"baseline-top", m.BaselineTop},
		{"baseline-bottom", m.BaselineBottom},
		{"service-line-top", m.ServiceLineTop},
		{"service-line-bottom", m.ServiceLineBottom},
		{"sideline-left", m.SidelineLeft},
		{"sideline-right", m.SidelineRight},
		{"center-service-line", m.CenterServiceLine},
		{"net", m.Net},
	}
}

// PopulatedSlots counts the roles that were assigned a line.
func (m CourtModel) PopulatedSlots() int {
	n := 0
	for _, s := range m.slots() {
		if s.seg != nil {
			n++
		}
	}
	return n
}

// Lines returns the populated roles keyed by role name.
func (m CourtModel) Lines() map[string]Segment {
	out := map[string]Segment{}
	for _, s := range m.slots() {
		if s.seg != nil {
			out[s.name] = *s.seg
		}
	}
	return out
}

// Clone returns a deep copy so callers can hold on to it.
func (m CourtModel) Clone() CourtModel {
	c := m
	cp := func(s *Segment) *Segment {
		if s == nil {
			return nil
		}
		v := *s
		return &v
	}
	c.BaselineTop = cp(m.BaselineTop)
	c.BaselineBottom = cp(m.BaselineBottom)
	c.ServiceLineTop = cp(m.ServiceLineTop)
	c.ServiceLineBottom = cp(m.ServiceLineBottom)
	c.SidelineLeft = cp(m.SidelineLeft)
	c.SidelineRight = cp(m.SidelineRight)
	c.CenterServiceLine = cp(m.CenterServiceLine)
	c.Net = cp(m.Net)
	return c
}

func (m CourtModel) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "detected: %v confidence: %0.2f candidates: %d", m.Detected, m.Confidence, m.Candidates)
	for _, s := range m.slots() {
		if s.seg != nil {
			fmt.Fprintf(&sb, " %s: %v", s.name, *s.seg)
		}
	}
	return sb.String()
}

func isHorizontal(l DetectedLine) bool {
	return l.Angle < orientationTolerance || l.Angle > math.Pi-orientationTolerance
}

// frameFactors returns the per-axis factors that take analysed coordinates to
// the full frame. An unset scale counts as 1.
func (m CourtModel) frameFactors() (fx, fy float64) {
	fx, fy = 1, 1
	if m.ScaleX > 0 {
		fx = 1 / m.ScaleX
	}
	if m.ScaleY > 0 {
		fy = 1 / m.ScaleY
	}
	return fx, fy
}

func isVertical(l DetectedLine) bool {
	return math.Abs(l.Angle-math.Pi/2) < orientationTolerance
}

// ClassifyLines assigns court roles to line candidates by position.
// width and height are the dimensions of the image the candidates came from.
func ClassifyLines(lines []DetectedLine, width, height int) CourtModel {
	model := CourtModel{
		ScaleX:     1,
		ScaleY:     1,
		Candidates: len(lines),
		Confidence: math.Min(1, float64(len(lines))/confidenceCandidates),
	}

	// Step 1: split by orientation
	var horizontal, vertical []DetectedLine
	for _, l := range lines {
		switch {
		case isHorizontal(l):
			horizontal = append(horizontal, l)
		case isVertical(l):
			vertical = append(vertical, l)
		}
	}

	// Step 2: order by position
	sort.SliceStable(horizontal, func(i, j int) bool {
		return horizontal[i].MidY() < horizontal[j].MidY()
	})
	sort.SliceStable(vertical, func(i, j int) bool {
		return vertical[i].MidX() < vertical[j].MidX()
	})

	seg := func(l DetectedLine) *Segment {
		s := l.Segment
		return &s
	}

	// Step 3: ordinal roles
	if n := len(horizontal); n >= 3 {
		model.BaselineTop = seg(horizontal[0])
		model.BaselineBottom = seg(horizontal[n-1])
		model.ServiceLineTop = seg(horizontal[1])
		model.ServiceLineBottom = seg(horizontal[n-2])
	}

	if n := len(vertical); n >= 2 {
		model.SidelineLeft = seg(vertical[0])
		model.SidelineRight = seg(vertical[n-1])
	}

	// Step 4: roles anchored on the image centre
	if l, ok := closestToCentre(horizontal, float64(height)/2, float64(height)*centreBand, DetectedLine.MidY); ok {
		model.Net = seg(l)
	}
	if l, ok := closestToCentre(vertical, float64(width)/2, float64(width)*centreBand, DetectedLine.MidX); ok {
		model.CenterServiceLine = seg(l)
	}

	model.Detected = model.PopulatedSlots() >= minDetectedSlots

	return model
}

// closestToCentre returns the line whose position is within band of centre
// and closest to it. The first one wins a tie.
func closestToCentre(lines []DetectedLine, centre, band float64, pos func(DetectedLine) float64) (DetectedLine, bool) {
	best := DetectedLine{}
	bestDist := math.Inf(1)
	for _, l := range lines {
		d := math.Abs(pos(l) - centre)
		if d <= band && d < bestDist {
			best = l
			bestDist = d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}
