package tenniscourt

import (
	"math"
	"sort"
)

const (
	houghThetaBins = 180
	houghThetaStep = math.Pi / houghThetaBins
	houghRhoStep   = 2.0

	// houghMinVotes is the floor of the resolution scaled vote threshold.
	houghMinVotes = 20
	// houghVotesPerPixel scales the vote threshold with the image area.
	houghVotesPerPixel = 0.0001

	// houghHalfLength is how far each candidate is extended from the foot of its normal.
	houghHalfLength = 1000.0

	// houghLineWidth is how close an edge pixel must be to an accepted line to
	// be counted as part of it. Both edges of a thin painted line fall inside it.
	houghLineWidth = 6.0

	// houghStrokeWidth is the widest painted stroke whose two edges are folded
	// back into one line. Distinct court lines are further apart than this.
	houghStrokeWidth = 16.0
	// houghStrokeThetaBins is how far apart in angle the two edges of one
	// stroke may be.
	houghStrokeThetaBins = 2

	// houghMaxLines bounds the work done on very noisy edge maps.
	houghMaxLines = 64
)

// houghLine is a line in the form: rho = x*cos(theta) + y*sin(theta)
type houghLine struct {
	rho   float64
	theta float64
	votes int
}

// houghAccumulator is a flat (rhoIndex, thetaIndex) vote buffer.
type houghAccumulator struct {
	votes    []int32
	numRho   int
	maxRho   int
	cosTheta [houghThetaBins]float64
	sinTheta [houghThetaBins]float64
}

func newHoughAccumulator(width, height int) *houghAccumulator {
	maxRho := int(math.Sqrt(float64(width*width+height*height))) + 1
	numRho := int(float64(2*maxRho)/houghRhoStep) + 1

	acc := &houghAccumulator{
		votes:  make([]int32, numRho*houghThetaBins),
		numRho: numRho,
		maxRho: maxRho,
	}
	for t := range houghThetaBins {
		theta := float64(t) * houghThetaStep
		acc.cosTheta[t] = math.Cos(theta)
		acc.sinTheta[t] = math.Sin(theta)
	}
	return acc
}

func (acc *houghAccumulator) rhoIndex(rho float64) int {
	return int(math.Floor((rho + float64(acc.maxRho)) / houghRhoStep))
}

// rhoAt returns the centre of a rho bin.
func (acc *houghAccumulator) rhoAt(idx int) float64 {
	return float64(idx)*houghRhoStep - float64(acc.maxRho) + houghRhoStep/2
}

// vote adds delta to every cell the pixel (x, y) lies on.
func (acc *houghAccumulator) vote(x, y int, delta int32) {
	for t := range houghThetaBins {
		rho := float64(x)*acc.cosTheta[t] + float64(y)*acc.sinTheta[t]
		r := acc.rhoIndex(rho)
		if r >= 0 && r < acc.numRho {
			acc.votes[r*houghThetaBins+t] += delta
		}
	}
}

// strongest returns the cell with the most votes. Ties go to the lowest
// (rhoIndex, thetaIndex).
func (acc *houghAccumulator) strongest() (int, int, int32) {
	best := 0
	for i, v := range acc.votes {
		if v > acc.votes[best] {
			best = i
		}
	}
	return best / houghThetaBins, best % houghThetaBins, acc.votes[best]
}

// voteThreshold is the count a cell must exceed to become a candidate.
func voteThreshold(width, height int) int {
	return max(houghMinVotes, int(float64(width*height)*houghVotesPerPixel))
}

// DetectLines runs a Hough transform over the edge map and returns line
// candidates clipped to the image, strongest first.
//
// Peaks are taken one at a time: the strongest cell becomes a candidate, then
// the edge pixels within houghLineWidth of it are withdrawn from the
// accumulator, so cells that only scored by crossing already accepted lines
// fall below the threshold. A stroke wider than houghLineWidth leaves one
// peak per edge; those pairs are merged so each painted line gives one candidate.
func DetectLines(edges EdgeMap) []DetectedLine {
	width, height := edges.Width, edges.Height
	if width <= 0 || height <= 0 || len(edges.Pix)/height < width {
		return nil
	}

	acc := newHoughAccumulator(width, height)

	// Vote for each edge pixel
	var points [][2]int
	for y := range height {
		for x := range width {
			if edges.Pix[y*width+x] == 0 {
				continue
			}
			points = append(points, [2]int{x, y})
			acc.vote(x, y, 1)
		}
	}
	if len(points) == 0 {
		return nil
	}

	threshold := int32(voteThreshold(width, height))
	live := make([]bool, len(points))
	for i := range live {
		live[i] = true
	}

	var peaks []houghLine
	for len(peaks) < houghMaxLines {
		r, t, v := acc.strongest()
		if v <= threshold {
			break
		}

		p := houghLine{rho: acc.rhoAt(r), theta: float64(t) * houghThetaStep, votes: int(v)}
		peaks = append(peaks, p)

		for i, pt := range points {
			if !live[i] || distanceToLine(p, float64(pt[0]), float64(pt[1])) > houghLineWidth {
				continue
			}
			live[i] = false
			acc.vote(pt[0], pt[1], -1)
		}
	}

	peaks = mergeStrokeEdges(peaks)

	halfLength := math.Max(houghHalfLength, float64(acc.maxRho))

	lines := make([]DetectedLine, 0, len(peaks))
	for _, p := range peaks {
		seg, ok := clipSegment(p.segment(halfLength), width, height)
		if !ok {
			continue
		}
		lines = append(lines, NewDetectedLine(seg.X1, seg.Y1, seg.X2, seg.Y2, p.votes))
	}

	return lines
}

// mergeStrokeEdges folds peaks that are the two edges of one painted stroke
// into a single line at their vote weighted centre. The result is sorted by
// votes, strongest first.
func mergeStrokeEdges(peaks []houghLine) []houghLine {
	var out []houghLine
	for _, p := range peaks {
		merged := false
		for i := range out {
			rho, ok := sameStroke(out[i], p)
			if !ok {
				continue
			}
			total := out[i].votes + p.votes
			out[i].rho = (out[i].rho*float64(out[i].votes) + rho*float64(p.votes)) / float64(total)
			out[i].votes = total
			merged = true
			break
		}
		if !merged {
			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].votes > out[j].votes
	})
	return out
}

// sameStroke reports whether b runs alongside a closer than houghStrokeWidth.
// rho is b's distance expressed in a's orientation, since theta wraps at pi.
func sameStroke(a, b houghLine) (float64, bool) {
	dTheta, rho := b.theta-a.theta, b.rho
	switch {
	case dTheta > math.Pi/2:
		dTheta -= math.Pi
		rho = -rho
	case dTheta < -math.Pi/2:
		dTheta += math.Pi
		rho = -rho
	}

	if math.Abs(dTheta) > houghStrokeThetaBins*houghThetaStep+1e-9 {
		return 0, false
	}
	if math.Abs(rho-a.rho) >= houghStrokeWidth {
		return 0, false
	}
	return rho, true
}

// segment extends the line halfLength in both directions from the point
// on it closest to the origin.
func (l houghLine) segment(halfLength float64) Segment {
	c, s := math.Cos(l.theta), math.Sin(l.theta)
	x0, y0 := l.rho*c, l.rho*s
	dx, dy := -s, c
	return Segment{
		X1: x0 - halfLength*dx,
		Y1: y0 - halfLength*dy,
		X2: x0 + halfLength*dx,
		Y2: y0 + halfLength*dy,
	}
}

// distanceToLine computes perpendicular distance from point to line
func distanceToLine(l houghLine, x, y float64) float64 {
	return math.Abs(x*math.Cos(l.theta) + y*math.Sin(l.theta) - l.rho)
}
