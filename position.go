package tenniscourt

import (
	"math"
	"time"

	"github.com/golang/geo/r2"
)

// Label names the court area a point was judged to be in.
type Label int

// Labels.
const (
	LabelUnknown Label = iota
	LabelBaseline
	LabelMidcourt
	LabelNet
	LabelDeuceServiceBox
	LabelAdServiceBox
	LabelBackcourt
	LabelForecourt
)

func (l Label) String() string {
	switch l {
	case LabelBaseline:
		return "baseline"
	case LabelMidcourt:
		return "midcourt"
	case LabelNet:
		return "net"
	case LabelDeuceServiceBox:
		return "deuce-service-box"
	case LabelAdServiceBox:
		return "ad-service-box"
	case LabelBackcourt:
		return "backcourt"
	case LabelForecourt:
		return "forecourt"
	}
	return "unknown"
}

// InOut is a line call.
type InOut int

// Line calls.
const (
	InOutUnknown InOut = iota
	In
	Out
)

func (c InOut) String() string {
	switch c {
	case In:
		return "in"
	case Out:
		return "out"
	}
	return "unknown"
}

// ServingBox is the service box a ball landed in.
type ServingBox int

// Service boxes.
const (
	ServingBoxUnknown ServingBox = iota
	Deuce
	Ad
)

func (b ServingBox) String() string {
	switch b {
	case Deuce:
		return "deuce"
	case Ad:
		return "ad"
	}
	return "unknown"
}

// CourtSide is which half of the court a player stands on, relative to the camera.
type CourtSide int

// Court sides.
const (
	CourtSideUnknown CourtSide = iota
	Near
	Far
)

func (s CourtSide) String() string {
	switch s {
	case Near:
		return "near"
	case Far:
		return "far"
	}
	return "unknown"
}

// FaultStatus is the foot fault call for a player.
type FaultStatus int

// Fault calls.
const (
	FaultUnknown FaultStatus = iota
	FaultOK
	FootFault
)

func (f FaultStatus) String() string {
	switch f {
	case FaultOK:
		return "ok"
	case FootFault:
		return "foot-fault"
	}
	return "unknown"
}

// PositionJudgment is the result of judging one point against the court.
// The zero value is all unknown.
type PositionJudgment struct {
	Label       Label
	InOut       InOut
	ServingBox  ServingBox
	CourtSide   CourtSide
	FaultStatus FaultStatus
}

// Known reports whether anything was judged.
func (j PositionJudgment) Known() bool {
	return j != PositionJudgment{}
}

// ToMap is the DoCommand form of a judgment.
func (j PositionJudgment) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"label":        j.Label.String(),
		"in_out":       j.InOut.String(),
		"serving_box":  j.ServingBox.String(),
		"court_side":   j.CourtSide.String(),
		"fault_status": j.FaultStatus.String(),
	}
}

// ObjectPosition is a tracked point in full frame coordinates.
// Kind is "ball" or a joint name such as "left_hip".
type ObjectPosition struct {
	X, Y       float64
	Kind       string
	Confidence float64
	Timestamp  time.Time
}

// KindBall is the ObjectPosition kind for the ball.
const KindBall = "ball"

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AnalyzeBall judges a ball position against the regions.
func AnalyzeBall(model CourtModel, regions CourtRegions, x, y float64) PositionJudgment {
	if !model.Detected || !finite(x, y) {
		return PositionJudgment{}
	}

	p := r2.Point{X: x, Y: y}
	j := PositionJudgment{InOut: Out}
	if regions.CourtBounds.ContainsPoint(p) {
		j.InOut = In
	}

	switch {
	case regions.DeuceServiceBox.ContainsPoint(p):
		j.Label = LabelDeuceServiceBox
		j.ServingBox = Deuce
	case regions.AdServiceBox.ContainsPoint(p):
		j.Label = LabelAdServiceBox
		j.ServingBox = Ad
	case y < regions.CourtBounds.Y.Lo:
		j.Label = LabelBackcourt
	case y > regions.CourtBounds.Y.Hi:
		j.Label = LabelForecourt
	default:
		j.Label = LabelMidcourt
	}

	return j
}

// AnalyzePlayer judges a player from their hip and, optionally, ankles.
// Ankles with zero confidence are treated as missing.
func AnalyzePlayer(model CourtModel, regions CourtRegions, cal Calibration, hip, leftAnkle, rightAnkle ObjectPosition) PositionJudgment {
	if !model.Detected || !finite(hip.X, hip.Y, hip.Confidence) {
		return PositionJudgment{}
	}
	if hip.Confidence <= cal.MinHipConfidence {
		return PositionJudgment{}
	}

	j := PositionJudgment{FaultStatus: FaultOK}

	d := math.Abs(hip.Y - regions.NetY)
	switch {
	case d < cal.NetDistance:
		j.Label = LabelNet
	case d > cal.BaselineDistance:
		j.Label = LabelBaseline
	default:
		j.Label = LabelMidcourt
	}

	if hip.Y < regions.NetY {
		j.CourtSide = Near
	} else {
		j.CourtSide = Far
	}

	if j.Label == LabelBaseline && ankleUsable(cal, leftAnkle) && ankleUsable(cal, rightAnkle) {
		if leftAnkle.Y < regions.ServiceLineTopY || rightAnkle.Y < regions.ServiceLineTopY {
			j.FaultStatus = FootFault
		}
	}

	return j
}

func ankleUsable(cal Calibration, a ObjectPosition) bool {
	return finite(a.X, a.Y, a.Confidence) && a.Confidence > cal.MinAnkleConfidence
}
