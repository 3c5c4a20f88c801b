package tenniscourt

import (
	"testing"
	"time"

	"go.viam.com/rdk/logging"
	"go.viam.com/test"
)

func newTestSession(t *testing.T) *CourtTrackingSession {
	t.Helper()
	s, err := NewSession(DefaultCalibration(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return s
}

func TestNewSessionBadCalibration(t *testing.T) {
	cal := DefaultCalibration()
	cal.FrameStride = 0
	_, err := NewSession(cal, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSessionIngestCourt(t *testing.T) {
	s := newTestSession(t)
	test.That(t, s.ID(), test.ShouldNotBeEmpty)

	m := s.IngestFrame(FrameFromImage(paintCourt(600, 400)))
	test.That(t, m.Detected, test.ShouldBeTrue)
	test.That(t, m.ScaleX, test.ShouldEqual, 1.0)
	test.That(t, m.ScaleY, test.ShouldEqual, 1.0)

	r := s.Regions()
	test.That(t, r.Valid, test.ShouldBeTrue)
	test.That(t, r.NetY, test.ShouldAlmostEqual, 200, 3)
	test.That(t, r.CenterX, test.ShouldAlmostEqual, 300, 3)
	test.That(t, r.CourtBounds.X.Lo, test.ShouldAlmostEqual, 60, 3)
	test.That(t, r.CourtBounds.X.Hi, test.ShouldAlmostEqual, 540, 3)

	// an empty frame keeps what we had
	m = s.IngestFrame(FrameFromImage(fillFrame(600, 400, grass)))
	test.That(t, m.Detected, test.ShouldBeTrue)
	test.That(t, s.Regions(), test.ShouldResemble, r)
	test.That(t, s.Frames(), test.ShouldEqual, 2)

	// so does a malformed one
	m = s.IngestFrame(Frame{Width: 600, Height: 400})
	test.That(t, m.Detected, test.ShouldBeTrue)
	test.That(t, s.Frames(), test.ShouldEqual, 3)

	// a new frame size drops the geometry
	m = s.IngestFrame(FrameFromImage(fillFrame(300, 200, grass)))
	test.That(t, m.Detected, test.ShouldBeFalse)
	test.That(t, s.Regions(), test.ShouldResemble, DefaultRegions(300, 200))
}

func TestSessionNoCourt(t *testing.T) {
	s := newTestSession(t)
	m := s.IngestFrame(FrameFromImage(fillFrame(600, 400, grass)))
	test.That(t, m.Detected, test.ShouldBeFalse)
	test.That(t, m.PopulatedSlots(), test.ShouldEqual, 0)

	r := s.Regions()
	test.That(t, r.Valid, test.ShouldBeFalse)
	test.That(t, r.CourtBounds, test.ShouldResemble, rect(0, 600, 150, 250))

	j := s.JudgePosition(ObjectPosition{X: 300, Y: 175, Kind: KindBall, Confidence: 1})
	test.That(t, j.Known(), test.ShouldBeFalse)

	j = s.JudgePosition(ObjectPosition{X: 300, Y: 100, Kind: JointHip, Confidence: 1})
	test.That(t, j.Known(), test.ShouldBeFalse)
	test.That(t, s.CoverageSnapshot().Total(), test.ShouldEqual, 0)
}

func TestSessionLowPower(t *testing.T) {
	s := newTestSession(t)
	s.SetLowPower(true)
	test.That(t, s.LowPower(), test.ShouldBeTrue)

	court := FrameFromImage(paintCourt(600, 400))

	m := s.IngestFrame(FrameFromImage(fillFrame(600, 400, grass)))
	test.That(t, m.Detected, test.ShouldBeFalse)

	// frames 2 and 3 are skipped
	test.That(t, s.IngestFrame(court).Detected, test.ShouldBeFalse)
	test.That(t, s.IngestFrame(court).Detected, test.ShouldBeFalse)

	m = s.IngestFrame(court)
	test.That(t, m.Detected, test.ShouldBeTrue)
	test.That(t, m.ScaleX, test.ShouldEqual, 0.5)
	test.That(t, m.ScaleY, test.ShouldEqual, 0.5)
	test.That(t, s.Regions().NetY, test.ShouldAlmostEqual, 200, 4)

	s.SetLowPower(false)
	test.That(t, s.LowPower(), test.ShouldBeFalse)
	test.That(t, s.IngestFrame(court).ScaleX, test.ShouldEqual, 1.0)
}

func TestSessionLowPowerOddFrame(t *testing.T) {
	s := newTestSession(t)
	s.SetLowPower(true)

	// odd sizes round down differently on each axis
	m := s.IngestFrame(FrameFromImage(paintCourt(601, 401)))
	test.That(t, m.Detected, test.ShouldBeTrue)
	test.That(t, m.ScaleX, test.ShouldEqual, 300.0/601.0)
	test.That(t, m.ScaleY, test.ShouldEqual, 200.0/401.0)

	r := s.Regions()
	test.That(t, r.NetY, test.ShouldAlmostEqual, 200, 4)
	test.That(t, r.CenterX, test.ShouldAlmostEqual, 300, 4)
	test.That(t, r.CourtBounds.X.Lo, test.ShouldAlmostEqual, 60, 4)
	test.That(t, r.CourtBounds.X.Hi, test.ShouldAlmostEqual, 540, 4)
}

func TestSessionJudging(t *testing.T) {
	s := newTestSession(t)
	s.IngestFrame(FrameFromImage(paintCourt(600, 400)))

	t0 := time.Unix(50, 0)

	j, ok := s.JudgePlayer(Pose{
		{Name: JointLeftHip, X: 290, Y: 100, Confidence: 0.9},
		{Name: JointRightHip, X: 310, Y: 100, Confidence: 0.9},
	}, t0)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, j.Known(), test.ShouldBeTrue)
	test.That(t, j.CourtSide, test.ShouldEqual, Near)
	test.That(t, s.CoverageSnapshot().Total(), test.ShouldEqual, 1)
	test.That(t, s.CoverageStats().CellsVisited, test.ShouldEqual, 1)

	_, ok = s.JudgePlayer(Pose{{Name: JointLeftAnkle, X: 1, Y: 1, Confidence: 1}}, t0)
	test.That(t, ok, test.ShouldBeFalse)

	ball := func(x, y float64) []DetectedObject {
		return []DetectedObject{{Class: "sports ball", BBox: [4]float64{x - 5, y - 5, 10, 10}, Confidence: 0.9}}
	}

	j, b, ok := s.JudgeBall(ball(400, 175), t0)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, b.X, test.ShouldEqual, 400.0)
	test.That(t, j.ServingBox, test.ShouldEqual, Deuce)
	test.That(t, j.InOut, test.ShouldEqual, In)

	j, _, ok = s.JudgeBall(ball(400, 225), t0.Add(time.Second))
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, j.ServingBox, test.ShouldEqual, ServingBoxUnknown)
	test.That(t, s.BallSpeed(), test.ShouldAlmostEqual, 5)

	_, _, ok = s.JudgeBall(nil, t0)
	test.That(t, ok, test.ShouldBeFalse)

	// balls don't count toward coverage
	test.That(t, s.CoverageSnapshot().Total(), test.ShouldEqual, 1)

	s.ResetCoverage()
	test.That(t, s.CoverageSnapshot().Total(), test.ShouldEqual, 0)
	test.That(t, s.BallSpeed(), test.ShouldEqual, 0.0)
}
