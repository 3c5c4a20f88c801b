package tenniscourt

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"go.viam.com/rdk/logging"
)

// CourtTrackingSession owns the court geometry and coverage of one video
// stream. It is not safe for concurrent use; readers get copies.
type CourtTrackingSession struct {
	id     string
	cal    Calibration
	logger logging.Logger

	lowPower bool
	frames   int

	width, height int

	model    CourtModel
	regions  CourtRegions
	coverage *Coverage
	ball     *BallTracker
}

// NewSession starts a session with no court geometry.
func NewSession(cal Calibration, logger logging.Logger) (*CourtTrackingSession, error) {
	err := cal.Validate()
	if err != nil {
		return nil, fmt.Errorf("bad calibration: %w", err)
	}

	s := &CourtTrackingSession{
		id:       uuid.NewString(),
		cal:      cal,
		logger:   logger,
		coverage: NewCoverage(cal.CoverageCellSize),
		ball:     NewBallTracker(cal.SpeedScale),
	}
	s.model = CourtModel{ScaleX: 1, ScaleY: 1}
	return s, nil
}

// ID identifies the session in logs and command output.
func (s *CourtTrackingSession) ID() string {
	return s.id
}

// Calibration returns the constants the session runs with.
func (s *CourtTrackingSession) Calibration() Calibration {
	return s.cal
}

// SetLowPower switches between analysing every frame at the configured scale
// and analysing one frame in FrameStride at LowPowerScale.
func (s *CourtTrackingSession) SetLowPower(on bool) {
	if on != s.lowPower {
		s.logger.Infof("session %s low power: %v", s.id, on)
	}
	s.lowPower = on
}

// LowPower reports whether low power mode is on.
func (s *CourtTrackingSession) LowPower() bool {
	return s.lowPower
}

func (s *CourtTrackingSession) analysisScale() float64 {
	if s.lowPower {
		return min(s.cal.AnalysisScale, s.cal.LowPowerScale)
	}
	return s.cal.AnalysisScale
}

// IngestFrame runs court detection on a frame. A detected court replaces the
// current model and regions; otherwise they are kept. The current model is returned.
func (s *CourtTrackingSession) IngestFrame(frame Frame) CourtModel {
	s.frames++

	if !frame.Valid() {
		s.logger.Debugf("session %s: ignoring malformed frame %dx%d (%d bytes)", s.id, frame.Width, frame.Height, len(frame.Pix))
		return s.Model()
	}

	if frame.Width != s.width || frame.Height != s.height {
		if s.width != 0 {
			s.logger.Infof("session %s: frame size changed %dx%d -> %dx%d, dropping court geometry",
				s.id, s.width, s.height, frame.Width, frame.Height)
		}
		s.width, s.height = frame.Width, frame.Height
		s.model = CourtModel{ScaleX: 1, ScaleY: 1}
		s.regions = DefaultRegions(frame.Width, frame.Height)
	}

	if s.lowPower && (s.frames-1)%s.cal.FrameStride != 0 {
		return s.Model()
	}

	edges := ExtractEdges(frame, s.analysisScale())
	lines := DetectLines(edges)
	m := ClassifyLines(lines, edges.Width, edges.Height)
	m.ScaleX = float64(edges.Width) / float64(frame.Width)
	m.ScaleY = float64(edges.Height) / float64(frame.Height)

	s.logger.Debugf("session %s frame %d: %d edge pixels, %d candidates, %d roles",
		s.id, s.frames, edges.Count(), len(lines), m.PopulatedSlots())

	if !m.Detected {
		if s.model.Detected {
			s.logger.Debugf("session %s: no court in frame %d, keeping previous geometry", s.id, s.frames)
		}
		return s.Model()
	}

	if !s.model.Detected {
		s.logger.Infof("session %s: court acquired, confidence %0.2f", s.id, m.Confidence)
	}

	s.model = m
	s.regions = MapRegions(m, frame.Width, frame.Height, s.regions)

	return s.Model()
}

// Model returns a copy of the current court model.
func (s *CourtTrackingSession) Model() CourtModel {
	return s.model.Clone()
}

// Regions returns the current regions.
func (s *CourtTrackingSession) Regions() CourtRegions {
	return s.regions
}

// JudgePosition judges one tracked point. Balls also update the speed
// estimate; any other kind is treated as a player's hip and, when judged,
// counted toward coverage.
func (s *CourtTrackingSession) JudgePosition(pos ObjectPosition) PositionJudgment {
	if pos.Kind == KindBall {
		s.ball.Observe(pos)
		return AnalyzeBall(s.model, s.regions, pos.X, pos.Y)
	}
	return s.judgePlayer(pos, ObjectPosition{}, ObjectPosition{})
}

func (s *CourtTrackingSession) judgePlayer(hip, leftAnkle, rightAnkle ObjectPosition) PositionJudgment {
	j := AnalyzePlayer(s.model, s.regions, s.cal, hip, leftAnkle, rightAnkle)
	if j.Label != LabelUnknown {
		s.coverage.Record(hip.X, hip.Y)
	}
	return j
}

// JudgeBall finds the ball among detector output and judges it.
// ok is false when there is no ball.
func (s *CourtTrackingSession) JudgeBall(objects []DetectedObject, ts time.Time) (PositionJudgment, ObjectPosition, bool) {
	ball, ok := BallCenter(objects, s.cal, ts)
	if !ok {
		return PositionJudgment{}, ObjectPosition{}, false
	}
	return s.JudgePosition(ball), ball, true
}

// JudgePlayer judges one person's pose. ok is false when the pose has no hips.
func (s *CourtTrackingSession) JudgePlayer(pose Pose, ts time.Time) (PositionJudgment, bool) {
	hip, ok := HipFromPose(pose, ts)
	if !ok {
		return PositionJudgment{}, false
	}
	left, right := AnklesFromPose(pose, ts)
	return s.judgePlayer(hip, left, right), true
}

// BallSpeed is the most recent ball speed estimate.
func (s *CourtTrackingSession) BallSpeed() float64 {
	return s.ball.Speed()
}

// CoverageSnapshot returns a copy of the coverage heatmap.
func (s *CourtTrackingSession) CoverageSnapshot() CoverageHeatmap {
	return s.coverage.Snapshot()
}

// CoverageStats summarises the coverage heatmap.
func (s *CourtTrackingSession) CoverageStats() CoverageStats {
	return s.coverage.Snapshot().Stats(s.coverage.CellSize())
}

// ResetCoverage clears the heatmap and the ball history.
func (s *CourtTrackingSession) ResetCoverage() {
	s.coverage.Reset()
	s.ball.Reset()
}

// Frames is the number of frames ingested, including skipped ones.
func (s *CourtTrackingSession) Frames() int {
	return s.frames
}
