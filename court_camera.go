package tenniscourt

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/multierr"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/data"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/services/vision"
	"go.viam.com/rdk/spatialmath"
)

var CourtCameraModel = family.WithModel("court-camera")

func init() {
	resource.RegisterComponent(camera.API, CourtCameraModel,
		resource.Registration[camera.Camera, *CourtCameraConfig]{
			Constructor: newCourtCamera,
		},
	)
}

type CourtCameraConfig struct {
	Input    string // camera looking at the whole court
	Detector string `json:"detector"` // optional vision service that finds the ball

	LowPower    bool                   `json:"low-power"`
	Calibration map[string]interface{} `json:"calibration"` // keys as in a calibration file, missing ones default
}

func (cfg *CourtCameraConfig) Validate(path string) ([]string, []string, error) {
	var err error
	if cfg.Input == "" {
		err = multierr.Append(err, fmt.Errorf("need an input"))
	}
	if _, cerr := cfg.calibration(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("%s.calibration: %w", path, cerr))
	}
	if err != nil {
		return nil, nil, err
	}

	var optional []string
	if cfg.Detector != "" {
		optional = append(optional, cfg.Detector)
	}
	return []string{cfg.Input}, optional, nil
}

func (cfg *CourtCameraConfig) calibration() (Calibration, error) {
	return CalibrationFromAttributes(cfg.Calibration)
}

func newCourtCamera(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (camera.Camera, error) {
	conf, err := resource.NativeConfig[*CourtCameraConfig](rawConf)
	if err != nil {
		return nil, err
	}

	return NewCourtCamera(ctx, deps, rawConf.ResourceName(), conf, logger)
}

func NewCourtCamera(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *CourtCameraConfig, logger logging.Logger) (camera.Camera, error) {
	var err error

	cc := &CourtCamera{
		name:   name,
		conf:   conf,
		logger: logger,
	}

	cal, err := conf.calibration()
	if err != nil {
		return nil, err
	}

	cc.session, err = NewSession(cal, logger)
	if err != nil {
		return nil, err
	}
	cc.session.SetLowPower(conf.LowPower)

	cc.input, err = camera.FromProvider(deps, conf.Input)
	if err != nil {
		return nil, err
	}

	if conf.Detector != "" {
		cc.detector, err = vision.FromProvider(deps, conf.Detector)
		if err != nil {
			logger.Warnf("can't find detector %s, ball calls only via DoCommand: %v", conf.Detector, err)
			cc.detector = nil
		}
	}

	logger.Infof("court camera %s session %s", name, cc.session.ID())
	return cc, nil
}

// CourtCamera passes through its input camera with the detected court drawn
// on top, and judges positions against it.
type CourtCamera struct {
	resource.AlwaysRebuild
	resource.TriviallyCloseable

	name   resource.Name
	conf   *CourtCameraConfig
	logger logging.Logger

	input    camera.Camera
	detector vision.Service

	mu      sync.Mutex
	session *CourtTrackingSession
}

func (cc *CourtCamera) Image(ctx context.Context, mimeType string, extra map[string]interface{}) ([]byte, camera.ImageMetadata, error) {
	return camera.GetImageFromGetImages(ctx, nil, cc, extra, nil)
}

func (cc *CourtCamera) Images(ctx context.Context, filterSourceNames []string, extra map[string]interface{}) ([]camera.NamedImage, resource.ResponseMetadata, error) {
	ni, rm, err := cc.input.Images(ctx, nil, extra)
	if err != nil {
		return nil, rm, err
	}

	if len(ni) == 0 {
		return nil, rm, fmt.Errorf("no images returned from input camera")
	}

	srcImg, err := ni[0].Image(ctx)
	if err != nil {
		return nil, rm, err
	}

	dst := cc.processImage(ctx, srcImg, extra)

	result, err := camera.NamedImageFromImage(dst, ni[0].SourceName, "", data.Annotations{})
	if err != nil {
		return nil, rm, err
	}
	return []camera.NamedImage{result}, rm, nil
}

// processImage ingests one image, judges the ball if there is a detector, and
// returns the debug overlay.
func (cc *CourtCamera) processImage(ctx context.Context, srcImg image.Image, extra map[string]interface{}) image.Image {
	var objects []DetectedObject
	if cc.detector != nil {
		dets, err := cc.detector.Detections(ctx, srcImg, extra)
		if err != nil {
			cc.logger.Warnf("detector failed: %v", err)
		} else {
			objects = ObjectsFromDetections(dets)
		}
	}

	frame := FrameFromImage(srcImg)

	cc.mu.Lock()
	defer cc.mu.Unlock()

	model := cc.session.IngestFrame(frame)
	regions := cc.session.Regions()

	if len(objects) > 0 {
		j, ball, ok := cc.session.JudgeBall(objects, time.Now())
		if ok {
			cc.logger.Debugf("ball at (%0.1f, %0.1f): %s %s", ball.X, ball.Y, j.InOut, j.Label)
		}
	}

	return CourtDebugImage(srcImg, model, regions)
}

type positionCmd struct {
	X, Y       float64
	Kind       string
	Confidence float64
}

type objectCmd struct {
	Class      string
	BBox       []float64 `mapstructure:"bbox"`
	Confidence float64
}

type keypointCmd struct {
	Name       string
	X, Y       float64
	Confidence float64
}

type ballCmd struct {
	X, Y    *float64
	Objects []objectCmd
}

type playerCmd struct {
	Keypoints []keypointCmd
}

type courtCmd struct {
	JudgeBall     *ballCmd     `mapstructure:"judge_ball"`
	JudgePlayer   *playerCmd   `mapstructure:"judge_player"`
	JudgePosition *positionCmd `mapstructure:"judge_position"`
	Coverage      bool
	PlotCoverage  string `mapstructure:"plot_coverage"`
	ResetCoverage bool   `mapstructure:"reset_coverage"`
	Model         bool
	LowPower      *bool `mapstructure:"low_power"`
}

func (cc *CourtCamera) DoCommand(ctx context.Context, cmdMap map[string]interface{}) (map[string]interface{}, error) {
	var cmd courtCmd
	err := mapstructure.Decode(cmdMap, &cmd)
	if err != nil {
		return nil, err
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()

	now := time.Now()

	switch {
	case cmd.JudgeBall != nil:
		return cc.judgeBall(cmd.JudgeBall, now)

	case cmd.JudgePlayer != nil:
		pose := make(Pose, 0, len(cmd.JudgePlayer.Keypoints))
		for _, k := range cmd.JudgePlayer.Keypoints {
			pose = append(pose, Keypoint{Name: k.Name, X: k.X, Y: k.Y, Confidence: k.Confidence})
		}
		j, ok := cc.session.JudgePlayer(pose, now)
		if !ok {
			return nil, fmt.Errorf("no hips in pose")
		}
		return cc.withSession(j.ToMap()), nil

	case cmd.JudgePosition != nil:
		p := cmd.JudgePosition
		if p.Kind == "" {
			return nil, fmt.Errorf("judge_position needs a kind")
		}
		j := cc.session.JudgePosition(ObjectPosition{X: p.X, Y: p.Y, Kind: p.Kind, Confidence: p.Confidence, Timestamp: now})
		return cc.withSession(j.ToMap()), nil

	case cmd.Coverage:
		snap := cc.session.CoverageSnapshot()
		cells := []interface{}{}
		for _, c := range snap.Cells() {
			cells = append(cells, map[string]interface{}{"x": c.X, "y": c.Y, "count": snap[c]})
		}
		res := snap.Stats(cc.session.Calibration().CoverageCellSize).ToMap()
		res["cells"] = cells
		return cc.withSession(res), nil

	case cmd.PlotCoverage != "":
		snap := cc.session.CoverageSnapshot()
		title := fmt.Sprintf("coverage %s", cc.session.ID())
		err := PlotCoverage(snap, cc.session.Calibration().CoverageCellSize, title, cmd.PlotCoverage)
		if err != nil {
			return nil, err
		}
		return cc.withSession(map[string]interface{}{"path": cmd.PlotCoverage, "visits": snap.Total()}), nil

	case cmd.ResetCoverage:
		cc.session.ResetCoverage()
		cc.logger.Infof("session %s coverage reset", cc.session.ID())
		return cc.withSession(map[string]interface{}{}), nil

	case cmd.Model:
		return cc.withSession(modelToMap(cc.session.Model(), cc.session.Regions())), nil

	case cmd.LowPower != nil:
		cc.session.SetLowPower(*cmd.LowPower)
		return cc.withSession(map[string]interface{}{"low_power": *cmd.LowPower}), nil
	}

	return nil, fmt.Errorf("bad cmd %v", cmdMap)
}

func (cc *CourtCamera) judgeBall(cmd *ballCmd, now time.Time) (map[string]interface{}, error) {
	var (
		j    PositionJudgment
		ball ObjectPosition
	)

	switch {
	case cmd.X != nil && cmd.Y != nil:
		ball = ObjectPosition{X: *cmd.X, Y: *cmd.Y, Kind: KindBall, Confidence: 1, Timestamp: now}
		j = cc.session.JudgePosition(ball)
	case len(cmd.Objects) > 0:
		objects := make([]DetectedObject, 0, len(cmd.Objects))
		for _, o := range cmd.Objects {
			if len(o.BBox) != 4 {
				return nil, fmt.Errorf("bbox for %q needs 4 values, got %d", o.Class, len(o.BBox))
			}
			objects = append(objects, DetectedObject{
				Class:      o.Class,
				BBox:       [4]float64{o.BBox[0], o.BBox[1], o.BBox[2], o.BBox[3]},
				Confidence: o.Confidence,
			})
		}
		var ok bool
		j, ball, ok = cc.session.JudgeBall(objects, now)
		if !ok {
			return nil, fmt.Errorf("no ball among %d objects", len(objects))
		}
	default:
		return nil, fmt.Errorf("judge_ball needs x and y or objects")
	}

	res := j.ToMap()
	res["x"] = ball.X
	res["y"] = ball.Y
	res["speed"] = cc.session.BallSpeed()
	return cc.withSession(res), nil
}

func (cc *CourtCamera) withSession(m map[string]interface{}) map[string]interface{} {
	m["session"] = cc.session.ID()
	return m
}

func modelToMap(model CourtModel, regions CourtRegions) map[string]interface{} {
	lines := map[string]interface{}{}
	for name, s := range model.Lines() {
		lines[name] = []interface{}{s.X1, s.Y1, s.X2, s.Y2}
	}
	corners := []interface{}{}
	for _, c := range CourtCorners(model) {
		corners = append(corners, []interface{}{c[0], c[1]})
	}
	return map[string]interface{}{
		"corners":    corners,
		"detected":   model.Detected,
		"confidence": model.Confidence,
		"scale_x":    model.ScaleX,
		"scale_y":    model.ScaleY,
		"lines":      lines,
		"regions":    regions.String(),
		"net_y":      regions.NetY,
		"center_x":   regions.CenterX,
	}
}

func (cc *CourtCamera) NextPointCloud(ctx context.Context, extra map[string]interface{}) (pointcloud.PointCloud, error) {
	return nil, fmt.Errorf("NextPointCloud not supported")
}

func (cc *CourtCamera) Properties(ctx context.Context) (camera.Properties, error) {
	return camera.Properties{}, nil
}

func (cc *CourtCamera) Geometries(ctx context.Context, extra map[string]interface{}) ([]spatialmath.Geometry, error) {
	return nil, nil
}

func (cc *CourtCamera) Name() resource.Name {
	return cc.name
}
