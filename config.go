package tenniscourt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/multierr"
)

// Calibration holds the tunable constants of the pipeline. They assume a fixed
// camera framing and are not derived from a real camera calibration.
type Calibration struct {
	// AnalysisScale is the downscale applied before edge extraction, 1 for none.
	AnalysisScale float64 `json:"analysis-scale"`

	LowPowerScale float64 `json:"low-power-scale"`
	FrameStride   int     `json:"frame-stride"`

	NetDistance      float64 `json:"net-distance"`
	BaselineDistance float64 `json:"baseline-distance"`

	MinHipConfidence   float64 `json:"min-hip-confidence"`
	MinAnkleConfidence float64 `json:"min-ankle-confidence"`
	MinBallConfidence  float64 `json:"min-ball-confidence"`

	BallClasses []string `json:"ball-classes"`

	CoverageCellSize int     `json:"coverage-cell-size"`
	SpeedScale       float64 `json:"speed-scale"`
}

// DefaultCalibration returns the stock constants.
func DefaultCalibration() Calibration {
	return Calibration{
		AnalysisScale:      1,
		LowPowerScale:      0.5,
		FrameStride:        3,
		NetDistance:        100,
		BaselineDistance:   200,
		MinHipConfidence:   0.3,
		MinAnkleConfidence: 0.5,
		MinBallConfidence:  0.3,
		BallClasses:        []string{"sports ball", "tennis ball", "ball"},
		CoverageCellSize:   20,
		SpeedScale:         0.1,
	}
}

// Validate reports every out of range field at once.
func (c Calibration) Validate() error {
	var err error

	if c.AnalysisScale <= 0 || c.AnalysisScale > 1 {
		err = multierr.Append(err, fmt.Errorf("analysis-scale must be in (0, 1], got %v", c.AnalysisScale))
	}
	if c.LowPowerScale <= 0 || c.LowPowerScale > 1 {
		err = multierr.Append(err, fmt.Errorf("low-power-scale must be in (0, 1], got %v", c.LowPowerScale))
	}
	if c.FrameStride < 1 {
		err = multierr.Append(err, fmt.Errorf("frame-stride must be at least 1, got %d", c.FrameStride))
	}
	if c.NetDistance <= 0 {
		err = multierr.Append(err, fmt.Errorf("net-distance must be positive, got %v", c.NetDistance))
	}
	if c.BaselineDistance < c.NetDistance {
		err = multierr.Append(err, fmt.Errorf("baseline-distance (%v) must not be less than net-distance (%v)", c.BaselineDistance, c.NetDistance))
	}
	for name, v := range map[string]float64{
		"min-hip-confidence":   c.MinHipConfidence,
		"min-ankle-confidence": c.MinAnkleConfidence,
		"min-ball-confidence":  c.MinBallConfidence,
	} {
		if v < 0 || v > 1 {
			err = multierr.Append(err, fmt.Errorf("%s must be in [0, 1], got %v", name, v))
		}
	}
	if len(c.BallClasses) == 0 {
		err = multierr.Append(err, fmt.Errorf("need at least one ball-classes entry"))
	}
	if c.CoverageCellSize < 1 {
		err = multierr.Append(err, fmt.Errorf("coverage-cell-size must be at least 1, got %d", c.CoverageCellSize))
	}
	if c.SpeedScale <= 0 {
		err = multierr.Append(err, fmt.Errorf("speed-scale must be positive, got %v", c.SpeedScale))
	}

	return err
}

// UnmarshalJSON decodes over DefaultCalibration: missing keys keep their
// default while an explicit zero, such as a confidence floor of 0, is kept.
// Unknown keys are an error.
func (c *Calibration) UnmarshalJSON(data []byte) error {
	type plain Calibration
	p := plain(DefaultCalibration())

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(&p)
	if err != nil {
		return err
	}

	*c = Calibration(p)
	return nil
}

// CalibrationFromAttributes decodes the calibration block of a resource config.
// A nil block is the default calibration.
func CalibrationFromAttributes(attrs map[string]interface{}) (Calibration, error) {
	if attrs == nil {
		return DefaultCalibration(), nil
	}

	data, err := json.Marshal(attrs)
	if err != nil {
		return Calibration{}, err
	}

	var c Calibration
	err = json.Unmarshal(data, &c)
	if err != nil {
		return Calibration{}, err
	}
	return c, c.Validate()
}

// LoadCalibration reads a JSON calibration file. Missing fields take their defaults.
func LoadCalibration(path string) (Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Calibration{}, fmt.Errorf("reading calibration %s: %w", path, err)
	}

	var c Calibration
	err = json.Unmarshal(data, &c)
	if err != nil {
		return Calibration{}, fmt.Errorf("parsing calibration %s: %w", path, err)
	}

	err = c.Validate()
	if err != nil {
		return Calibration{}, fmt.Errorf("invalid calibration %s: %w", path, err)
	}
	return c, nil
}
