package tenniscourt

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/multierr"
	"go.viam.com/test"
)

func TestDefaultCalibration(t *testing.T) {
	c := DefaultCalibration()
	test.That(t, c.Validate(), test.ShouldBeNil)
	test.That(t, c.NetDistance, test.ShouldEqual, 100.0)
	test.That(t, c.BaselineDistance, test.ShouldEqual, 200.0)
}

func TestCalibrationFromAttributes(t *testing.T) {
	c, err := CalibrationFromAttributes(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldResemble, DefaultCalibration())

	// an explicit zero means accept any confidence, not use the default
	c, err = CalibrationFromAttributes(map[string]interface{}{
		"min-hip-confidence":   0.0,
		"min-ankle-confidence": 0,
		"frame-stride":         5.0,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.MinHipConfidence, test.ShouldEqual, 0.0)
	test.That(t, c.MinAnkleConfidence, test.ShouldEqual, 0.0)
	test.That(t, c.MinBallConfidence, test.ShouldEqual, 0.3)
	test.That(t, c.FrameStride, test.ShouldEqual, 5)

	_, err = CalibrationFromAttributes(map[string]interface{}{"net-distance": 0.0})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "net-distance")

	_, err = CalibrationFromAttributes(map[string]interface{}{"net-distanse": 50.0})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCalibrationValidate(t *testing.T) {
	c := DefaultCalibration()
	c.FrameStride = 0
	c.MinAnkleConfidence = 1.5
	c.BaselineDistance = 50
	c.BallClasses = nil

	err := c.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 4)
	test.That(t, err.Error(), test.ShouldContainSubstring, "frame-stride")
	test.That(t, err.Error(), test.ShouldContainSubstring, "min-ankle-confidence")
}

func TestLoadCalibration(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "cal.json")
	err := os.WriteFile(path, []byte(`{"net-distance": 50, "baseline-distance": 100, "ball-classes": ["orb"]}`), 0o644)
	test.That(t, err, test.ShouldBeNil)

	c, err := LoadCalibration(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.NetDistance, test.ShouldEqual, 50.0)
	test.That(t, c.BaselineDistance, test.ShouldEqual, 100.0)
	test.That(t, c.BallClasses, test.ShouldResemble, []string{"orb"})
	test.That(t, c.FrameStride, test.ShouldEqual, 3)
	test.That(t, c.MinHipConfidence, test.ShouldEqual, 0.3)

	zero := filepath.Join(dir, "zero.json")
	test.That(t, os.WriteFile(zero, []byte(`{"min-ball-confidence": 0}`), 0o644), test.ShouldBeNil)
	c, err = LoadCalibration(zero)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.MinBallConfidence, test.ShouldEqual, 0.0)
	test.That(t, c.MinHipConfidence, test.ShouldEqual, 0.3)

	_, err = LoadCalibration(filepath.Join(dir, "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)

	bad := filepath.Join(dir, "bad.json")
	test.That(t, os.WriteFile(bad, []byte(`{"net-distance": `), 0o644), test.ShouldBeNil)
	_, err = LoadCalibration(bad)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "parsing")

	invalid := filepath.Join(dir, "invalid.json")
	test.That(t, os.WriteFile(invalid, []byte(`{"net-distance": 500}`), 0o644), test.ShouldBeNil)
	_, err = LoadCalibration(invalid)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "baseline-distance")
}
