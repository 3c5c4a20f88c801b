package tenniscourt

import (
	"slices"
	"strings"
	"time"

	"go.viam.com/rdk/vision/objectdetection"
)

// DetectedObject is one object detector result. BBox is x, y, width, height.
type DetectedObject struct {
	Class      string
	BBox       [4]float64
	Confidence float64
}

// Center of the bounding box.
func (o DetectedObject) Center() (float64, float64) {
	return o.BBox[0] + o.BBox[2]/2, o.BBox[1] + o.BBox[3]/2
}

// ObjectsFromDetections converts vision service detections.
func ObjectsFromDetections(dets []objectdetection.Detection) []DetectedObject {
	out := make([]DetectedObject, 0, len(dets))
	for _, d := range dets {
		box := d.BoundingBox()
		if box == nil {
			continue
		}
		out = append(out, DetectedObject{
			Class:      d.Label(),
			BBox:       [4]float64{float64(box.Min.X), float64(box.Min.Y), float64(box.Dx()), float64(box.Dy())},
			Confidence: d.Score(),
		})
	}
	return out
}

// BallCenter picks the most confident ball in objects.
// ok is false when no object passes the class and confidence filters.
func BallCenter(objects []DetectedObject, cal Calibration, ts time.Time) (ObjectPosition, bool) {
	best := -1
	for i, o := range objects {
		if !isBallClass(cal, o.Class) || o.Confidence < cal.MinBallConfidence {
			continue
		}
		if !finite(o.BBox[0], o.BBox[1], o.BBox[2], o.BBox[3], o.Confidence) {
			continue
		}
		if best < 0 || o.Confidence > objects[best].Confidence {
			best = i
		}
	}
	if best < 0 {
		return ObjectPosition{}, false
	}

	x, y := objects[best].Center()
	return ObjectPosition{X: x, Y: y, Kind: KindBall, Confidence: objects[best].Confidence, Timestamp: ts}, true
}

func isBallClass(cal Calibration, class string) bool {
	return slices.ContainsFunc(cal.BallClasses, func(c string) bool {
		return strings.EqualFold(c, class)
	})
}

// Joint names read from pose output.
const (
	JointLeftHip    = "left_hip"
	JointRightHip   = "right_hip"
	JointLeftAnkle  = "left_ankle"
	JointRightAnkle = "right_ankle"

	// JointHip is the kind of the hip point derived from both hips.
	JointHip = "hip"
)

// Keypoint is one named joint from a pose estimator.
type Keypoint struct {
	Name       string
	X, Y       float64
	Confidence float64
}

// Pose is the keypoints of one person.
type Pose []Keypoint

// Joint returns the named keypoint.
func (p Pose) Joint(name string) (Keypoint, bool) {
	for _, k := range p {
		if k.Name == name {
			return k, true
		}
	}
	return Keypoint{}, false
}

func (k Keypoint) position(ts time.Time) ObjectPosition {
	return ObjectPosition{X: k.X, Y: k.Y, Kind: k.Name, Confidence: k.Confidence, Timestamp: ts}
}

// HipFromPose is the midpoint of both hips, with the lower confidence of the
// two. If only one hip is present it is used alone.
func HipFromPose(p Pose, ts time.Time) (ObjectPosition, bool) {
	l, lok := p.Joint(JointLeftHip)
	r, rok := p.Joint(JointRightHip)

	var hip ObjectPosition
	switch {
	case lok && rok:
		hip = ObjectPosition{
			X:          (l.X + r.X) / 2,
			Y:          (l.Y + r.Y) / 2,
			Confidence: min(l.Confidence, r.Confidence),
		}
	case lok:
		hip = l.position(ts)
	case rok:
		hip = r.position(ts)
	default:
		return ObjectPosition{}, false
	}

	hip.Kind = JointHip
	hip.Timestamp = ts
	return hip, true
}

// AnklesFromPose returns the left and right ankles. Missing ankles have zero
// confidence, which never passes the ankle filter.
func AnklesFromPose(p Pose, ts time.Time) (ObjectPosition, ObjectPosition) {
	var left, right ObjectPosition
	if k, ok := p.Joint(JointLeftAnkle); ok {
		left = k.position(ts)
	}
	if k, ok := p.Joint(JointRightAnkle); ok {
		right = k.position(ts)
	}
	return left, right
}
