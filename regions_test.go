package tenniscourt

import (
	"testing"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func rect(x0, x1, y0, y1 float64) r2.Rect {
	return r2.Rect{X: r1.Interval{Lo: x0, Hi: x1}, Y: r1.Interval{Lo: y0, Hi: y1}}
}

func fullCourtRegions() (CourtModel, CourtRegions) {
	m := ClassifyLines(fullCourtLines(), 600, 400)
	return m, MapRegions(m, 600, 400, DefaultRegions(600, 400))
}

func TestDefaultRegions(t *testing.T) {
	r := DefaultRegions(600, 400)
	test.That(t, r.Valid, test.ShouldBeFalse)
	test.That(t, r.NetY, test.ShouldEqual, 200.0)
	test.That(t, r.CenterX, test.ShouldEqual, 300.0)
	test.That(t, r.ServiceLineTopY, test.ShouldEqual, 150.0)
	test.That(t, r.ServiceLineBottomY, test.ShouldEqual, 250.0)
	test.That(t, r.NetHeightCm, test.ShouldEqual, 91.4)
	test.That(t, r.CourtBounds, test.ShouldResemble, rect(0, 600, 150, 250))
	test.That(t, r.DeuceServiceBox, test.ShouldResemble, rect(300, 600, 150, 200))
	test.That(t, r.AdServiceBox, test.ShouldResemble, rect(0, 300, 150, 200))
}

func TestMapRegionsUndetectedKeepsPrevious(t *testing.T) {
	prev := DefaultRegions(600, 400)
	m := ClassifyLines([]DetectedLine{hLine(50, 100), vLine(60, 100)}, 600, 400)
	test.That(t, m.Detected, test.ShouldBeFalse)
	test.That(t, MapRegions(m, 600, 400, prev), test.ShouldResemble, prev)

	_, good := fullCourtRegions()
	test.That(t, MapRegions(m, 600, 400, good), test.ShouldResemble, good)
}

func TestMapRegionsFullCourt(t *testing.T) {
	_, r := fullCourtRegions()
	test.That(t, r.Valid, test.ShouldBeTrue)
	test.That(t, r.NetY, test.ShouldEqual, 200.0)
	test.That(t, r.CenterX, test.ShouldEqual, 300.0)
	test.That(t, r.ServiceLineTopY, test.ShouldEqual, 150.0)
	test.That(t, r.ServiceLineBottomY, test.ShouldEqual, 250.0)
	test.That(t, r.CourtBounds, test.ShouldResemble, rect(60, 540, 150, 250))
	test.That(t, r.DeuceServiceBox, test.ShouldResemble, rect(300, 540, 150, 200))
	test.That(t, r.AdServiceBox, test.ShouldResemble, rect(60, 300, 150, 200))
}

func TestMapRegionsDefaultsForMissingRoles(t *testing.T) {
	// three horizontals and two sidelines, no centre line
	m := ClassifyLines([]DetectedLine{
		hLine(50, 600), hLine(200, 600), hLine(350, 600),
		vLine(60, 400), vLine(540, 400),
	}, 600, 400)
	r := MapRegions(m, 600, 400, DefaultRegions(600, 400))
	test.That(t, r.Valid, test.ShouldBeTrue)
	test.That(t, r.CenterX, test.ShouldEqual, 300.0)
	test.That(t, r.NetY, test.ShouldEqual, 200.0)
}

func TestMapRegionsScale(t *testing.T) {
	half := make([]DetectedLine, 0)
	for _, l := range fullCourtLines() {
		s := l.Scaled(0.5)
		half = append(half, NewDetectedLine(s.X1, s.Y1, s.X2, s.Y2, l.Strength))
	}
	m := ClassifyLines(half, 300, 200)
	m.ScaleX, m.ScaleY = 0.5, 0.5
	test.That(t, m.Detected, test.ShouldBeTrue)

	r := MapRegions(m, 600, 400, DefaultRegions(600, 400))
	test.That(t, r.NetY, test.ShouldEqual, 200.0)
	test.That(t, r.CourtBounds, test.ShouldResemble, rect(60, 540, 150, 250))
}

func TestMapRegionsScaleXY(t *testing.T) {
	// analysed at half width and quarter height
	m := CourtModel{
		Detected:      true,
		ScaleX:        0.5,
		ScaleY:        0.25,
		SidelineLeft:  &Segment{30, 0, 30, 99},
		SidelineRight: &Segment{270, 0, 270, 99},
		Net:           &Segment{0, 50, 299, 50},
	}
	r := MapRegions(m, 600, 400, DefaultRegions(600, 400))
	test.That(t, r.NetY, test.ShouldEqual, 200.0)
	test.That(t, r.CourtBounds.X.Lo, test.ShouldEqual, 60.0)
	test.That(t, r.CourtBounds.X.Hi, test.ShouldEqual, 540.0)
	test.That(t, r.CenterX, test.ShouldEqual, 300.0)

	m.ScaleX, m.ScaleY = 0, 0
	r = MapRegions(m, 600, 400, DefaultRegions(600, 400))
	test.That(t, r.NetY, test.ShouldEqual, 50.0)
}

func TestRegionContainment(t *testing.T) {
	models := []CourtModel{}

	m, _ := fullCourtRegions()
	models = append(models, m)

	// centre line outside the sidelines
	models = append(models, CourtModel{
		Detected:          true,
		ScaleX:            1,
		ScaleY:            1,
		SidelineLeft:      &Segment{400, 0, 400, 399},
		SidelineRight:     &Segment{500, 0, 500, 399},
		CenterServiceLine: &Segment{300, 0, 300, 399},
		Net:               &Segment{0, 200, 599, 200},
	})

	// service line on the far side of the net
	models = append(models, CourtModel{
		Detected:       true,
		ScaleX:         1,
		ScaleY:         1,
		ServiceLineTop: &Segment{0, 300, 599, 300},
		Net:            &Segment{0, 200, 599, 200},
	})

	// nothing but the flag
	models = append(models, CourtModel{Detected: true})

	for i, m := range models {
		r := MapRegions(m, 600, 400, DefaultRegions(600, 400))
		t.Logf("%d: %v", i, r)
		test.That(t, r.DeuceServiceBox.InteriorIntersects(r.AdServiceBox), test.ShouldBeFalse)
		test.That(t, r.CourtBounds.Contains(r.DeuceServiceBox), test.ShouldBeTrue)
		test.That(t, r.CourtBounds.Contains(r.AdServiceBox), test.ShouldBeTrue)
	}
}

func TestRegionsClosedIntervals(t *testing.T) {
	_, r := fullCourtRegions()
	test.That(t, r.Contains(60, 150), test.ShouldBeTrue)
	test.That(t, r.Contains(540, 250), test.ShouldBeTrue)
	test.That(t, r.Contains(59, 150), test.ShouldBeFalse)
	test.That(t, r.Contains(540, 251), test.ShouldBeFalse)
}
