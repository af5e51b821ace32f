package coord

import (
	"math"
	"testing"

	"github.com/huangjq/lunisolar/ephemeris"
	"github.com/huangjq/lunisolar/vecmat"
)

// linearHandle is an in-memory ephemeris.Handle fixture: each body moves
// at a constant velocity from a fixed position at jd=0, relative to the
// SSB. Earth sits still at the origin so the geometry is easy to verify
// by hand.
type linearHandle struct {
	pos0 map[ephemeris.Body]vecmat.Vec3
	vel  map[ephemeris.Body]vecmat.Vec3
}

func (h linearHandle) State(target, center ephemeris.Body, jdTDB float64) (vecmat.Vec3, vecmat.Vec3, error) {
	pt := h.pos0[target].Add(h.vel[target].Scale(jdTDB))
	pc := h.pos0[center].Add(h.vel[center].Scale(jdTDB))
	vt := h.vel[target]
	vc := h.vel[center]
	return pt.Sub(pc), vt.Sub(vc), nil
}

func newFixture() linearHandle {
	return linearHandle{
		pos0: map[ephemeris.Body]vecmat.Vec3{
			ephemeris.Earth: {0, 0, 0},
			ephemeris.Sun:   {1.0, 0, 0},
			ephemeris.Moon:  {0.00257, 0, 0},
		},
		vel: map[ephemeris.Body]vecmat.Vec3{
			ephemeris.Earth: {0, 0, 0},
			ephemeris.Sun:   {0, 0.0172, 0},
			ephemeris.Moon:  {0, 0.214, 0},
		},
	}
}

func TestPropagateConverges(t *testing.T) {
	h := newFixture()
	st, err := Propagate(h, ephemeris.Sun, 100.0, 3)
	if err != nil {
		t.Fatalf("Propagate error: %v", err)
	}
	if st.RetardedJD >= 100.0 {
		t.Errorf("retarded time %f should be before request time 100", st.RetardedJD)
	}
	lt := st.Pos.Norm() / CAUDay
	if math.Abs(100.0-st.RetardedJD-lt) > 1e-9 {
		t.Errorf("retarded time inconsistent with light-time: jd-tr=%.12f, lt=%.12f",
			100.0-st.RetardedJD, lt)
	}
}

func TestAberrateZeroVelocityIsIdentity(t *testing.T) {
	los := vecmat.Vec3{1, 0, 0}
	got := Aberrate(los, vecmat.Vec3{0, 0, 0})
	if math.Abs(got.Norm()-los.Norm()) > 1e-12 || math.Abs(got.X-los.X) > 1e-12 {
		t.Errorf("Aberrate with zero velocity changed the vector: %+v", got)
	}
}

func TestAberratePreservesDistance(t *testing.T) {
	los := vecmat.Vec3{1.0, 0.3, -0.1}
	obsVel := vecmat.Vec3{0.002, 0.015, 0.0}
	got := Aberrate(los, obsVel)
	if math.Abs(got.Norm()-los.Norm()) > 1e-9 {
		t.Errorf("Aberrate changed distance: got %f, want %f", got.Norm(), los.Norm())
	}
}

func TestFullyAberratedRuns(t *testing.T) {
	h := newFixture()
	v, err := FullyAberrated(h, ephemeris.Moon, 50.0, 3)
	if err != nil {
		t.Fatalf("FullyAberrated error: %v", err)
	}
	if v.Norm() == 0 {
		t.Error("expected nonzero apparent position")
	}
}
