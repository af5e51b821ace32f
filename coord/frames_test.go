package coord

import (
	"math"
	"testing"

	"github.com/huangjq/lunisolar/vecmat"
)

func orthoCheck(t *testing.T, name string, m vecmat.Mat3) {
	t.Helper()
	prod := m.Mul(m.Transpose())
	id := vecmat.Identity3()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(prod[i][j]-id[i][j]) > 1e-9 {
				t.Errorf("%s not orthogonal at [%d][%d]: %f", name, i, j, prod[i][j])
			}
		}
	}
}

func TestBiasMatrixOrthogonal(t *testing.T) {
	orthoCheck(t, "BiasMatrix", BiasMatrix())
}

func TestPrecessionMatrixAtJ2000(t *testing.T) {
	m := PrecessionMatrix(j2000JD)
	id := vecmat.Identity3()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(m[i][j]-id[i][j]) > 1e-9 {
				t.Errorf("PrecessionMatrix(J2000)[%d][%d] = %f, want identity", i, j, m[i][j])
			}
		}
	}
}

func TestPrecessionMatrixOrthogonal(t *testing.T) {
	orthoCheck(t, "PrecessionMatrix", PrecessionMatrix(j2000JD+3652.5))
}

func TestMeanObliquityAtJ2000(t *testing.T) {
	eps := MeanObliquity(j2000JD)
	wantDeg := 84381.406 / 3600.0
	gotDeg := eps * 180.0 / math.Pi
	if math.Abs(gotDeg-wantDeg) > 1e-9 {
		t.Errorf("MeanObliquity(J2000) = %f deg, want %f deg", gotDeg, wantDeg)
	}
}

func TestNutationAnglesSmall(t *testing.T) {
	dPsi, dEps := NutationAngles(j2000JD + 1000)
	// Nutation never exceeds about 20 arcsec in longitude or 10 in
	// obliquity.
	const maxAS = 20.5 / asPerRad
	if math.Abs(dPsi) > maxAS {
		t.Errorf("dPsi = %e rad, exceeds expected bound", dPsi)
	}
	if math.Abs(dEps) > maxAS {
		t.Errorf("dEps = %e rad, exceeds expected bound", dEps)
	}
}

func TestNutationMatrixOrthogonal(t *testing.T) {
	orthoCheck(t, "NutationMatrix", NutationMatrix(j2000JD+1000))
}
