// Package ephemeris defines the raw-state accessor contract (C1) the
// rest of the module is built against: geocentric and barycentric
// Cartesian position/velocity, in AU and AU/day, at a requested TDB
// Julian Date, with no frame rotation, light-time propagation, or
// aberration correction applied. Concrete kernel readers (see the kernel
// package) implement Handle.
package ephemeris

import (
	"github.com/huangjq/lunisolar/calerr"
	"github.com/huangjq/lunisolar/vecmat"
)

// Body is a NAIF-style body identifier recognized by this module. Only
// the bodies the lunisolar calendar needs are enumerated; a concrete
// Handle may support others.
type Body int

const (
	SSB   Body = 0   // solar system barycenter
	EMB   Body = 3   // Earth-Moon barycenter
	Sun   Body = 10  // Sun
	Moon  Body = 301 // Moon
	Earth Body = 399 // Earth
)

// Handle is the minimal ephemeris-reading contract the apparent-longitude
// engine (C4) and aberration corrections (C5) are built on. A Handle is
// logically owned by a single worker at a time: implementations are not
// required to be safe for concurrent use, matching the batch
// orchestrator's one-handle-per-worker resource model.
type Handle interface {
	// State returns the position (AU) and velocity (AU/day) of target
	// relative to center, evaluated at the given TDB Julian Date, in the
	// ICRS frame with no aberration or light-time correction applied.
	// Returns a *calerr.Error of Kind EphemerisUnavailable if the
	// kernel has no data covering the request.
	State(target, center Body, jdTDB float64) (pos, vel vecmat.Vec3, err error)
}

// GeocentricPosition is a convenience wrapper returning target's raw,
// uncorrected position and velocity relative to Earth.
func GeocentricPosition(h Handle, target Body, jdTDB float64) (pos, vel vecmat.Vec3, err error) {
	return h.State(target, Earth, jdTDB)
}

// Unavailable wraps err (which may be nil) into a *calerr.Error tagged
// EphemerisUnavailable, the standard fatal translation a Handle
// implementation applies to any kernel-access failure.
func Unavailable(context string, err error) error {
	if err == nil {
		return calerr.New(calerr.EphemerisUnavailable, context)
	}
	return calerr.Wrap(calerr.EphemerisUnavailable, err, context)
}
