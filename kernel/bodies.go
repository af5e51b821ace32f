package kernel

import "github.com/huangjq/lunisolar/ephemeris"

// ssbID is the NAIF body ID for the Solar System Barycenter, the root
// every chain walk terminates at. Other bodies are addressed directly by
// their ephemeris.Body (= NAIF ID) value; SPK files may carry additional
// intermediate barycenters (Mercury, Venus, Mars, the outer planets,
// Pluto) as chain hops, which the DAF reader discovers from the file's
// own segment summaries rather than needing them named here.
const ssbID = 0

// These mirror ephemeris.Body's NAIF IDs as untyped ints, for use where
// this package works with raw segment target/center fields rather than
// the ephemeris.Body type itself.
const (
	sunID   = int(ephemeris.Sun)
	moonID  = int(ephemeris.Moon)
	earthID = int(ephemeris.Earth)
)
