// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"fmt"
	"math"

	"github.com/pdiddy/governance-engine/pkg/types"
)

// EarthRadiusMeters is the IUGG mean earth radius.
const EarthRadiusMeters = 6371008.8

// GIS compares the surveyed coordinate with the cadastral plot
// coordinate. It does not apply when either is missing.
type GIS struct {
	ToleranceMeters float64
}

func (GIS) Name() types.RuleName { return types.RuleGIS }

func (GIS) Applies(rec types.LandRecord) bool { return rec.HasCoordinates() }

func (r GIS) Evaluate(rec types.LandRecord) types.RuleOutcome {
	d := Haversine(*rec.Claimed, *rec.Official)
	if d <= r.ToleranceMeters {
		return pass(fmt.Sprintf("claimed point %.0fm from plot", d))
	}
	return fail(GISCap, false, fmt.Sprintf("claimed point %.0fm from plot exceeds %.0fm tolerance", d, r.ToleranceMeters))
}

// Haversine returns the great-circle distance between a and b in metres.
func Haversine(a, b types.Coordinate) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(b.Lat - a.Lat)
	dLon := rad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
