package thermistor

// Zone tells which part of the curve a resistance falls into.
type Zone int

const (
	// ZoneInterpolate is strictly inside the calibrated range.
	ZoneInterpolate Zone = iota
	// ZoneCold is at or above the highest calibrated resistance, extended with the slope of the first pair.
	ZoneCold
	// ZoneHot is at or below the lowest calibrated resistance, extended with the slope of the last pair.
	ZoneHot
)

func (z Zone) String() string {
	switch z {
	case ZoneInterpolate:
		return "interpolate"
	case ZoneCold:
		return "cold"
	case ZoneHot:
		return "hot"
	}
	return "unknown"
}

// Bracket is the pair of adjacent calibration points used for a lookup.
// Lower is always Upper-1, Lower being the colder (higher resistance) point.
type Bracket struct {
	Zone  Zone
	Lower int
	Upper int
}

// Bracket classifies r. The cold test runs first, then the hot test, then the
// scan over res[i] >= r > res[i+1]. A resistance equal to an interior point
// therefore lands in the pair where that point is the colder end.
func (t *Table) Bracket(r float64) Bracket {
	n := len(t.res)
	if r >= t.res[0] {
		return Bracket{Zone: ZoneCold, Lower: 0, Upper: 1}
	}
	if r <= t.res[n-1] {
		return Bracket{Zone: ZoneHot, Lower: n - 2, Upper: n - 1}
	}
	for i := 0; i < n-1; i++ {
		if r <= t.res[i] && r > t.res[i+1] {
			return Bracket{Zone: ZoneInterpolate, Lower: i, Upper: i + 1}
		}
	}
	// Unreachable for a validated table; the cold/hot tests cover the ends.
	return Bracket{Zone: ZoneHot, Lower: n - 2, Upper: n - 1}
}

// Slope returns dT/dR between the two points of b.
func (t *Table) Slope(b Bracket) float64 {
	return (t.temp[b.Upper] - t.temp[b.Lower]) / (t.res[b.Upper] - t.res[b.Lower])
}

// Temperature converts a resistance in ohms to a temperature in the table's
// unit. Inputs outside the calibrated range are extrapolated along the nearest
// segment rather than rejected.
func (t *Table) Temperature(r float64) float64 {
	b := t.Bracket(r)
	// Anchor on the point nearest r so calibrated resistances map back exactly.
	if b.Zone == ZoneHot {
		return t.temp[b.Upper] + t.Slope(b)*(r-t.res[b.Upper])
	}
	return t.temp[b.Lower] + t.Slope(b)*(r-t.res[b.Lower])
}

// Resistance is the inverse of Temperature, used to simulate a thermistor at a
// given temperature.
func (t *Table) Resistance(temp float64) (float64, error) {
	if !t.invertible {
		return 0, ErrNotInvertible
	}

	n := len(t.temp)
	lo, hi := n-2, n-1
	switch {
	case temp <= t.temp[0]:
		lo, hi = 0, 1
	case temp >= t.temp[n-1]:
	default:
		for i := 0; i < n-1; i++ {
			if temp >= t.temp[i] && temp < t.temp[i+1] {
				lo, hi = i, i+1
				break
			}
		}
	}

	dRdT := (t.res[hi] - t.res[lo]) / (t.temp[hi] - t.temp[lo])
	return t.res[lo] + dRdT*(temp-t.temp[lo]), nil
}
