package thermistor

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrTooFewPoints        = errors.New("calibration table needs at least two points")
	ErrDuplicateResistance = errors.New("consecutive calibration points share a resistance")
	ErrNotDescending       = errors.New("calibration resistances must be strictly descending")
	ErrInvalidPoint        = errors.New("invalid calibration point")
	ErrInvalidScale        = errors.New("invalid resistance scale factor")
	ErrNotInvertible       = errors.New("calibration temperatures are not strictly ascending")
)

// Unit is the temperature unit a calibration table was measured in.
type Unit string

const (
	Fahrenheit Unit = "F"
	Celsius    Unit = "C"
)

// Point is a single measured (resistance, temperature) pair.
type Point struct {
	Resistance  float64 `yaml:"resistance"`  // Ohms
	Temperature float64 `yaml:"temperature"` // In the table's unit
}

// Table is an immutable NTC calibration curve sorted by descending resistance
// (ascending temperature).
type Table struct {
	name       string
	unit       Unit
	res        []float64
	temp       []float64
	invertible bool
}

// NewTable builds a table from points whose resistances are stored divided by
// scale. The scale is applied once here so lookups only ever see real ohms.
func NewTable(name string, unit Unit, scale float64, points []Point) (*Table, error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("table %q: %w: %v", name, ErrInvalidScale, scale)
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("table %q: %w: got %d", name, ErrTooFewPoints, len(points))
	}

	t := &Table{
		name:       name,
		unit:       unit,
		res:        make([]float64, len(points)),
		temp:       make([]float64, len(points)),
		invertible: true,
	}

	for i, p := range points {
		r := p.Resistance * scale
		if !finite(r) || r < 0 || !finite(p.Temperature) {
			return nil, fmt.Errorf("table %q: %w at index %d: %+v", name, ErrInvalidPoint, i, p)
		}
		t.res[i] = r
		t.temp[i] = p.Temperature

		if i == 0 {
			continue
		}
		switch {
		case r == t.res[i-1]:
			return nil, fmt.Errorf("table %q: %w at index %d: %v ohm", name, ErrDuplicateResistance, i, r)
		case r > t.res[i-1]:
			return nil, fmt.Errorf("table %q: %w at index %d: %v > %v ohm", name, ErrNotDescending, i, r, t.res[i-1])
		}
		if t.temp[i] <= t.temp[i-1] {
			t.invertible = false
		}
	}

	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Unit returns the temperature unit of the table.
func (t *Table) Unit() Unit { return t.unit }

// Len returns the number of calibration points.
func (t *Table) Len() int { return len(t.res) }

// Invertible reports whether temperatures strictly ascend, which Resistance requires.
func (t *Table) Invertible() bool { return t.invertible }

// Point returns the i-th calibration point with its resistance already scaled.
func (t *Table) Point(i int) Point {
	return Point{Resistance: t.res[i], Temperature: t.temp[i]}
}

// Points returns a copy of all calibration points.
func (t *Table) Points() []Point {
	points := make([]Point, len(t.res))
	for i := range t.res {
		points[i] = t.Point(i)
	}
	return points
}

// Range returns the lowest and highest calibrated resistance.
func (t *Table) Range() (lo, hi float64) {
	return t.res[len(t.res)-1], t.res[0]
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
