package value

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnknownUnit is returned for unit tokens outside the canonical set.
var ErrUnknownUnit = errors.New("unknown unit")

// Unit is a canonical cargo volume unit.
type Unit string

const (
	UnitTons        Unit = "tons"
	UnitKilotons    Unit = "kilotons"
	UnitBarrels     Unit = "barrels"
	UnitKilobarrels Unit = "kilobarrels"
	UnitCubicMeters Unit = "cubic_meters"
)

// Units lists the canonical units.
func Units() []Unit {
	return []Unit{UnitTons, UnitKilotons, UnitBarrels, UnitKilobarrels, UnitCubicMeters}
}

var unitAliases = map[string]Unit{
	"T":            UnitTons,
	"MT":           UnitTons,
	"TON":          UnitTons,
	"TONS":         UnitTons,
	"TONNES":       UnitTons,
	"KT":           UnitKilotons,
	"KMT":          UnitKilotons,
	"K":            UnitKilotons,
	"KILOTONS":     UnitKilotons,
	"BBL":          UnitBarrels,
	"BBLS":         UnitBarrels,
	"BARRELS":      UnitBarrels,
	"KB":           UnitKilobarrels,
	"KBBL":         UnitKilobarrels,
	"KBBLS":        UnitKilobarrels,
	"KILOBARRELS":  UnitKilobarrels,
	"CBM":          UnitCubicMeters,
	"M3":           UnitCubicMeters,
	"CUBIC_METERS": UnitCubicMeters,
}

// ParseUnit maps a unit token ("KT", "bbls", "cbm") to its canonical unit.
func ParseUnit(s string) (Unit, error) {
	key := strings.ToUpper(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ".")))
	if u, ok := unitAliases[key]; ok {
		return u, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// Quantity is a volume with its unit.
type Quantity struct {
	Value float64
	Unit  Unit
}

func (q Quantity) String() string {
	return fmt.Sprintf("%s %s", Text(q.Value), q.Unit)
}

// In converts the quantity to another unit of the same dimension. Mass and
// volume units do not convert into each other.
func (q Quantity) In(u Unit) (Quantity, bool) {
	if q.Unit == u {
		return q, true
	}
	switch {
	case q.Unit == UnitKilotons && u == UnitTons:
		return Quantity{Value: q.Value * 1000, Unit: u}, true
	case q.Unit == UnitTons && u == UnitKilotons:
		return Quantity{Value: q.Value / 1000, Unit: u}, true
	case q.Unit == UnitKilobarrels && u == UnitBarrels:
		return Quantity{Value: q.Value * 1000, Unit: u}, true
	case q.Unit == UnitBarrels && u == UnitKilobarrels:
		return Quantity{Value: q.Value / 1000, Unit: u}, true
	}
	return Quantity{}, false
}

var quantityRegex = regexp.MustCompile(`^([-+]?[\d.,' ]*\d)\s*([A-Za-z][A-Za-z0-9_]*\.?)?$`)

// ParseQuantity parses a volume cell such as "80KT", "80,000 MT" or
// "500 kbbl". A bare number takes the default unit.
func ParseQuantity(s string, def Unit) (Quantity, error) {
	s = strings.TrimSpace(s)
	m := quantityRegex.FindStringSubmatch(s)
	if m == nil {
		return Quantity{}, fmt.Errorf("%w: %q", ErrNotNumber, s)
	}

	n, err := Number(m[1])
	if err != nil {
		return Quantity{}, err
	}

	unit := def
	if m[2] != "" {
		if unit, err = ParseUnit(m[2]); err != nil {
			return Quantity{}, err
		}
	}
	if unit == "" {
		return Quantity{}, fmt.Errorf("%w: no unit in %q", ErrUnknownUnit, s)
	}

	return Quantity{Value: n, Unit: unit}, nil
}
