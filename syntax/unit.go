package syntax

import (
	"math"
	"strings"
)

// Unit tags the suffix attached to a numeric literal: pt/mm/cm/in for
// lengths, rad/deg for angles, em/fr/% for the relative quantities.
// UnitNone marks a bare int/float with no suffix at all.
type Unit int

const (
	UnitNone Unit = iota
	UnitPt
	UnitMm
	UnitCm
	UnitIn
	UnitRad
	UnitDeg
	UnitEm
	UnitFr
	UnitPercent
)

type unitInfo struct {
	suffix string
	name   string
	class  unitClass
	// perBase converts one unit of this kind into the class's base unit
	// (points for length, radians for angle); unused outside those two
	// classes.
	perBase float64
}

type unitClass uint8

const (
	classNone unitClass = iota
	classLength
	classAngle
	classRelative
)

var units = [...]unitInfo{
	UnitNone:    {"", "none", classNone, 0},
	UnitPt:      {"pt", "points", classLength, 1},
	UnitMm:      {"mm", "millimeters", classLength, 2.83465},
	UnitCm:      {"cm", "centimeters", classLength, 28.3465},
	UnitIn:      {"in", "inches", classLength, 72},
	UnitRad:     {"rad", "radians", classAngle, 1},
	UnitDeg:     {"deg", "degrees", classAngle, math.Pi / 180},
	UnitEm:      {"em", "em", classRelative, 0},
	UnitFr:      {"fr", "fraction", classRelative, 0},
	UnitPercent: {"%", "percent", classRelative, 0},
}

func (u Unit) info() unitInfo {
	if int(u) < 0 || int(u) >= len(units) {
		return unitInfo{suffix: "unknown", name: "unknown"}
	}
	return units[u]
}

// String returns the literal suffix this unit was parsed from (empty for
// UnitNone).
func (u Unit) String() string { return u.info().suffix }

// Name returns a human-readable label for diagnostics.
func (u Unit) Name() string { return u.info().name }

// IsLength reports whether u belongs to the pt/mm/cm/in family.
func (u Unit) IsLength() bool { return u.info().class == classLength }

// IsAngle reports whether u belongs to the rad/deg family.
func (u Unit) IsAngle() bool { return u.info().class == classAngle }

// IsRelative reports whether u is one of em/fr/%, none of which carry a
// fixed conversion factor to an absolute unit.
func (u Unit) IsRelative() bool { return u.info().class == classRelative }

// UnitFromString resolves a literal suffix (case-insensitively) to its
// Unit, defaulting to UnitNone for anything unrecognized.
func UnitFromString(s string) Unit {
	needle := strings.ToLower(s)
	for u, info := range units {
		if info.suffix != "" && info.suffix == needle {
			return Unit(u)
		}
	}
	return UnitNone
}

// ConvertTo rescales value from u into target, reporting false when the
// two units don't share a conversion family (e.g. length into angle).
// Equal units always convert trivially, even outside the length/angle
// families (em-to-em, say).
func (u Unit) ConvertTo(value float64, target Unit) (float64, bool) {
	if u == target {
		return value, true
	}
	uInfo, tInfo := u.info(), target.info()
	if uInfo.class == classNone || uInfo.class != tInfo.class {
		return 0, false
	}
	switch uInfo.class {
	case classLength, classAngle:
		return value * uInfo.perBase / tInfo.perBase, true
	default:
		return 0, false
	}
}
