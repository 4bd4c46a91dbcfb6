package types

import (
	"fmt"
	"strings"

	"github.com/alecthomas/units"
)

// Canonical SI-style base units, one per measure dimension ThingTalk
// understands. Temperature is handled separately below since neither
// Celsius nor Fahrenheit is a metric.units.Metric base.
const (
	BaseByte   = "B"
	BaseMeter  = "m"
	BaseSecond = "s"
	BaseKg     = "kg"
	BaseKcal   = "kcal"
	BaseKWh    = "kWh"
	BaseC      = "C"
	BaseMps    = "mps" // meters per second
)

// unitTable maps a display unit spelled in surface syntax to its
// canonical base unit and multiplier (base value = display value *
// multiplier).
var unitTable = map[string]struct {
	base string
	mult float64
}{
	"byte": {BaseByte, 1}, "KB": {BaseByte, 1000}, "MB": {BaseByte, 1e6}, "GB": {BaseByte, 1e9}, "TB": {BaseByte, 1e12},
	"KiB": {BaseByte, 1024}, "MiB": {BaseByte, 1 << 20}, "GiB": {BaseByte, 1 << 30},
	"m": {BaseMeter, 1}, "km": {BaseMeter, 1000}, "cm": {BaseMeter, 0.01}, "mm": {BaseMeter, 0.001},
	"mi": {BaseMeter, 1609.344}, "ft": {BaseMeter, 0.3048}, "in": {BaseMeter, 0.0254},
	"ms": {BaseSecond, 0.001}, "s": {BaseSecond, 1}, "min": {BaseSecond, 60}, "h": {BaseSecond, 3600},
	"day": {BaseSecond, 86400}, "week": {BaseSecond, 604800},
	"kg": {BaseKg, 1}, "g": {BaseKg, 0.001}, "lb": {BaseKg, 0.453592}, "oz": {BaseKg, 0.0283495},
	"kcal": {BaseKcal, 1}, "cal": {BaseKcal, 0.001},
	"kWh": {BaseKWh, 1}, "Wh": {BaseKWh, 0.001},
	"C": {BaseC, 1}, // Fahrenheit is not a linear multiple; handled in ToCelsius.
	"mps": {BaseMps, 1}, "kmph": {BaseMps, 0.277778}, "mph": {BaseMps, 0.44704},
}

// CanonicalUnit returns the base unit and the multiplier that
// converts a display-unit value into its base-unit value.
func CanonicalUnit(display string) (base string, mult float64, err error) {
	if e, ok := unitTable[display]; ok {
		return e.base, e.mult, nil
	}
	// Fall back to github.com/alecthomas/units for byte spellings the
	// fixed table above doesn't enumerate (e.g. "PiB").
	if v, perr := units.ParseBase2Bytes(strings.TrimSpace("1" + display)); perr == nil {
		return BaseByte, float64(v), nil
	}
	return "", 0, fmt.Errorf("unknown unit %q", display)
}

// ToCelsius converts a Fahrenheit value to the Celsius base unit used
// for Measure(C).
func ToCelsius(f float64) float64 { return (f - 32) * 5 / 9 }

// FromCelsius converts a Celsius base value into Fahrenheit for
// display purposes.
func FromCelsius(c float64) float64 { return c*9/5 + 32 }

// TemperatureUnit is the pseudo-unit spelling accepted for
// defaultTemperature resolution.
type TemperatureUnit int

const (
	Celsius TemperatureUnit = iota
	Fahrenheit
)

// ResolveDefaultTemperature resolves the pseudo-unit
// "defaultTemperature" to the caller's preferred temperature unit's
// canonical Measure(C) type.
// The chosen display unit is recorded on the literal for
// pretty-printing; the type itself is always Measure(C), since C is
// the canonical base regardless of locale.
func ResolveDefaultTemperature(pref TemperatureUnit) Measure {
	_ = pref // display unit only affects rendering, not the type
	return Measure{BaseUnit: BaseC}
}
