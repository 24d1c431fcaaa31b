package risk

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrMissingInput marks a required numeric input that was not supplied.
	ErrMissingInput = errors.New("missing input")
	// ErrInvalidInput marks a value outside its bounded range or enumerated set.
	ErrInvalidInput = errors.New("invalid input")
)

// Input carries the seven raw form values. Numeric fields are pointers so an
// absent field is distinguishable from zero; categorical codes arrive as the
// string options the form presents.
type Input struct {
	CompressionTime      *float64 `json:"compression_time"`
	NitroglycerinDose    *float64 `json:"nitroglycerin_dose"`
	RadialDiameterMM     *float64 `json:"radial_diameter_mm"`
	SheathRatio          *float64 `json:"sheath_ratio"`
	HeparinCategory      string   `json:"heparin_category"`
	PunctureAttempts     string   `json:"puncture_attempts"`
	PriorCatheterization string   `json:"prior_catheterization"`
}

// Bounds is an inclusive numeric input range.
type Bounds struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

func (b Bounds) contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Limits holds the per-field input ranges.
type Limits struct {
	CompressionTime   Bounds `yaml:"compression_time" json:"compression_time"`
	NitroglycerinDose Bounds `yaml:"nitroglycerin_dose" json:"nitroglycerin_dose"`
	RadialDiameterMM  Bounds `yaml:"radial_diameter_mm" json:"radial_diameter_mm"`
	SheathRatio       Bounds `yaml:"sheath_ratio" json:"sheath_ratio"`
}

// DefaultLimits returns the canonical input ranges of the calculator form.
func DefaultLimits() Limits {
	return Limits{
		CompressionTime:   Bounds{Min: 30, Max: 1200},
		NitroglycerinDose: Bounds{Min: 0, Max: 2500},
		RadialDiameterMM:  Bounds{Min: 0.5, Max: 7.0},
		SheathRatio:       Bounds{Min: 0.1, Max: 2.0},
	}
}

// Defaults returns the reset tuple of the form.
func Defaults() Input {
	compression := 120.0
	dose := 200.0
	diameter := 2.5
	ratio := 0.6
	return Input{
		CompressionTime:      &compression,
		NitroglycerinDose:    &dose,
		RadialDiameterMM:     &diameter,
		SheathRatio:          &ratio,
		HeparinCategory:      "1",
		PunctureAttempts:     "1",
		PriorCatheterization: "0",
	}
}

// AssembleRecord validates the raw inputs against limits and builds the
// feature row. The only transformation besides integer casts is the
// millimeter to centimeter conversion of the diameter. Pure; never touches
// the classifier.
func AssembleRecord(input Input, limits Limits) (Record, error) {
	compression, err := requireNumeric("compression_time", input.CompressionTime, limits.CompressionTime)
	if err != nil {
		return Record{}, err
	}
	dose, err := requireNumeric("nitroglycerin_dose", input.NitroglycerinDose, limits.NitroglycerinDose)
	if err != nil {
		return Record{}, err
	}
	diameterMM, err := requireNumeric("radial_diameter_mm", input.RadialDiameterMM, limits.RadialDiameterMM)
	if err != nil {
		return Record{}, err
	}
	ratio, err := requireNumeric("sheath_ratio", input.SheathRatio, limits.SheathRatio)
	if err != nil {
		return Record{}, err
	}

	heparin, err := requireCode("heparin_category", input.HeparinCategory, 1, 2)
	if err != nil {
		return Record{}, err
	}
	puncture, err := requireCode("puncture_attempts", input.PunctureAttempts, 1, 2)
	if err != nil {
		return Record{}, err
	}
	prior, err := requireCode("prior_catheterization", input.PriorCatheterization, 0, 1)
	if err != nil {
		return Record{}, err
	}

	return Record{
		CompressionTime:      compression,
		NitroglycerinDose:    dose,
		RadialDiameterCM:     diameterMM / 10,
		SheathRatio:          ratio,
		HeparinCategory:      heparin,
		PunctureAttempts:     puncture,
		PriorCatheterization: prior,
	}, nil
}

func requireNumeric(field string, value *float64, bounds Bounds) (float64, error) {
	if value == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingInput, field)
	}
	if !bounds.contains(*value) {
		return 0, fmt.Errorf("%w: %s %g out of range [%g, %g]", ErrInvalidInput, field, *value, bounds.Min, bounds.Max)
	}
	return *value, nil
}

func requireCode(field, value string, allowed ...int) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingInput, field)
	}
	code, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a code", ErrInvalidInput, field, value)
	}
	for _, option := range allowed {
		if code == option {
			return code, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %d not in %v", ErrInvalidInput, field, code, allowed)
}
