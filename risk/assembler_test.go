package risk

import (
	"errors"
	"testing"
)

func validInput() Input {
	return Defaults()
}

func TestAssembleRecordConvertsDiameterOnce(t *testing.T) {
	input := validInput()
	diameter := 25.0
	input.RadialDiameterMM = &diameter

	// 25 is out of the mm bounds, widen for the conversion check
	limits := DefaultLimits()
	limits.RadialDiameterMM = Bounds{Min: 0.5, Max: 70}

	record, err := AssembleRecord(input, limits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.RadialDiameterCM != 2.5 {
		t.Fatalf("expected 25mm -> 2.5cm, got %v", record.RadialDiameterCM)
	}
}

func TestAssembleRecordDefaults(t *testing.T) {
	record, err := AssembleRecord(Defaults(), DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Record{
		CompressionTime:      120,
		NitroglycerinDose:    200,
		RadialDiameterCM:     0.25,
		SheathRatio:          0.6,
		HeparinCategory:      1,
		PunctureAttempts:     1,
		PriorCatheterization: 0,
	}
	if record != want {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestAssembleRecordMissingNumerics(t *testing.T) {
	strip := []func(*Input){
		func(in *Input) { in.CompressionTime = nil },
		func(in *Input) { in.NitroglycerinDose = nil },
		func(in *Input) { in.RadialDiameterMM = nil },
		func(in *Input) { in.SheathRatio = nil },
	}
	for i, mutate := range strip {
		input := validInput()
		mutate(&input)
		_, err := AssembleRecord(input, DefaultLimits())
		if !errors.Is(err, ErrMissingInput) {
			t.Fatalf("case %d: expected ErrMissingInput, got %v", i, err)
		}
	}
}

func TestAssembleRecordOutOfBounds(t *testing.T) {
	input := validInput()
	tooLong := 5000.0
	input.CompressionTime = &tooLong

	_, err := AssembleRecord(input, DefaultLimits())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAssembleRecordBadCategorical(t *testing.T) {
	input := validInput()
	input.HeparinCategory = "3"
	if _, err := AssembleRecord(input, DefaultLimits()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for code outside set, got %v", err)
	}

	input = validInput()
	input.PriorCatheterization = "yes"
	if _, err := AssembleRecord(input, DefaultLimits()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-numeric code, got %v", err)
	}

	input = validInput()
	input.PunctureAttempts = ""
	if _, err := AssembleRecord(input, DefaultLimits()); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput for empty code, got %v", err)
	}
}

func TestDefaultsTuple(t *testing.T) {
	d := Defaults()
	if *d.CompressionTime != 120 || *d.NitroglycerinDose != 200 ||
		*d.RadialDiameterMM != 2.5 || *d.SheathRatio != 0.6 ||
		d.HeparinCategory != "1" || d.PunctureAttempts != "1" ||
		d.PriorCatheterization != "0" {
		t.Fatalf("unexpected defaults: %+v", d)
	}
}
