package ml

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// StandardScaler applies the affine rescaling (v - mean) / std that the
// classifier was trained against. Means and stds come from two CSV files with
// a feature-name index column and one value column, the shape pandas writes.
type StandardScaler struct {
	means map[string]float64
	stds  map[string]float64
}

// NewStandardScaler builds a scaler from in-memory tables. Every feature in
// means must have a non-zero std.
func NewStandardScaler(means, stds map[string]float64) (*StandardScaler, error) {
	if len(means) == 0 {
		return nil, errors.New("means table is empty")
	}
	for name := range means {
		std, ok := stds[name]
		if !ok {
			return nil, fmt.Errorf("missing std for feature %q", name)
		}
		if std == 0 {
			return nil, fmt.Errorf("zero std for feature %q", name)
		}
	}
	return &StandardScaler{means: copyTable(means), stds: copyTable(stds)}, nil
}

// LoadScaler reads the mean/std tables and verifies that every name in
// required has an entry in both.
func LoadScaler(meansPath, stdsPath string, required []string) (*StandardScaler, error) {
	means, err := readStatsCSV(meansPath)
	if err != nil {
		return nil, fmt.Errorf("load means: %w", err)
	}
	stds, err := readStatsCSV(stdsPath)
	if err != nil {
		return nil, fmt.Errorf("load stds: %w", err)
	}
	for _, name := range required {
		if _, ok := means[name]; !ok {
			return nil, fmt.Errorf("means table missing feature %q", name)
		}
		if _, ok := stds[name]; !ok {
			return nil, fmt.Errorf("stds table missing feature %q", name)
		}
	}
	return NewStandardScaler(means, stds)
}

// Standardize rescales a single value. Features without a table entry are an
// error rather than a silent pass-through.
func (s *StandardScaler) Standardize(name string, value float64) (float64, error) {
	mean, ok := s.means[name]
	if !ok {
		return 0, fmt.Errorf("no standardization entry for %q", name)
	}
	return (value - mean) / s.stds[name], nil
}

func (s *StandardScaler) Mean(name string) (float64, bool) {
	mean, ok := s.means[name]
	return mean, ok
}

func (s *StandardScaler) Std(name string) (float64, bool) {
	std, ok := s.stds[name]
	return std, ok
}

// readStatsCSV parses a two-column CSV of feature name -> value. A header row
// is skipped when its value column does not parse as a number. Stats files
// exported from Chinese-locale tooling may arrive GBK-encoded, so non-UTF8
// input is decoded from GBK before parsing.
func readStatsCSV(path string) (map[string]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(raw) {
		decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), simplifiedchinese.GBK.NewDecoder()))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		raw = decoded
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	table := make(map[string]float64)
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		value, err := strconv.ParseFloat(row[len(row)-1], 64)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("parse %s row %d: %w", path, i+1, err)
		}
		table[row[0]] = value
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("no entries in %s", path)
	}
	return table, nil
}

func copyTable(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
