package cooccurrence

import (
	"errors"
	"sort"
)

// ErrTooFewCodes indicates that fewer than two of the requested codes exist
// in the matrix, so no clustering sub-matrix can be produced. The dependent
// view is omitted; the condition is not a request failure.
var ErrTooFewCodes = errors.New("fewer than 2 valid codes for sub-matrix")

// SubMatrix restricts the matrix to the requested codes. Codes absent from
// the matrix are dropped; the surviving codes are deduplicated and sorted so
// the result is reproducible. The result is handed to the external
// clustering routine.
func (m *Matrix) SubMatrix(requested []string) (*Matrix, error) {
	seen := make(map[string]struct{})
	var valid []string
	for _, c := range requested {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		if m.Has(c) {
			valid = append(valid, c)
		}
	}
	if len(valid) < 2 {
		return nil, ErrTooFewCodes
	}
	sort.Strings(valid)

	sub := newMatrix(valid)
	for i, a := range valid {
		for j, b := range valid {
			sub.cells[i][j] = m.At(a, b)
		}
	}
	return sub, nil
}

// Cells returns a copy of the matrix contents in code order, for consumers
// that need the raw array (e.g. the clustering hand-off).
func (m *Matrix) Cells() [][]int {
	out := make([][]int, len(m.cells))
	for i, row := range m.cells {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// FrequencyEntry is one code's share of the total co-occurrence mass.
type FrequencyEntry struct {
	Code      string  `json:"code"`
	Frequency float64 `json:"frequency"`
}

// Frequencies returns the relative frequency (weighted degree over total
// weighted degree) for the requested codes, deduplicated and sorted by
// code. Codes absent from the matrix get frequency 0. A matrix with no
// mass yields all-zero frequencies.
func (m *Matrix) Frequencies(requested []string) []FrequencyEntry {
	total := m.TotalWeight()
	seen := make(map[string]struct{})
	var out []FrequencyEntry
	for _, c := range requested {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		e := FrequencyEntry{Code: c}
		if total > 0 {
			e.Frequency = float64(m.WeightedDegree(c)) / float64(total)
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
