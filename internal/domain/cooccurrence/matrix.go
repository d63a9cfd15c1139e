// Package cooccurrence builds the patient×code incidence table and the
// symmetric code×code co-occurrence matrix derived from it. Both are built
// once per uploaded dataset and are read-only afterwards, so they are safe
// to share across concurrent requests without locking.
package cooccurrence

import (
	"sort"

	"github.com/coco/coco/internal/domain/codes"
)

// IncidenceTable counts, per patient, how often each code was recorded.
// Columns with no observations are dropped during construction.
type IncidenceTable struct {
	Patients []string
	Codes    []string
	cells    [][]int // row = patient, col = code
}

// BuildIncidence converts raw (patient, code) records into an incidence
// table. Patients and codes are ordered lexicographically so downstream
// results are reproducible regardless of record order.
func BuildIncidence(records []codes.CodeRecord) *IncidenceTable {
	patientSet := make(map[string]struct{})
	codeSet := make(map[string]struct{})
	for _, r := range records {
		patientSet[r.PatientID] = struct{}{}
		codeSet[r.Code] = struct{}{}
	}

	t := &IncidenceTable{
		Patients: sortedKeys(patientSet),
		Codes:    sortedKeys(codeSet),
	}
	rowIdx := indexOf(t.Patients)
	colIdx := indexOf(t.Codes)

	t.cells = make([][]int, len(t.Patients))
	for i := range t.cells {
		t.cells[i] = make([]int, len(t.Codes))
	}
	for _, r := range records {
		t.cells[rowIdx[r.PatientID]][colIdx[r.Code]]++
	}

	// Every code came from at least one record, so no all-zero column can
	// exist here; the invariant is re-checked because callers may construct
	// tables from pre-filtered record subsets.
	t.dropEmptyColumns()
	return t
}

// Count returns the number of times the patient recorded the code, or 0.
func (t *IncidenceTable) Count(patient, code string) int {
	ri := search(t.Patients, patient)
	ci := search(t.Codes, code)
	if ri < 0 || ci < 0 {
		return 0
	}
	return t.cells[ri][ci]
}

func (t *IncidenceTable) dropEmptyColumns() {
	keep := make([]int, 0, len(t.Codes))
	for c := range t.Codes {
		for r := range t.Patients {
			if t.cells[r][c] != 0 {
				keep = append(keep, c)
				break
			}
		}
	}
	if len(keep) == len(t.Codes) {
		return
	}
	kept := make([]string, len(keep))
	for i, c := range keep {
		kept[i] = t.Codes[c]
	}
	for r := range t.cells {
		row := make([]int, len(keep))
		for i, c := range keep {
			row[i] = t.cells[r][c]
		}
		t.cells[r] = row
	}
	t.Codes = kept
}

// Matrix is a symmetric code×code co-occurrence matrix with an explicit
// code→index map. M[a][b] is the number of patients that have both a and b;
// the diagonal is always zero.
type Matrix struct {
	Codes []string
	index map[string]int
	cells [][]int
}

// BuildMatrix computes the co-occurrence matrix as the product of the
// presence projection of the incidence table with its transpose, with the
// diagonal zeroed. An empty table yields an empty matrix, not an error.
func BuildMatrix(t *IncidenceTable) *Matrix {
	m := newMatrix(t.Codes)
	for r := range t.Patients {
		row := t.cells[r]
		for i := 0; i < len(row); i++ {
			if row[i] == 0 {
				continue
			}
			for j := i + 1; j < len(row); j++ {
				if row[j] != 0 {
					m.cells[i][j]++
					m.cells[j][i]++
				}
			}
		}
	}
	return m
}

func newMatrix(codeList []string) *Matrix {
	m := &Matrix{
		Codes: append([]string(nil), codeList...),
		index: indexOf(codeList),
		cells: make([][]int, len(codeList)),
	}
	for i := range m.cells {
		m.cells[i] = make([]int, len(codeList))
	}
	return m
}

// Has reports whether the code appears in the matrix.
func (m *Matrix) Has(code string) bool {
	_, ok := m.index[code]
	return ok
}

// At returns M[a][b], or 0 when either code is absent.
func (m *Matrix) At(a, b string) int {
	i, ok := m.index[a]
	if !ok {
		return 0
	}
	j, ok := m.index[b]
	if !ok {
		return 0
	}
	return m.cells[i][j]
}

// Len returns the number of codes the matrix is indexed by.
func (m *Matrix) Len() int { return len(m.Codes) }

// Row returns the co-occurrence weights of one code against every code in
// the matrix, in matrix code order. The slice is a copy.
func (m *Matrix) Row(code string) []int {
	i, ok := m.index[code]
	if !ok {
		return nil
	}
	return append([]int(nil), m.cells[i]...)
}

// Neighbor is one co-occurrence partner of a code.
type Neighbor struct {
	Code   string
	Weight int
}

// NeighborsByWeight returns the code's partners with nonzero weight sorted
// by descending weight, ties broken by ascending code string.
func (m *Matrix) NeighborsByWeight(code string) []Neighbor {
	i, ok := m.index[code]
	if !ok {
		return nil
	}
	var out []Neighbor
	for j, w := range m.cells[i] {
		if w > 0 {
			out = append(out, Neighbor{Code: m.Codes[j], Weight: w})
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Weight != out[b].Weight {
			return out[a].Weight > out[b].Weight
		}
		return out[a].Code < out[b].Code
	})
	return out
}

// WeightedDegree is the sum of a code's row: total co-occurrence mass.
// This is the degree sense used for top-node selection.
func (m *Matrix) WeightedDegree(code string) int {
	i, ok := m.index[code]
	if !ok {
		return 0
	}
	sum := 0
	for _, w := range m.cells[i] {
		sum += w
	}
	return sum
}

// PartnerDegree is the count of a code's nonzero partners. This is the
// degree sense used for the single-code neighborhood view.
func (m *Matrix) PartnerDegree(code string) int {
	i, ok := m.index[code]
	if !ok {
		return 0
	}
	n := 0
	for _, w := range m.cells[i] {
		if w != 0 {
			n++
		}
	}
	return n
}

// TotalWeight is the sum of all weighted degrees, used to normalize the
// frequency distribution.
func (m *Matrix) TotalWeight() int {
	total := 0
	for _, c := range m.Codes {
		total += m.WeightedDegree(c)
	}
	return total
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func indexOf(list []string) map[string]int {
	idx := make(map[string]int, len(list))
	for i, s := range list {
		idx[s] = i
	}
	return idx
}

func search(sorted []string, s string) int {
	i := sort.SearchStrings(sorted, s)
	if i < len(sorted) && sorted[i] == s {
		return i
	}
	return -1
}
