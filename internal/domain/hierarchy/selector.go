package hierarchy

import (
	"sort"

	"github.com/coco/coco/internal/domain/codes"
	"github.com/coco/coco/internal/domain/cooccurrence"
)

// NodeDegree tags a code with its weighted degree (co-occurrence row sum)
// and inferred code system.
type NodeDegree struct {
	Code     string             `json:"code"`
	Degree   int                `json:"degree"`
	Resource codes.ResourceType `json:"resource_type"`
}

// Degrees computes the weighted degree of every code in the matrix.
func Degrees(m *cooccurrence.Matrix) []NodeDegree {
	out := make([]NodeDegree, 0, m.Len())
	for _, c := range m.Codes {
		out = append(out, NodeDegree{
			Code:     c,
			Degree:   m.WeightedDegree(c),
			Resource: codes.Classify(c),
		})
	}
	return out
}

// DegreeMap returns code → weighted degree for the whole matrix.
func DegreeMap(m *cooccurrence.Matrix) map[string]int {
	out := make(map[string]int, m.Len())
	for _, c := range m.Codes {
		out[c] = m.WeightedDegree(c)
	}
	return out
}

// SelectTop picks the topN most connected leaf codes per code system:
// within each group sorted by descending degree, ties broken by ascending
// code string, capped at min(topN, group size). The result is the union of
// the per-system selections, sorted for reproducibility.
func SelectTop(degrees []NodeDegree, topN int) []string {
	if topN <= 0 {
		return nil
	}
	byResource := make(map[codes.ResourceType][]NodeDegree)
	for _, d := range degrees {
		byResource[d.Resource] = append(byResource[d.Resource], d)
	}

	var selected []string
	for _, group := range byResource {
		sort.Slice(group, func(i, j int) bool {
			if group[i].Degree != group[j].Degree {
				return group[i].Degree > group[j].Degree
			}
			return group[i].Code < group[j].Code
		})
		n := topN
		if n > len(group) {
			n = len(group)
		}
		for _, d := range group[:n] {
			selected = append(selected, d.Code)
		}
	}
	sort.Strings(selected)
	return selected
}

// AncestorClosure walks the structural edges upward from the selected leaf
// set (level 3 → 0) and returns every distinct ancestor reachable. The
// closure retains non-leaf context in the aggregated graph even when most
// leaves are filtered out.
func AncestorClosure(edges []Edge, leaves []string) map[string]struct{} {
	frontier := make(map[string]struct{}, len(leaves))
	for _, l := range leaves {
		frontier[l] = struct{}{}
	}
	closure := make(map[string]struct{})

	for level := LevelGroup; level >= LevelRoot; level-- {
		next := make(map[string]struct{})
		for _, e := range edges {
			if e.Level != level {
				continue
			}
			if _, ok := frontier[e.Child]; ok {
				next[e.Parent] = struct{}{}
			}
		}
		for p := range next {
			closure[p] = struct{}{}
		}
		frontier = next
	}
	return closure
}
