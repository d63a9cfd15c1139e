package hierarchy

import (
	"sort"

	"github.com/coco/coco/internal/domain/catalog"
	"github.com/coco/coco/internal/domain/codes"
	"github.com/coco/coco/internal/domain/cooccurrence"
)

// Build derives the full level-tagged edge set for one dataset: structural
// edges (levels 0-3) from the catalog chains of every observed code, plus
// level-4 pair edges from the co-occurrence matrix. Code systems without a
// catalog index contribute level-4 edges only; their codes keep the raw
// code string as display. Level-3 weights are structural counts here; the
// aggregation pipeline replaces them with patient-derived degrees before
// any view is produced.
func Build(m *cooccurrence.Matrix, indexes map[codes.ResourceType]*catalog.Index) []Edge {
	observed := make(map[string]struct{}, m.Len())
	for _, c := range m.Codes {
		observed[c] = struct{}{}
	}

	var edges []Edge
	edges = append(edges, pairEdges(m)...)

	for _, system := range codes.Systems {
		idx, ok := indexes[system]
		if !ok {
			continue
		}
		edges = append(edges, systemEdges(system, idx, observed)...)
	}
	return Dedupe(edges)
}

// pairEdges emits one level-4 edge per unordered code pair with nonzero
// co-occurrence, upper triangle only. Pairs crossing code systems carry
// Unknown as resource type.
func pairEdges(m *cooccurrence.Matrix) []Edge {
	var edges []Edge
	for i, a := range m.Codes {
		for j := i + 1; j < m.Len(); j++ {
			b := m.Codes[j]
			w := m.At(a, b)
			if w <= 0 {
				continue
			}
			rt := codes.Classify(a)
			if codes.Classify(b) != rt {
				rt = codes.Unknown
			}
			edges = append(edges, Edge{
				Parent:   a,
				Child:    b,
				Weight:   float64(w),
				Level:    LevelLeaf,
				Resource: rt,
			})
		}
	}
	return edges
}

// systemEdges builds the structural levels 0-3 for one code system from
// its catalog restricted to the observed codes.
func systemEdges(system codes.ResourceType, idx *catalog.Index, observed map[string]struct{}) []Edge {
	entries := idx.Restrict(observed)
	if len(entries) == 0 {
		return nil
	}

	// chapter → group → leaf occurrence counts, nested so group identifiers
	// are only ever interpreted within their chapter.
	type groupKey struct{ chapter, group string }
	type leafKey struct {
		chapter, group, leaf string
	}
	leaves := make(map[string]struct{})
	chapterGroups := make(map[string]map[string]struct{})
	groupLeaves := make(map[groupKey]map[string]struct{})
	leafCount := make(map[leafKey]int)

	for _, e := range entries {
		leaves[e.Code] = struct{}{}
		if chapterGroups[e.ChapterCode] == nil {
			chapterGroups[e.ChapterCode] = make(map[string]struct{})
		}
		chapterGroups[e.ChapterCode][e.GroupCode] = struct{}{}
		gk := groupKey{e.ChapterCode, e.GroupCode}
		if groupLeaves[gk] == nil {
			groupLeaves[gk] = make(map[string]struct{})
		}
		groupLeaves[gk][e.Code] = struct{}{}
		leafCount[leafKey{e.ChapterCode, e.GroupCode, e.Code}]++
	}

	var edges []Edge

	// Level 0: root → system, weighted by the distinct observed leaves.
	edges = append(edges, Edge{
		Parent:   codes.Root,
		Child:    string(system),
		Weight:   float64(len(leaves)),
		Level:    LevelRoot,
		Resource: system,
		Display:  string(system),
	})

	for _, chapter := range sortedStringKeys(chapterGroups) {
		groups := chapterGroups[chapter]
		chapterID := ChapterNode(system, chapter)

		// Level 1: system → chapter, weighted by distinct observed groups.
		// The chapter label resolves from the catalog; missing labels are
		// advisory, not fatal.
		edges = append(edges, Edge{
			Parent:   string(system),
			Child:    chapterID,
			Weight:   float64(len(groups)),
			Level:    LevelSystem,
			Resource: system,
			Display:  idx.ChapterDisplay(chapter),
		})

		for _, group := range sortedSetKeys(groups) {
			gk := groupKey{chapter, group}

			// Level 2: chapter → group, weighted by distinct observed leaves.
			edges = append(edges, Edge{
				Parent:   chapterID,
				Child:    group,
				Weight:   float64(len(groupLeaves[gk])),
				Level:    LevelChapter,
				Resource: system,
				Display:  idx.GroupDisplay(group),
			})

			// Level 3: group → leaf, structural pair-observation count.
			for _, leaf := range sortedSetKeys(groupLeaves[gk]) {
				edges = append(edges, Edge{
					Parent:   group,
					Child:    leaf,
					Weight:   float64(leafCount[leafKey{chapter, group, leaf}]),
					Level:    LevelGroup,
					Resource: system,
					Display:  idx.LeafDisplay(leaf),
				})
			}
		}
	}
	return edges
}

func sortedStringKeys(m map[string]map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedSetKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
