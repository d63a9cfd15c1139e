// Package hierarchy derives the 4-level rooted hierarchy per code system
// from catalog metadata and the co-occurrence matrix, selects the most
// connected leaf codes, and collapses the level-tagged edge set down to any
// requested level while conserving weight mass.
package hierarchy

import (
	"fmt"
	"strings"

	"github.com/coco/coco/internal/domain/codes"
)

// Hierarchy levels. Levels 0-3 are structural parent/child edges; level 4
// edges are leaf-code pairs taken from the co-occurrence matrix.
const (
	LevelRoot    = 0 // FHIR → code system
	LevelSystem  = 1 // system → chapter
	LevelChapter = 2 // chapter → group
	LevelGroup   = 3 // group → leaf code
	LevelLeaf    = 4 // leaf ↔ leaf co-occurrence pair
)

// Edge is one weighted, level-tagged parent/child relation. Display labels
// the child node; it is advisory and may be empty.
type Edge struct {
	Parent   string             `json:"parent"`
	Child    string             `json:"child"`
	Weight   float64            `json:"weight"`
	Level    int                `json:"level"`
	Resource codes.ResourceType `json:"resource_type"`
	Display  string             `json:"display,omitempty"`
}

// checkLevel guards against edges escaping the 0..4 range. An unknown level
// is a programming defect, not a user-facing condition.
func checkLevel(level int) {
	if level < LevelRoot || level > LevelLeaf {
		panic(fmt.Sprintf("hierarchy: edge with unknown level %d", level))
	}
}

// ChapterNode returns the graph node id for a chapter. ICD and OPS chapter
// identifiers are short numerics that collide across systems, so they are
// prefixed with the lowercase system name; LOINC chapter identifiers
// (system strings) are used raw.
func ChapterNode(system codes.ResourceType, chapterCode string) string {
	if system == codes.LOINC {
		return chapterCode
	}
	return strings.ToLower(string(system)) + chapterCode
}

// Dedupe collapses identical (parent, child, weight, level) tuples to one
// edge, keeping first occurrence order.
func Dedupe(edges []Edge) []Edge {
	type key struct {
		parent, child string
		weight        float64
		level         int
	}
	seen := make(map[key]struct{}, len(edges))
	out := edges[:0:0]
	for _, e := range edges {
		k := key{e.Parent, e.Child, e.Weight, e.Level}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}
