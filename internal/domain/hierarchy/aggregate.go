package hierarchy

import (
	"sort"

	"github.com/coco/coco/internal/domain/codes"
)

// Filter restricts the edge set to the selected leaves and their ancestor
// closure. Level-4 edges survive when either endpoint is a selected leaf,
// so the strongest partners of selected codes stay visible; their own
// ancestry does not (they are later dropped as orphans during collapse,
// which is the intended filtering side-effect). Structural edges survive
// when they lie on a selected leaf's ancestor chain.
func Filter(edges []Edge, topNodes []string, closure map[string]struct{}) []Edge {
	top := make(map[string]struct{}, len(topNodes))
	for _, n := range topNodes {
		top[n] = struct{}{}
	}
	inClosure := func(n string) bool {
		_, ok := closure[n]
		return ok
	}

	var out []Edge
	for _, e := range edges {
		checkLevel(e.Level)
		switch e.Level {
		case LevelLeaf:
			if _, a := top[e.Parent]; a {
				out = append(out, e)
				continue
			}
			if _, b := top[e.Child]; b {
				out = append(out, e)
			}
		case LevelGroup:
			if _, leaf := top[e.Child]; leaf && inClosure(e.Parent) {
				out = append(out, e)
			}
		default: // levels 0-2: both endpoints on an ancestor chain
			if inClosure(e.Child) && (inClosure(e.Parent) || e.Parent == codes.Root) {
				out = append(out, e)
			}
		}
	}
	return out
}

// Reweight replaces the structural level-3 weights with each leaf's
// patient-derived degree and propagates the sums up the tree: every
// level 0-2 edge's weight becomes the total weight of its child's direct
// children. The usage-based values are authoritative; the structural counts
// emitted by Build are intermediate-only.
func Reweight(edges []Edge, degrees map[string]int) []Edge {
	out := append([]Edge(nil), edges...)

	for i := range out {
		if out[i].Level == LevelGroup {
			out[i].Weight = float64(degrees[out[i].Child])
		}
	}

	// Fold child totals into the parent edge one level up, from the leaves
	// towards the root.
	for level := LevelGroup; level >= LevelSystem; level-- {
		totals := make(map[string]float64)
		for _, e := range out {
			if e.Level == level {
				totals[e.Parent] += e.Weight
			}
		}
		for i := range out {
			if out[i].Level == level-1 {
				if t, ok := totals[out[i].Child]; ok {
					out[i].Weight = t
				}
			}
		}
	}
	return out
}

// Collapse folds the level-tagged edge set down to the target level.
// Collapsing to the deepest level present is the identity. Otherwise, for
// each current level from one above the pair edges down to the target: child→parent translations are taken from the
// current level's edges, edges one level deeper are dropped when an
// endpoint has no translation (orphans introduced by filtering), surviving
// edges are rewritten through the translation, the current level's edges
// and any rewritten self-loops are removed, duplicates are summed, and the
// rewritten edges are retagged to the current level. For every surviving
// ancestor the summed child-edge weight equals the descendant mass that
// existed before collapsing, minus the orphan drops.
func Collapse(edges []Edge, targetLevel int) []Edge {
	checkLevel(targetLevel)
	deepest := LevelRoot
	for _, e := range edges {
		checkLevel(e.Level)
		if e.Level > deepest {
			deepest = e.Level
		}
	}
	work := append([]Edge(nil), edges...)
	if targetLevel >= deepest {
		return work
	}

	// The deepest level present holds the pair edges; everything shallower
	// is structural. Folding starts one level above the pairs, so collapsing
	// an already-collapsed set picks up where the previous collapse stopped.
	for current := deepest - 1; current >= targetLevel; current-- {
		translation := make(map[string]string)
		for _, e := range work {
			if e.Level == current {
				translation[e.Child] = e.Parent
			}
		}

		var next []Edge
		for _, e := range work {
			switch {
			case e.Level == current:
				// Folded into the rewritten deeper edges.
			case e.Level == current+1:
				parent, okP := translation[e.Parent]
				child, okC := translation[e.Child]
				if !okP || !okC {
					continue // orphaned by filtering
				}
				if parent == child {
					continue // self-loop introduced by collapsing
				}
				e.Parent, e.Child = parent, child
				next = append(next, e)
			default:
				next = append(next, e)
			}
		}

		work = groupEdges(next)
		for i := range work {
			if work[i].Level == current+1 {
				work[i].Level = current
			}
		}
	}
	return work
}

// groupEdges sums the weights of edges sharing (parent, child, level). The
// representative resource type and display are chosen deterministically:
// the first edge with a non-empty display wins, in the (already
// deterministic) input order.
func groupEdges(edges []Edge) []Edge {
	type key struct {
		parent, child string
		level         int
	}
	order := make([]key, 0, len(edges))
	grouped := make(map[key]*Edge, len(edges))
	for _, e := range edges {
		k := key{e.Parent, e.Child, e.Level}
		g, ok := grouped[k]
		if !ok {
			copied := e
			grouped[k] = &copied
			order = append(order, k)
			continue
		}
		g.Weight += e.Weight
		if g.Display == "" && e.Display != "" {
			g.Resource, g.Display = e.Resource, e.Display
		}
	}

	out := make([]Edge, 0, len(order))
	for _, k := range order {
		out = append(out, *grouped[k])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		if out[i].Parent != out[j].Parent {
			return out[i].Parent < out[j].Parent
		}
		return out[i].Child < out[j].Child
	})
	return out
}
