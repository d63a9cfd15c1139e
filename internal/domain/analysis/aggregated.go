package analysis

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/coco/coco/internal/domain/codes"
	"github.com/coco/coco/internal/domain/dataset"
	"github.com/coco/coco/internal/domain/hierarchy"
)

// Service builds the per-request views over a dataset snapshot.
type Service struct {
	log zerolog.Logger
}

// NewService creates an analysis service.
func NewService(log zerolog.Logger) *Service {
	return &Service{log: log}
}

// AggregatedGraph produces the all-codes view: the topN most connected
// leaves per code system with their ancestor closure, usage-reweighted and
// collapsed to the requested hierarchy level.
func (s *Service) AggregatedGraph(snap *dataset.Snapshot, targetLevel, topN int) (*Graph, error) {
	if targetLevel < hierarchy.LevelRoot || targetLevel > hierarchy.LevelLeaf {
		return nil, fmt.Errorf("level must be between %d and %d, got %d", hierarchy.LevelRoot, hierarchy.LevelLeaf, targetLevel)
	}
	if topN <= 0 {
		return nil, fmt.Errorf("top must be positive, got %d", topN)
	}

	degrees := hierarchy.Degrees(snap.Main)
	top := hierarchy.SelectTop(degrees, topN)
	closure := hierarchy.AncestorClosure(snap.Edges, top)

	filtered := hierarchy.Filter(snap.Edges, top, closure)
	reweighted := hierarchy.Reweight(filtered, hierarchy.DegreeMap(snap.Main))
	collapsed := hierarchy.Collapse(reweighted, targetLevel)

	s.log.Debug().
		Str("dataset_id", snap.ID.String()).
		Int("level", targetLevel).
		Int("top", topN).
		Int("edges", len(collapsed)).
		Msg("aggregated graph collapsed")

	return assembleAggregated(snap, collapsed, targetLevel), nil
}

// assembleAggregated turns a collapsed edge set into a renderer-agnostic
// graph: node levels and labels from the structural edges, sizes by level
// band, edge widths linearly normalized over the observed weight range.
func assembleAggregated(snap *dataset.Snapshot, edges []hierarchy.Edge, targetLevel int) *Graph {
	g := &Graph{}
	if len(edges) == 0 {
		return g
	}

	minW, maxW := edges[0].Weight, edges[0].Weight
	for _, e := range edges[1:] {
		if e.Weight < minW {
			minW = e.Weight
		}
		if e.Weight > maxW {
			maxW = e.Weight
		}
	}
	gain, ok := LinearGain(minW, maxW, EdgeWidthMin, EdgeWidthMax)

	levels := make(map[string]int)
	setLevel := func(n string, l int) {
		if cur, seen := levels[n]; !seen || l < cur {
			levels[n] = l
		}
	}
	resources := make(map[string]codes.ResourceType)
	displays := make(map[string]string)

	for _, e := range edges {
		// Edges tagged exactly the target level are collapsed co-occurrence
		// pairs joining two nodes of that level; everything shallower is a
		// structural parent/child edge.
		if e.Level == targetLevel {
			setLevel(e.Parent, targetLevel)
			setLevel(e.Child, targetLevel)
		} else {
			setLevel(e.Parent, e.Level)
			setLevel(e.Child, e.Level+1)
		}
		if e.Parent != codes.Root {
			if _, seen := resources[e.Parent]; !seen {
				resources[e.Parent] = e.Resource
			}
		}
		if _, seen := resources[e.Child]; !seen {
			resources[e.Child] = e.Resource
		}
		if e.Display != "" {
			if _, seen := displays[e.Child]; !seen {
				displays[e.Child] = e.Display
			}
		}
	}

	for id, level := range levels {
		n := Node{
			ID:       id,
			Level:    level,
			Resource: resources[id],
			Size:     aggregatedNodeSize(level),
		}
		switch {
		case systemTitles[id] != "":
			n.Display = systemTitles[id]
		case level == hierarchy.LevelLeaf:
			n.Display = snap.Display(id)
			n.Resource = codes.Classify(id)
		default:
			n.Display = displays[id]
		}
		g.Nodes = append(g.Nodes, n)
	}
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].ID < g.Nodes[j].ID })

	for _, e := range edges {
		width := float64(EdgeWidthMin)
		if ok {
			width = Normalize(e.Weight, gain, EdgeWidthMin, limit(EdgeWidthMin), limit(EdgeWidthMax))
		}
		g.Edges = append(g.Edges, Edge{
			From:     e.Parent,
			To:       e.Child,
			Weight:   e.Weight,
			Width:    width,
			Level:    e.Level,
			Resource: e.Resource,
		})
	}
	return g
}

// aggregatedNodeSize maps a node's hierarchy level onto the all-codes
// view's size band: the root largest, leaves smallest, chapter and group
// sharing a band.
func aggregatedNodeSize(level int) float64 {
	delta := float64(AggregatedNodeSizeMax - NodeSizeMin)
	switch level {
	case hierarchy.LevelRoot:
		return AggregatedNodeSizeMax
	case hierarchy.LevelSystem:
		return delta / 4 * 3
	case hierarchy.LevelChapter, hierarchy.LevelGroup:
		return delta / 4 * 2
	case hierarchy.LevelLeaf:
		return delta / 4
	}
	return float64(NodeSizeMin)
}
