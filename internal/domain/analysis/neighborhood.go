package analysis

import (
	"fmt"
	"sort"

	"github.com/coco/coco/internal/domain/codes"
	"github.com/coco/coco/internal/domain/cooccurrence"
	"github.com/coco/coco/internal/domain/dataset"
	"github.com/coco/coco/internal/domain/hierarchy"
)

// neighborhoodEdgeGain is the fixed slope the single-code view applies to
// raw co-occurrence weights before clamping into the edge-width band.
const neighborhoodEdgeGain = 5

// Neighborhood produces the single-code view: for each code system, the
// selected code's strongest neighbor in that system and numNeighbors of
// that neighbor's own strongest partners, with half-weight edges between
// the fan-out codes. A code absent from the dataset yields an empty result.
func (s *Service) Neighborhood(snap *dataset.Snapshot, code string, numNeighbors int) (*NeighborhoodResult, error) {
	if numNeighbors < 0 {
		return nil, fmt.Errorf("neighbors must not be negative, got %d", numNeighbors)
	}

	res := &NeighborhoodResult{TopNeighbors: make(map[codes.ResourceType]string)}
	if !snap.Main.Has(code) {
		return res, nil
	}

	b := newNeighborhoodBuilder(snap)
	if b.addNode(code) {
		res.CodesOfInterest = append(res.CodesOfInterest, code)
	}

	for _, system := range codes.Systems {
		top := topNeighborIn(snap.Main, code, system)
		if top == "" {
			continue
		}
		res.TopNeighbors[system] = top
		if b.addNode(top) {
			res.CodesOfInterest = append(res.CodesOfInterest, top)
		}
		b.addEdge(code, top, float64(snap.Main.At(code, top)))

		sub, ok := snap.BySystem[system]
		if !ok {
			continue
		}
		fanOut := nonzeroNeighbors(sub, top, numNeighbors)
		for _, n := range fanOut {
			if b.addNode(n.Code) {
				res.CodesOfInterest = append(res.CodesOfInterest, n.Code)
			}
			b.addEdge(top, n.Code, float64(n.Weight))
		}
		for i := 0; i < len(fanOut); i++ {
			for j := i + 1; j < len(fanOut); j++ {
				if w := sub.At(fanOut[i].Code, fanOut[j].Code); w > 0 {
					b.addEdge(fanOut[i].Code, fanOut[j].Code, float64(w)/2)
				}
			}
		}
	}

	res.Graph = *b.graph()
	res.Frequencies = snap.Main.Frequencies(res.CodesOfInterest)

	s.log.Debug().
		Str("dataset_id", snap.ID.String()).
		Str("code", code).
		Int("neighbors", numNeighbors).
		Int("nodes", len(res.Graph.Nodes)).
		Msg("neighborhood expanded")
	return res, nil
}

// topNeighborIn returns the selected code's strongest nonzero neighbor
// whose shape matches the given code system, or "" when there is none.
func topNeighborIn(m *cooccurrence.Matrix, code string, system codes.ResourceType) string {
	for _, n := range m.NeighborsByWeight(code) {
		if codes.Matches(n.Code, system) {
			return n.Code
		}
	}
	return ""
}

// nonzeroNeighbors returns up to max of the code's strongest nonzero
// partners in m.
func nonzeroNeighbors(m *cooccurrence.Matrix, code string, max int) []cooccurrence.Neighbor {
	neighbors := m.NeighborsByWeight(code)
	if len(neighbors) > max {
		neighbors = neighbors[:max]
	}
	return neighbors
}

// neighborhoodBuilder accumulates deduplicated nodes and edges while the
// per-system expansions run. Node sizes follow the partner degree over the
// whole dataset so the same code renders at the same size in every request.
type neighborhoodBuilder struct {
	snap *dataset.Snapshot

	sizeGain float64

	nodes map[string]struct{}
	edges map[[2]string]struct{}
	g     Graph
}

func newNeighborhoodBuilder(snap *dataset.Snapshot) *neighborhoodBuilder {
	minDeg, maxDeg := degreeRange(snap.Main)
	gain, ok := LinearGain(minDeg, maxDeg, NodeSizeMin, NeighborhoodNodeSizeMax)
	if !ok {
		gain = degenerateGain
	}
	return &neighborhoodBuilder{
		snap:     snap,
		sizeGain: gain,
		nodes:    make(map[string]struct{}),
		edges:    make(map[[2]string]struct{}),
	}
}

// addNode reports whether the code was newly added.
func (b *neighborhoodBuilder) addNode(code string) bool {
	if _, seen := b.nodes[code]; seen {
		return false
	}
	b.nodes[code] = struct{}{}
	deg := float64(b.snap.Main.PartnerDegree(code))
	b.g.Nodes = append(b.g.Nodes, Node{
		ID:       code,
		Display:  b.snap.Display(code),
		Level:    hierarchy.LevelLeaf,
		Resource: codes.Classify(code),
		Size:     Normalize(deg, b.sizeGain, NodeSizeMin, limit(NodeSizeMin), limit(NeighborhoodNodeSizeMax)),
	})
	return true
}

func (b *neighborhoodBuilder) addEdge(from, to string, weight float64) {
	key := [2]string{from, to}
	if to < from {
		key = [2]string{to, from}
	}
	if _, seen := b.edges[key]; seen {
		return
	}
	b.edges[key] = struct{}{}
	b.g.Edges = append(b.g.Edges, Edge{
		From:     from,
		To:       to,
		Weight:   weight,
		Width:    Normalize(weight, neighborhoodEdgeGain, EdgeWidthMin, limit(EdgeWidthMin), limit(EdgeWidthMax)),
		Level:    hierarchy.LevelLeaf,
		Resource: codes.Classify(to),
	})
}

func (b *neighborhoodBuilder) graph() *Graph {
	sort.Slice(b.g.Nodes, func(i, j int) bool { return b.g.Nodes[i].ID < b.g.Nodes[j].ID })
	return &b.g
}

// degreeRange returns the smallest and largest partner degree over all
// codes in the matrix.
func degreeRange(m *cooccurrence.Matrix) (min, max float64) {
	first := true
	for _, code := range m.Codes {
		d := float64(m.PartnerDegree(code))
		if first {
			min, max = d, d
			first = false
			continue
		}
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}
