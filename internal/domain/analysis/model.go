package analysis

import (
	"github.com/coco/coco/internal/domain/codes"
	"github.com/coco/coco/internal/domain/cooccurrence"
)

// Node is one rendered graph node. Resource is the color key; Size is
// already normalized into the view's size band.
type Node struct {
	ID       string             `json:"id"`
	Display  string             `json:"display,omitempty"`
	Level    int                `json:"level"`
	Resource codes.ResourceType `json:"resource_type"`
	Size     float64            `json:"size"`
}

// Edge is one rendered graph edge. Width is already normalized into the
// edge-width band; Weight keeps the raw aggregated value.
type Edge struct {
	From     string             `json:"from"`
	To       string             `json:"to"`
	Weight   float64            `json:"weight"`
	Width    float64            `json:"width"`
	Level    int                `json:"level"`
	Resource codes.ResourceType `json:"resource_type"`
}

// Graph is the renderer-agnostic weighted graph produced for one request.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Empty reports whether the graph carries no nodes.
func (g *Graph) Empty() bool { return len(g.Nodes) == 0 }

// NeighborhoodResult is the single-code view: the local subgraph plus the
// codes of interest it covers (selected code, top neighbors per system and
// their fan-out), which feed the frequency and clustering views.
type NeighborhoodResult struct {
	Graph           Graph                         `json:"graph"`
	CodesOfInterest []string                      `json:"codes_of_interest"`
	TopNeighbors    map[codes.ResourceType]string `json:"top_neighbors,omitempty"`
	Frequencies     []cooccurrence.FrequencyEntry `json:"frequencies,omitempty"`
}

// Well-known node titles for the synthetic root and the code systems.
var systemTitles = map[string]string{
	codes.Root:          "Fast Healthcare Interoperability Resources",
	string(codes.ICD):   "International Statistical Classification of Diseases and Related Health Problems",
	string(codes.OPS):   "Operationen- und Prozedurenschlüssel",
	string(codes.LOINC): "Logical Observation Identifiers Names and Codes",
}
