// Package analysis assembles the request-scoped views handed to the
// renderer: the aggregated all-codes graph, the single-code neighborhood
// graph, the frequency table, and the clustering sub-matrix. Everything
// here is a pure transformation over one dataset snapshot; nothing is
// cached between requests.
package analysis

// Rendering ranges. Node sizes and edge widths are normalized into these
// bands before the graph leaves the engine.
const (
	EdgeWidthMin = 1
	EdgeWidthMax = 32

	NodeSizeMin             = 4
	AggregatedNodeSizeMax   = 32
	NeighborhoodNodeSizeMax = 44

	// degenerateGain scales node sizes when the observed degree range
	// collapses to a single value and no linear gain can be derived.
	degenerateGain = 3
)

// Normalize maps value through value*gain + offset and clamps the result
// into the given limits. A nil limit disables that bound. Pure, and
// monotonically non-decreasing in value for gain >= 0.
func Normalize(value, gain, offset float64, minLimit, maxLimit *float64) float64 {
	v := value*gain + offset
	if minLimit != nil && v < *minLimit {
		v = *minLimit
	}
	if maxLimit != nil && v > *maxLimit {
		v = *maxLimit
	}
	return v
}

// LinearGain derives the gain that maps the observed [inMin, inMax] range
// onto [outMin, outMax]. The degenerate single-value range cannot define a
// slope; callers get ok=false and fall back to a fixed gain.
func LinearGain(inMin, inMax, outMin, outMax float64) (gain float64, ok bool) {
	if inMax == inMin {
		return 0, false
	}
	return (outMax - outMin) / (inMax - inMin), true
}

func limit(v float64) *float64 { return &v }
