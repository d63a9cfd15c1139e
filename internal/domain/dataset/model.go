// Package dataset ingests per-patient clinical-code records and caches one
// immutable analysis snapshot per uploaded dataset: the incidence table,
// the co-occurrence matrices (overall and per code system), and the
// hierarchy edge set. Snapshots are read-only after construction, so
// concurrent requests over the same dataset need no locking.
package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coco/coco/internal/domain/catalog"
	"github.com/coco/coco/internal/domain/codes"
	"github.com/coco/coco/internal/domain/cooccurrence"
	"github.com/coco/coco/internal/domain/hierarchy"
)

// Snapshot is the per-dataset read-only cache entry.
type Snapshot struct {
	ID        uuid.UUID
	CreatedAt time.Time

	Records   []codes.CodeRecord
	Incidence *cooccurrence.IncidenceTable

	// Main covers all codes; BySystem holds the per-code-system
	// sub-matrices used by the neighborhood view.
	Main     *cooccurrence.Matrix
	BySystem map[codes.ResourceType]*cooccurrence.Matrix

	// Edges is the full level-tagged hierarchy edge set (levels 0-4).
	Edges []hierarchy.Edge

	// Displays maps each observed leaf code to its catalog display name,
	// falling back to the raw code when the catalog has no entry.
	Displays map[string]string

	// Catalogs reports which code systems had a catalog when the snapshot
	// was built.
	Catalogs catalog.Availability
}

// Display returns the display label for a code, falling back to the code
// itself.
func (s *Snapshot) Display(code string) string {
	if d, ok := s.Displays[code]; ok && d != "" {
		return d
	}
	return code
}

// MissingColumnsError reports which required record columns are absent.
// Fatal for the dataset load.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}
