package catalog

import (
	"context"
	"errors"

	"github.com/coco/coco/internal/domain/codes"
)

// ErrCatalogUnavailable indicates the catalog for a code system is not
// loaded. Non-fatal: the affected system participates with level-4 leaves
// only.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Repository provides access to the per-system catalog reference tables.
type Repository interface {
	// Entries returns all catalog rows for the code system, or
	// ErrCatalogUnavailable when that system's catalog is not loaded.
	Entries(ctx context.Context, system codes.ResourceType) ([]*Entry, error)
}
