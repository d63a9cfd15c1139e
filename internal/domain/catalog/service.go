package catalog

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/coco/coco/internal/domain/codes"
)

// Index provides code, chapter and group lookups over one system's catalog.
// It is built once per (dataset, catalog) pair and read-only afterwards.
type Index struct {
	System       codes.ResourceType
	entries      []*Entry
	byCode       map[string]*Entry
	chapterNames map[string]string
	groupNames   map[string]string
}

// NewIndex builds lookup maps over the system's catalog entries.
func NewIndex(system codes.ResourceType, entries []*Entry) *Index {
	idx := &Index{
		System:       system,
		entries:      entries,
		byCode:       make(map[string]*Entry, len(entries)),
		chapterNames: make(map[string]string),
		groupNames:   make(map[string]string),
	}
	for _, e := range entries {
		if _, dup := idx.byCode[e.Code]; !dup {
			idx.byCode[e.Code] = e
		}
		if e.ChapterName != "" {
			idx.chapterNames[e.ChapterCode] = e.ChapterName
		}
		if e.GroupName != "" {
			idx.groupNames[e.GroupCode] = e.GroupName
		}
	}
	return idx
}

// Entry returns the catalog row for a leaf code, or nil when the code has
// no catalog entry.
func (idx *Index) Entry(code string) *Entry { return idx.byCode[code] }

// LeafDisplay returns the display name for a leaf code, falling back to the
// raw code string when the catalog has no entry.
func (idx *Index) LeafDisplay(code string) string {
	if e := idx.byCode[code]; e != nil && e.Display != "" {
		return e.Display
	}
	return code
}

// ChapterDisplay returns the chapter label, or "" when unknown. Label
// resolution is advisory; a missing label is not an error.
func (idx *Index) ChapterDisplay(chapterCode string) string {
	return idx.chapterNames[chapterCode]
}

// GroupDisplay returns the group label, or "" when unknown.
func (idx *Index) GroupDisplay(groupCode string) string {
	return idx.groupNames[groupCode]
}

// Restrict returns the catalog entries whose leaf code is in the observed
// set, preserving catalog order.
func (idx *Index) Restrict(observed map[string]struct{}) []*Entry {
	var out []*Entry
	for _, e := range idx.entries {
		if _, ok := observed[e.Code]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Service loads catalog indexes for all code systems, degrading gracefully
// when individual catalogs are unavailable.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

// NewService creates a catalog service over the given repository.
func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Indexes returns an index per available code system plus an availability
// report. A missing catalog is logged and reported, never fatal.
func (s *Service) Indexes(ctx context.Context) (map[codes.ResourceType]*Index, Availability, error) {
	indexes := make(map[codes.ResourceType]*Index)
	avail := make(Availability, len(codes.Systems))
	for _, system := range codes.Systems {
		entries, err := s.repo.Entries(ctx, system)
		if err != nil {
			if errors.Is(err, ErrCatalogUnavailable) {
				s.log.Warn().Str("system", string(system)).Msg("catalog unavailable, hierarchy depth reduced")
				avail[system] = false
				continue
			}
			return nil, nil, err
		}
		indexes[system] = NewIndex(system, entries)
		avail[system] = true
	}
	return indexes, avail, nil
}
