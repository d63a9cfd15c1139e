package dataset

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/coco/coco/internal/domain/catalog"
	"github.com/coco/coco/internal/domain/codes"
	"github.com/coco/coco/internal/domain/cooccurrence"
	"github.com/coco/coco/internal/domain/hierarchy"
)

// ErrNoRecords indicates an upload that contained no usable records.
var ErrNoRecords = errors.New("dataset contains no records")

// Service ingests record sets and produces cached snapshots.
type Service struct {
	catalogs *catalog.Service
	store    *MemoryStore
	log      zerolog.Logger
}

// NewService creates a dataset service over the given catalog service and
// snapshot store.
func NewService(catalogs *catalog.Service, store *MemoryStore, log zerolog.Logger) *Service {
	return &Service{catalogs: catalogs, store: store, log: log}
}

// Ingest builds a snapshot from raw records and caches it. Resource types
// are classified once here, from code shape; whatever the upload claimed is
// discarded. Classification, matrices, and the hierarchy are all computed
// eagerly so every later interaction is a pure read.
func (s *Service) Ingest(ctx context.Context, records []codes.CodeRecord) (*Snapshot, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	for i := range records {
		records[i].Resource = codes.Classify(records[i].Code)
	}

	snap := &Snapshot{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Records:   records,
		BySystem:  make(map[codes.ResourceType]*cooccurrence.Matrix, len(codes.Systems)),
		Displays:  make(map[string]string),
	}

	snap.Incidence = cooccurrence.BuildIncidence(records)
	snap.Main = cooccurrence.BuildMatrix(snap.Incidence)

	for _, system := range codes.Systems {
		var subset []codes.CodeRecord
		for _, r := range records {
			if r.Resource == system {
				subset = append(subset, r)
			}
		}
		snap.BySystem[system] = cooccurrence.BuildMatrix(cooccurrence.BuildIncidence(subset))
	}

	indexes, avail, err := s.catalogs.Indexes(ctx)
	if err != nil {
		return nil, err
	}
	snap.Catalogs = avail
	snap.Edges = hierarchy.Build(snap.Main, indexes)

	for _, c := range snap.Main.Codes {
		if idx, ok := indexes[codes.Classify(c)]; ok {
			snap.Displays[c] = idx.LeafDisplay(c)
		} else {
			snap.Displays[c] = c
		}
	}

	s.store.Put(snap)
	s.log.Info().
		Str("dataset_id", snap.ID.String()).
		Int("records", len(records)).
		Int("codes", snap.Main.Len()).
		Int("edges", len(snap.Edges)).
		Msg("dataset ingested")
	return snap, nil
}

// Get returns a cached snapshot.
func (s *Service) Get(id uuid.UUID) (*Snapshot, error) { return s.store.Get(id) }

// IDs lists the stored dataset ids in sorted order.
func (s *Service) IDs() []uuid.UUID { return s.store.IDs() }
