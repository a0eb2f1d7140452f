package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"depotbot/internal/catalog"
	"depotbot/internal/models"
)

// MemoryStore is an in-memory Store implementation for tests and development.
// Mutexed maps stand in for transactions; each method is atomic under the
// store lock, mirroring the single-transaction contract of PostgresStore.
type MemoryStore struct {
	mu          sync.Mutex
	inspections map[int64]*models.Inspection
	blocks      map[int64]*models.Block
	nextInspID  int64
	nextBlockID int64

	// now is swappable so tests can control created_at ordering.
	now func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		inspections: make(map[int64]*models.Inspection),
		blocks:      make(map[int64]*models.Block),
		now:         time.Now,
	}
}

// SetClock overrides the time source. Test helper.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// CreateInspection creates the inspection and its blocks atomically.
func (s *MemoryStore) CreateInspection(_ context.Context, trainNumber string, trainType models.TrainType, inspectorID int64) (*models.Inspection, error) {
	if err := validateTrainNumber(trainNumber); err != nil {
		return nil, err
	}
	names, err := catalog.Blocks(trainType)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextInspID++
	insp := &models.Inspection{
		ID:          s.nextInspID,
		TrainNumber: trainNumber,
		TrainType:   trainType,
		InspectorID: inspectorID,
		CreatedAt:   s.now(),
		IsCompleted: false,
	}
	s.inspections[insp.ID] = insp

	for _, name := range names {
		s.nextBlockID++
		s.blocks[s.nextBlockID] = &models.Block{
			ID:           s.nextBlockID,
			InspectionID: insp.ID,
			BlockNumber:  name,
		}
	}

	out := *insp
	return &out, nil
}

// NextPendingBlock returns the earliest unchecked block or nil.
func (s *MemoryStore) NextPendingBlock(_ context.Context, inspectionID int64) (*models.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending *models.Block
	for _, b := range s.blocks {
		if b.InspectionID != inspectionID || b.IsChecked {
			continue
		}
		if pending == nil || b.ID < pending.ID {
			pending = b
		}
	}
	if pending == nil {
		return nil, nil
	}
	out := *pending
	return &out, nil
}

// RecordBlockResult marks the block checked; a repeat verdict is a no-op.
func (s *MemoryStore) RecordBlockResult(_ context.Context, blockID int64, passed bool, notes string) (*models.Block, error) {
	if passed {
		notes = PassNotes
	} else if notes == "" {
		return nil, ErrEmptyNotes
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	block, ok := s.blocks[blockID]
	if !ok {
		return nil, ErrNotFound
	}
	if !block.IsChecked {
		block.IsChecked = true
		block.Notes = notes
	}
	out := *block
	return &out, nil
}

// CompleteInspection flips the completion flag.
func (s *MemoryStore) CompleteInspection(_ context.Context, inspectionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	insp, ok := s.inspections[inspectionID]
	if !ok {
		return ErrNotFound
	}
	insp.IsCompleted = true
	return nil
}

// Get returns the inspection by id.
func (s *MemoryStore) Get(_ context.Context, inspectionID int64) (*models.Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	insp, ok := s.inspections[inspectionID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *insp
	return &out, nil
}

// Blocks returns the inspection's blocks in creation order.
func (s *MemoryStore) Blocks(_ context.Context, inspectionID int64) ([]models.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Block
	for _, b := range s.blocks {
		if b.InspectionID == inspectionID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// History returns the inspector's inspections, most recent first.
func (s *MemoryStore) History(_ context.Context, inspectorID int64, limit int) ([]models.Inspection, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Inspection
	for _, insp := range s.inspections {
		if insp.InspectorID == inspectorID {
			out = append(out, *insp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
