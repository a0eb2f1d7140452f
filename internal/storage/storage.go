// Package storage persists inspections and their checklist blocks.
package storage

import (
	"context"
	"errors"

	"depotbot/internal/models"
)

// PassNotes is the sentinel stored in a block's notes on a pass verdict.
const PassNotes = "OK"

// HistoryLimit bounds how many inspections the history view returns.
const HistoryLimit = 10

var (
	// ErrNotFound indicates the inspection or block id does not resolve.
	ErrNotFound = errors.New("storage: not found")
	// ErrEmptyNotes indicates a fail verdict was recorded without notes.
	ErrEmptyNotes = errors.New("storage: fail verdict requires notes")
	// ErrInvalidTrainNumber rejects composition numbers outside the permitted
	// set: digits only, at least two of them.
	ErrInvalidTrainNumber = errors.New("storage: invalid train number")
)

// validateTrainNumber enforces the composition number rule shared by every
// Store implementation. The workflow validates earlier with a friendlier
// re-prompt; the store check is the authoritative one.
func validateTrainNumber(trainNumber string) error {
	if len(trainNumber) < 2 {
		return ErrInvalidTrainNumber
	}
	for _, r := range trainNumber {
		if r < '0' || r > '9' {
			return ErrInvalidTrainNumber
		}
	}
	return nil
}

// Store is the transactional record store behind the inspection workflow.
// Every method executes as a single atomic unit.
type Store interface {
	// CreateInspection persists a new inspection together with one unchecked
	// block per catalog entry for the train type, preserving catalog order.
	// The whole creation is all-or-nothing. The train number must satisfy
	// validateTrainNumber or ErrInvalidTrainNumber is returned and nothing is
	// created.
	CreateInspection(ctx context.Context, trainNumber string, trainType models.TrainType, inspectorID int64) (*models.Inspection, error)

	// NextPendingBlock returns the earliest-by-catalog-order unchecked block
	// of the inspection, or nil when every block is checked.
	NextPendingBlock(ctx context.Context, inspectionID int64) (*models.Block, error)

	// RecordBlockResult marks the block checked. A pass verdict stores the
	// PassNotes sentinel; a fail verdict stores the supplied notes. Recording
	// a verdict for an already-checked block is a no-op that returns the
	// stored block unchanged.
	RecordBlockResult(ctx context.Context, blockID int64, passed bool, notes string) (*models.Block, error)

	// CompleteInspection flips is_completed to true. The transition is
	// one-way; callers invoke it only once NextPendingBlock returns nil.
	CompleteInspection(ctx context.Context, inspectionID int64) error

	// Get returns the inspection by id, or ErrNotFound.
	Get(ctx context.Context, inspectionID int64) (*models.Inspection, error)

	// Blocks returns all blocks of the inspection in creation order.
	Blocks(ctx context.Context, inspectionID int64) ([]models.Block, error)

	// History returns the inspector's inspections, most recent first,
	// bounded by limit.
	History(ctx context.Context, inspectorID int64, limit int) ([]models.Inspection, error)
}
