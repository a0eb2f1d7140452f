package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"log/slog"

	"depotbot/core/logger"
	"depotbot/internal/catalog"
	"depotbot/internal/models"
)

// PostgresStore implements Store on top of sqlx/Postgres.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps the connected database handle.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateInspection inserts the inspection and its catalog blocks in one
// transaction.
func (s *PostgresStore) CreateInspection(ctx context.Context, trainNumber string, trainType models.TrainType, inspectorID int64) (*models.Inspection, error) {
	if err := validateTrainNumber(trainNumber); err != nil {
		return nil, err
	}
	blocks, err := catalog.Blocks(trainType)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insp := &models.Inspection{
		TrainNumber: trainNumber,
		TrainType:   trainType,
		InspectorID: inspectorID,
		CreatedAt:   time.Now(),
		IsCompleted: false,
	}
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO inspections (train_number, train_type, inspector_id, created_at, is_completed)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		insp.TrainNumber, insp.TrainType, insp.InspectorID, insp.CreatedAt, insp.IsCompleted,
	).Scan(&insp.ID)
	if err != nil {
		return nil, fmt.Errorf("insert inspection: %w", err)
	}

	// Serial block ids preserve catalog order for NextPendingBlock.
	for _, name := range blocks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO inspection_blocks (inspection_id, block_number, is_checked, notes)
			 VALUES ($1, $2, FALSE, '')`,
			insp.ID, name,
		); err != nil {
			return nil, fmt.Errorf("insert block %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	logger.Info(ctx, "service.inspections", "inspection.create",
		slog.Int64("inspection_id", insp.ID),
		slog.String("train_number", insp.TrainNumber),
		slog.String("train_type", string(insp.TrainType)),
		slog.Int("blocks_total", len(blocks)),
	)
	return insp, nil
}

// NextPendingBlock returns the first unchecked block by creation order.
func (s *PostgresStore) NextPendingBlock(ctx context.Context, inspectionID int64) (*models.Block, error) {
	var block models.Block
	err := s.db.GetContext(ctx, &block,
		`SELECT id, inspection_id, block_number, is_checked, notes
		 FROM inspection_blocks
		 WHERE inspection_id = $1 AND is_checked = FALSE
		 ORDER BY id
		 LIMIT 1`,
		inspectionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select pending block: %w", err)
	}
	return &block, nil
}

// RecordBlockResult marks a block checked inside one transaction; a second
// verdict for the same block returns the stored row untouched.
func (s *PostgresStore) RecordBlockResult(ctx context.Context, blockID int64, passed bool, notes string) (*models.Block, error) {
	if passed {
		notes = PassNotes
	} else if notes == "" {
		return nil, ErrEmptyNotes
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var block models.Block
	err = tx.GetContext(ctx, &block,
		`SELECT id, inspection_id, block_number, is_checked, notes
		 FROM inspection_blocks
		 WHERE id = $1
		 FOR UPDATE`,
		blockID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select block: %w", err)
	}

	if block.IsChecked {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return &block, nil
	}

	block.IsChecked = true
	block.Notes = notes
	if _, err := tx.ExecContext(ctx,
		`UPDATE inspection_blocks SET is_checked = TRUE, notes = $2 WHERE id = $1`,
		block.ID, block.Notes,
	); err != nil {
		return nil, fmt.Errorf("update block: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	logger.Debug(ctx, "service.inspections", "block.check",
		slog.Int64("inspection_id", block.InspectionID),
		slog.Int64("block_id", block.ID),
		slog.Bool("passed", passed),
	)
	return &block, nil
}

// CompleteInspection marks the inspection completed.
func (s *PostgresStore) CompleteInspection(ctx context.Context, inspectionID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE inspections SET is_completed = TRUE WHERE id = $1`,
		inspectionID,
	)
	if err != nil {
		return fmt.Errorf("update inspection: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	logger.Info(ctx, "service.inspections", "inspection.complete",
		slog.Int64("inspection_id", inspectionID),
	)
	return nil
}

// Get returns the inspection by id.
func (s *PostgresStore) Get(ctx context.Context, inspectionID int64) (*models.Inspection, error) {
	var insp models.Inspection
	err := s.db.GetContext(ctx, &insp,
		`SELECT id, train_number, train_type, inspector_id, created_at, is_completed
		 FROM inspections
		 WHERE id = $1`,
		inspectionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select inspection: %w", err)
	}
	return &insp, nil
}

// Blocks returns every block of the inspection in creation order.
func (s *PostgresStore) Blocks(ctx context.Context, inspectionID int64) ([]models.Block, error) {
	var blocks []models.Block
	err := s.db.SelectContext(ctx, &blocks,
		`SELECT id, inspection_id, block_number, is_checked, notes
		 FROM inspection_blocks
		 WHERE inspection_id = $1
		 ORDER BY id`,
		inspectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("select blocks: %w", err)
	}
	return blocks, nil
}

// History returns the inspector's inspections, most recent first.
func (s *PostgresStore) History(ctx context.Context, inspectorID int64, limit int) ([]models.Inspection, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}
	var inspections []models.Inspection
	err := s.db.SelectContext(ctx, &inspections,
		`SELECT id, train_number, train_type, inspector_id, created_at, is_completed
		 FROM inspections
		 WHERE inspector_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		inspectorID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	return inspections, nil
}

var _ Store = (*PostgresStore)(nil)
