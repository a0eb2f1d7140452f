// Package identity gives the workflow read access to registered inspectors.
// Registration and administration of inspectors are owned by a separate
// subsystem; this package never mutates inspector rows except for the
// first-run admin seed.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"log/slog"

	"depotbot/core/logger"
	"depotbot/internal/models"
)

// Service resolves Telegram users to inspectors.
type Service struct {
	db *sqlx.DB
}

// NewService wraps the connected database handle.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// GetInspectorByTelegramID returns the inspector registered under the
// Telegram user id, or nil when the user is not registered.
func (s *Service) GetInspectorByTelegramID(ctx context.Context, telegramID int64) (*models.Inspector, error) {
	var inspector models.Inspector
	err := s.db.GetContext(ctx, &inspector,
		`SELECT id, telegram_id, full_name, position, railway, branch, role, is_active, is_blocked
		 FROM inspectors
		 WHERE telegram_id = $1`,
		telegramID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select inspector: %w", err)
	}
	return &inspector, nil
}

// GetInspector returns the inspector by primary key, or nil when missing.
func (s *Service) GetInspector(ctx context.Context, id int64) (*models.Inspector, error) {
	var inspector models.Inspector
	err := s.db.GetContext(ctx, &inspector,
		`SELECT id, telegram_id, full_name, position, railway, branch, role, is_active, is_blocked
		 FROM inspectors
		 WHERE id = $1`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select inspector: %w", err)
	}
	return &inspector, nil
}

// IsBlocked reports whether the inspector may not start inspections.
func IsBlocked(inspector *models.Inspector) bool {
	return inspector == nil || inspector.IsBlocked || !inspector.IsActive
}

// AdminSeed describes the administrator inspector created on first run so a
// fresh install has at least one usable account.
type AdminSeed struct {
	TelegramID int64
	FullName   string
	Position   string
	Railway    string
	Branch     string
}

// Seed upserts the configured admin inspector. A zero TelegramID disables
// seeding.
func (a AdminSeed) Seed(ctx context.Context, db *sqlx.DB) error {
	if a.TelegramID == 0 {
		return nil
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO inspectors (telegram_id, full_name, position, railway, branch, role, is_active, is_blocked)
		 VALUES ($1, $2, $3, $4, $5, 'admin', TRUE, FALSE)
		 ON CONFLICT (telegram_id) DO UPDATE SET role = 'admin', is_active = TRUE, is_blocked = FALSE`,
		a.TelegramID, a.FullName, a.Position, a.Railway, a.Branch,
	)
	if err != nil {
		return fmt.Errorf("seed admin inspector: %w", err)
	}
	logger.Info(ctx, "db.seed", "seed.admin",
		slog.Int64("user_id", a.TelegramID),
	)
	return nil
}
