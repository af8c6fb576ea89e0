// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"market_server/core/domain"
	"market_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// =============================================================================
// Loyalty Adapter (PostgreSQL)
// =============================================================================

// LoyaltyAdapter implements out.LoyaltyRepository using PostgreSQL. The
// table is an append-only ledger; balances are computed by summation.
type LoyaltyAdapter struct {
	db *sqlx.DB
}

// NewLoyaltyAdapter creates a new LoyaltyAdapter.
func NewLoyaltyAdapter(db *sqlx.DB) *LoyaltyAdapter {
	return &LoyaltyAdapter{db: db}
}

// =============================================================================
// Database Row Mapping
// =============================================================================

type loyaltyRow struct {
	ID        int64          `db:"id"`
	UserID    string         `db:"user_id"`
	Type      string         `db:"type"`
	Points    int            `db:"points"`
	OrderID   sql.NullString `db:"order_id"`
	Note      sql.NullString `db:"note"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r *loyaltyRow) toEntity() (*domain.LoyaltyTransaction, error) {
	userID, err := uuid.Parse(r.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user ID: %w", err)
	}

	return &domain.LoyaltyTransaction{
		ID:        r.ID,
		UserID:    userID,
		Type:      domain.LoyaltyTxType(r.Type),
		Points:    r.Points,
		OrderID:   r.OrderID.String,
		Note:      r.Note.String,
		CreatedAt: r.CreatedAt,
	}, nil
}

// =============================================================================
// Operations
// =============================================================================

// Insert appends one ledger entry and fills in its ID.
func (a *LoyaltyAdapter) Insert(ctx context.Context, tx *domain.LoyaltyTransaction) error {
	query := `
		INSERT INTO loyalty_transactions (user_id, type, points, order_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := a.db.QueryRowContext(ctx, query,
		tx.UserID.String(),
		string(tx.Type),
		tx.Points,
		nullString(tx.OrderID),
		nullString(tx.Note),
		tx.CreatedAt,
	).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("failed to insert loyalty transaction: %w", err)
	}
	return nil
}

// Balance sums the user's ledger.
func (a *LoyaltyAdapter) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	var balance int
	query := `SELECT COALESCE(SUM(points), 0) FROM loyalty_transactions WHERE user_id = $1`

	if err := a.db.GetContext(ctx, &balance, query, userID.String()); err != nil {
		return 0, fmt.Errorf("failed to compute loyalty balance: %w", err)
	}
	return balance, nil
}

// History returns the user's entries, newest first.
func (a *LoyaltyAdapter) History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LoyaltyTransaction, error) {
	var rows []loyaltyRow
	query := `
		SELECT * FROM loyalty_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	if err := a.db.SelectContext(ctx, &rows, query, userID.String(), limit); err != nil {
		return nil, fmt.Errorf("failed to list loyalty transactions: %w", err)
	}

	txs := make([]*domain.LoyaltyTransaction, 0, len(rows))
	for i := range rows {
		tx, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.LoyaltyRepository = (*LoyaltyAdapter)(nil)
