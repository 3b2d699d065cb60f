package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LotRepository is the postgres lot store. It implements both the
// domain.LotLedger contract used by the arbitrator and the admin-side
// domain.LotRepository.
type LotRepository struct {
	pool *pgxpool.Pool
}

func NewLotRepository(pool *pgxpool.Pool) *LotRepository {
	return &LotRepository{pool: pool}
}

const lotColumns = `
        id, auction_id, lot_number, name, base_price::text, min_increment::text,
        currency, current_price::text, current_leader, end_time, extension_sec, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLot(row rowScanner) (*domain.Lot, error) {
	lot := &domain.Lot{}
	var basePrice, minIncrement, currentPrice string
	err := row.Scan(
		&lot.ID,
		&lot.AuctionID,
		&lot.LotNumber,
		&lot.Name,
		&basePrice,
		&minIncrement,
		&lot.Currency,
		&currentPrice,
		&lot.CurrentLeader,
		&lot.EndTime,
		&lot.ExtensionSec,
		&lot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lot.BasePrice, err = decimal.NewFromString(basePrice); err != nil {
		return nil, fmt.Errorf("parse base_price: %w", err)
	}
	if lot.MinIncrement, err = decimal.NewFromString(minIncrement); err != nil {
		return nil, fmt.Errorf("parse min_increment: %w", err)
	}
	if lot.CurrentPrice, err = decimal.NewFromString(currentPrice); err != nil {
		return nil, fmt.Errorf("parse current_price: %w", err)
	}
	return lot, nil
}

// Read returns the canonical snapshot of one lot.
func (r *LotRepository) Read(ctx context.Context, lotID uuid.UUID) (*domain.Lot, error) {
	query := `SELECT` + lotColumns + `
        FROM lots
        WHERE id = $1`
	lot, err := scanLot(r.pool.QueryRow(ctx, query, lotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLotNotFound
		}
		return nil, err
	}
	return lot, nil
}

// Commit persists the bid record and the lot field changes in one
// transaction: both land or neither does. The owning auction's status is
// re-read under the lot row lock, so a pause or end transition that slipped
// in after the arbitrator's check cannot be lost.
func (r *LotRepository) Commit(ctx context.Context, lotID uuid.UUID, upd domain.LotUpdate, bid *domain.Bid) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin lot commit: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	err = tx.QueryRow(ctx, `
        SELECT a.status
        FROM lots l
        JOIN auctions a ON a.id = l.auction_id
        WHERE l.id = $1
        FOR UPDATE OF l`, lotID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrLotNotFound
		}
		return classifyCommitErr(err)
	}
	if status != string(domain.StatusLive) {
		return domain.ErrLotNotLive
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO bids (id, lot_id, participant_id, amount, placed_at)
        VALUES ($1, $2, $3, $4::numeric, $5)`,
		bid.ID, bid.LotID, bid.ParticipantID, bid.Amount.String(), bid.PlacedAt,
	)
	if err != nil {
		return classifyCommitErr(err)
	}

	_, err = tx.Exec(ctx, `
        UPDATE lots
        SET current_price = $2::numeric, current_leader = $3, end_time = $4
        WHERE id = $1`,
		lotID, upd.Price.String(), upd.Leader, upd.EndTime,
	)
	if err != nil {
		return classifyCommitErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return classifyCommitErr(err)
	}
	return nil
}

// Create inserts a new lot.
func (r *LotRepository) Create(ctx context.Context, lot *domain.Lot) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO lots (id, auction_id, lot_number, name, base_price, min_increment, currency, current_price, end_time, extension_sec)
        VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8::numeric, $9, $10)`,
		lot.ID,
		lot.AuctionID,
		lot.LotNumber,
		lot.Name,
		lot.BasePrice.String(),
		lot.MinIncrement.String(),
		lot.Currency,
		lot.CurrentPrice.String(),
		lot.EndTime,
		lot.ExtensionSec,
	)
	return err
}

// ListByAuctionID returns the auction's lots in lot-number order.
func (r *LotRepository) ListByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*domain.Lot, error) {
	query := `SELECT` + lotColumns + `
        FROM lots
        WHERE auction_id = $1
        ORDER BY lot_number ASC`
	rows, err := r.pool.Query(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []*domain.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

// NextLotNumber returns the next free lot number within the auction.
func (r *LotRepository) NextLotNumber(ctx context.Context, auctionID uuid.UUID) (int, error) {
	var next int
	err := r.pool.QueryRow(ctx, `
        SELECT COALESCE(MAX(lot_number), 0) + 1
        FROM lots
        WHERE auction_id = $1`, auctionID).Scan(&next)
	if err != nil {
		return 0, err
	}
	return next, nil
}

// classifyCommitErr maps serialization failures and deadlocks to the
// domain's conflict sentinel so the arbitrator can retry them.
func classifyCommitErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %v", domain.ErrCommitConflict, err)
		}
	}
	return err
}
