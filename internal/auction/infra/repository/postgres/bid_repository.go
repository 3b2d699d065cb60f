package postgres

import (
	"context"
	"fmt"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BidRepository reads the append-only bid log. Inserts happen inside the
// lot ledger's commit transaction, never here.
type BidRepository struct {
	pool *pgxpool.Pool
}

func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

// ListByLotID returns the lot's bids in placement order.
func (r *BidRepository) ListByLotID(ctx context.Context, lotID uuid.UUID) ([]*domain.Bid, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, lot_id, participant_id, amount::text, placed_at
        FROM bids
        WHERE lot_id = $1
        ORDER BY placed_at ASC`, lotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		bid := &domain.Bid{}
		var amount string
		err := rows.Scan(
			&bid.ID,
			&bid.LotID,
			&bid.ParticipantID,
			&amount,
			&bid.PlacedAt,
		)
		if err != nil {
			return nil, err
		}
		if bid.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse bid amount: %w", err)
		}
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}
