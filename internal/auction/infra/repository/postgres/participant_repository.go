package postgres

import (
	"context"
	"errors"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ParticipantRepository implements domain.ParticipantRepository.
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

func (r *ParticipantRepository) Create(ctx context.Context, p *domain.Participant) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO participants (id, auction_id, vendor_id, invite_token, blocked)
        VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.AuctionID, p.VendorID, p.InviteToken, p.Blocked,
	)
	return err
}

// GetByToken resolves a participant from their invite token at join time.
func (r *ParticipantRepository) GetByToken(ctx context.Context, inviteToken string) (*domain.Participant, error) {
	p := &domain.Participant{}
	err := r.pool.QueryRow(ctx, `
        SELECT id, auction_id, vendor_id, invite_token, blocked, created_at
        FROM participants
        WHERE invite_token = $1`, inviteToken).Scan(
		&p.ID,
		&p.AuctionID,
		&p.VendorID,
		&p.InviteToken,
		&p.Blocked,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

// CountActive counts the auction's unblocked participants.
func (r *ParticipantRepository) CountActive(ctx context.Context, auctionID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM participants
        WHERE auction_id = $1 AND blocked = FALSE`, auctionID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
