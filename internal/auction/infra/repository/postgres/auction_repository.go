package postgres

import (
	"context"
	"errors"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuctionRepository implements domain.AuctionRepository.
type AuctionRepository struct {
	pool *pgxpool.Pool
}

func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{pool: pool}
}

const auctionColumns = `id, slug, title, description, status, start_time, end_time, created_at`

func scanAuction(row rowScanner) (*domain.Auction, error) {
	a := &domain.Auction{}
	err := row.Scan(
		&a.ID,
		&a.Slug,
		&a.Title,
		&a.Description,
		&a.Status,
		&a.StartTime,
		&a.EndTime,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AuctionRepository) Create(ctx context.Context, a *domain.Auction) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO auctions (id, slug, title, description, status, start_time, end_time)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Slug, a.Title, a.Description, a.Status, a.StartTime, a.EndTime,
	)
	return err
}

func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	a, err := scanAuction(r.pool.QueryRow(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AuctionRepository) GetBySlug(ctx context.Context, slug string) (*domain.Auction, error) {
	a, err := scanAuction(r.pool.QueryRow(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return a, nil
}

// UpdateStatus persists the status and start time of a transitioned auction.
func (r *AuctionRepository) UpdateStatus(ctx context.Context, a *domain.Auction) error {
	tag, err := r.pool.Exec(ctx, `
        UPDATE auctions
        SET status = $2, start_time = $3
        WHERE id = $1`,
		a.ID, a.Status, a.StartTime,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAuctionNotFound
	}
	return nil
}

// ListPendingActivations returns draft auctions with a start time set,
// the ones whose activation timers must be re-armed at boot.
func (r *AuctionRepository) ListPendingActivations(ctx context.Context) ([]*domain.Auction, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+auctionColumns+`
        FROM auctions
        WHERE status = $1 AND start_time IS NOT NULL
        ORDER BY start_time ASC`, domain.StatusDraft)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}
	return auctions, rows.Err()
}

func (r *AuctionRepository) List(ctx context.Context, limit, offset int) ([]*domain.Auction, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+auctionColumns+`
        FROM auctions
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}
	return auctions, rows.Err()
}
