package postgres

import (
	"context"
	"errors"

	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VendorRepository implements domain.VendorRepository.
type VendorRepository struct {
	pool *pgxpool.Pool
}

func NewVendorRepository(pool *pgxpool.Pool) *VendorRepository {
	return &VendorRepository{pool: pool}
}

func (r *VendorRepository) Create(ctx context.Context, v *domain.Vendor) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO vendors (id, name, email, comment)
        VALUES ($1, $2, $3, $4)`,
		v.ID, v.Name, v.Email, v.Comment,
	)
	return err
}

func (r *VendorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	v := &domain.Vendor{}
	err := r.pool.QueryRow(ctx, `
        SELECT id, name, email, COALESCE(comment, ''), created_at
        FROM vendors
        WHERE id = $1`, id).Scan(
		&v.ID,
		&v.Name,
		&v.Email,
		&v.Comment,
		&v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVendorNotFound
		}
		return nil, err
	}
	return v, nil
}
