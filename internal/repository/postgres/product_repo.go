package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"certikid/internal/domain"
	"certikid/internal/port"
)

type productRepo struct {
	db *sqlx.DB
}

// NewProductRepo creates a new PostgreSQL-backed ProductRepository.
func NewProductRepo(db *sqlx.DB) port.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, "SELECT * FROM products WHERE code = $1", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("productRepo.GetByCode: %w", err)
	}
	return &p, nil
}

func (r *productRepo) GetAll(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	query := "SELECT * FROM products ORDER BY name"
	if !includeInactive {
		query = "SELECT * FROM products WHERE is_active = TRUE ORDER BY name"
	}

	var products []domain.Product
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("productRepo.GetAll: %w", err)
	}
	return products, nil
}

func (r *productRepo) Upsert(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	p.UpdatedAt = now
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}

	query := `INSERT INTO products
		(code, name, warranty_months_pf, warranty_months_pj, min_voltage,
		 is_active, needs_configuration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			warranty_months_pf = EXCLUDED.warranty_months_pf,
			warranty_months_pj = EXCLUDED.warranty_months_pj,
			min_voltage = EXCLUDED.min_voltage,
			is_active = EXCLUDED.is_active,
			needs_configuration = EXCLUDED.needs_configuration,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		p.Code, p.Name, p.WarrantyMonthsPF, p.WarrantyMonthsPJ, p.MinVoltage,
		p.IsActive, p.NeedsConfiguration, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("productRepo.Upsert: %w", err)
	}
	return nil
}
