package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"certikid/internal/domain"
	"certikid/internal/port"
)

type certificateRepo struct {
	db *sqlx.DB
}

// NewCertificateRepo creates a new PostgreSQL-backed CertificateRepository.
func NewCertificateRepo(db *sqlx.DB) port.CertificateRepository {
	return &certificateRepo{db: db}
}

func (r *certificateRepo) Create(ctx context.Context, cert *domain.Certificate) error {
	cert.CreatedAt = time.Now().UTC()

	query := `INSERT INTO certificates
		(id, invoice_number, invoice_date, client_name, vat_payer, products,
		 order_ref, output_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (invoice_number) DO UPDATE SET
			invoice_date = EXCLUDED.invoice_date,
			client_name = EXCLUDED.client_name,
			vat_payer = EXCLUDED.vat_payer,
			products = EXCLUDED.products,
			order_ref = EXCLUDED.order_ref,
			output_path = EXCLUDED.output_path`

	_, err := r.db.ExecContext(ctx, query,
		cert.ID, cert.InvoiceNumber, cert.InvoiceDate, cert.ClientName,
		cert.VATPayer, cert.Products, cert.OrderRef, cert.OutputPath, cert.CreatedAt)
	if err != nil {
		return fmt.Errorf("certificateRepo.Create: %w", err)
	}
	return nil
}

func (r *certificateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Certificate, error) {
	var cert domain.Certificate
	err := r.db.GetContext(ctx, &cert, "SELECT * FROM certificates WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("certificateRepo.GetByID: %w", err)
	}
	return &cert, nil
}

func (r *certificateRepo) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.Certificate, error) {
	var cert domain.Certificate
	err := r.db.GetContext(ctx, &cert,
		"SELECT * FROM certificates WHERE invoice_number = $1", invoiceNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("certificateRepo.GetByInvoiceNumber: %w", err)
	}
	return &cert, nil
}

func (r *certificateRepo) List(ctx context.Context, offset, limit int) ([]domain.Certificate, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM certificates"); err != nil {
		return nil, 0, fmt.Errorf("certificateRepo.List count: %w", err)
	}

	var certs []domain.Certificate
	err := r.db.SelectContext(ctx, &certs,
		`SELECT * FROM certificates
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("certificateRepo.List: %w", err)
	}
	return certs, total, nil
}
