package port

import (
	"context"

	"github.com/google/uuid"

	"certikid/internal/domain"
)

// ProductRepository defines the contract for catalog lookups.
type ProductRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Product, error)
	GetAll(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	Upsert(ctx context.Context, p *domain.Product) error
}

// CertificateRepository defines the contract for the certificate register.
type CertificateRepository interface {
	Create(ctx context.Context, cert *domain.Certificate) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Certificate, error)
	GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.Certificate, error)
	List(ctx context.Context, offset, limit int) ([]domain.Certificate, int, error)
}

// CheckpointStore persists the last confirmed-existing invoice identifier
// between discovery runs.
type CheckpointStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, identifier string) error
}
