package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry mapping a vendor product to its warranty terms.
// WarrantyMonthsPF applies to individual consumers, WarrantyMonthsPJ to
// VAT-registered companies.
type Product struct {
	Code               string    `db:"code" json:"code"`
	Name               string    `db:"name" json:"name"`
	WarrantyMonthsPF   int       `db:"warranty_months_pf" json:"warranty_months_pf"`
	WarrantyMonthsPJ   int       `db:"warranty_months_pj" json:"warranty_months_pj"`
	MinVoltage         int       `db:"min_voltage" json:"min_voltage"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	NeedsConfiguration bool      `db:"needs_configuration" json:"needs_configuration"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// MatchedProduct is the result of reconciling one extracted line item against
// the catalog. Unmatched items always carry a Reason; matched items never do.
type MatchedProduct struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	WarrantyMonths int    `json:"warranty_months"`
	Quantity       int    `json:"quantity"`
	Matched        bool   `json:"matched"`
	Reason         string `json:"reason,omitempty"`
}

// Certificate is the persisted record of one generated warranty certificate.
type Certificate struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	InvoiceNumber string          `db:"invoice_number" json:"invoice_number"`
	InvoiceDate   string          `db:"invoice_date" json:"invoice_date"`
	ClientName    string          `db:"client_name" json:"client_name"`
	VATPayer      bool            `db:"vat_payer" json:"vat_payer"`
	Products      json.RawMessage `db:"products" json:"products"`
	OrderRef      string          `db:"order_ref" json:"order_ref"`
	OutputPath    string          `db:"output_path" json:"output_path"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// DiscoveryRun summarizes one sequential discovery invocation. It is reported
// to the caller and discarded, never persisted.
type DiscoveryRun struct {
	StartIdentifier         string   `json:"start_identifier"`
	MaxAttempts             int      `json:"max_attempts"`
	ConsecutiveNotFoundStop int      `json:"consecutive_not_found_stop"`
	Attempted               int      `json:"attempted"`
	Existed                 int      `json:"existed"`
	Generated               int      `json:"generated"`
	SkippedNoActiveProducts int      `json:"skipped_no_active_products"`
	NotFound                int      `json:"not_found"`
	Errors                  []string `json:"errors"`
	GeneratedCertificates   []string `json:"generated_certificates"`
	Checkpoint              string   `json:"checkpoint"`
}
