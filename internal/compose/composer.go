// Package compose synthesizes warranty certificate PDFs by filling the named
// text fields of a fixed AcroForm template.
package compose

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"certikid/internal/domain"
	"certikid/internal/port"
)

// maxProductSlots is the template capacity; longer product lists are
// truncated silently, keeping the first entries in original order.
const maxProductSlots = 3

// Composer fills the certificate template. It is stateless and safe for
// concurrent use.
type Composer struct {
	templatePath string
	// fallbackWarrantyMonths is printed when a matched product carries no
	// warranty value.
	fallbackWarrantyMonths int
}

// NewComposer creates a Composer for the template at templatePath.
func NewComposer(templatePath string, fallbackWarrantyMonths int) *Composer {
	if fallbackWarrantyMonths <= 0 {
		fallbackWarrantyMonths = 24
	}
	return &Composer{
		templatePath:           templatePath,
		fallbackWarrantyMonths: fallbackWarrantyMonths,
	}
}

// Compose produces the finished certificate PDF and its deterministic
// filename. A missing template is fatal: no partial document is returned.
func (c *Composer) Compose(data *port.CertificateData) ([]byte, string, error) {
	tpl, err := os.ReadFile(c.templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: %s", domain.ErrTemplateMissing, c.templatePath)
		}
		return nil, "", fmt.Errorf("composer: reading template: %w", err)
	}

	formJSON, err := buildForm(data, c.fallbackWarrantyMonths)
	if err != nil {
		return nil, "", fmt.Errorf("composer: building form: %w", err)
	}

	var out bytes.Buffer
	if err := api.FillForm(bytes.NewReader(tpl), bytes.NewReader(formJSON), &out, nil); err != nil {
		return nil, "", fmt.Errorf("composer: filling template: %w", err)
	}

	return out.Bytes(), Filename(data.InvoiceNumber), nil
}

// Filename returns the deterministic output name for an invoice number in
// canonical series+number form.
func Filename(invoiceNumber string) string {
	return fmt.Sprintf("Certificate_%s.pdf", invoiceNumber)
}
