package invoice

import (
	"fmt"
	"strconv"
	"strings"

	"certikid/internal/domain"
)

// suffixLen is how many trailing digits of the invoice number are compared
// when cross-checking a fetched document against the requested identifier.
const suffixLen = 5

// ExtractedInvoice is the structured record recovered from one rendered
// invoice document. Optional fields stay zero-valued when no rule matched;
// extraction itself never fails over a missing field.
type ExtractedInvoice struct {
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   string     `json:"invoice_date"`
	ClientName    string     `json:"client_name"`
	ClientTaxID   string     `json:"client_tax_id"`
	VATPayer      bool       `json:"vat_payer"`
	Products      []LineItem `json:"products"`
	TotalValue    *float64   `json:"total_value,omitempty"`
	OrderRef      string     `json:"order_ref,omitempty"`
	RawText       string     `json:"-"`
}

// Extractor recovers structured invoice data from raw document text using
// ordered per-field rule lists. It is stateless and safe for concurrent use.
type Extractor struct {
	sellerTaxID string
}

// NewExtractor creates an Extractor. sellerTaxID is the seller's own fiscal
// id, excluded when inferring the client's VAT status from RO-prefixed ids.
func NewExtractor(sellerTaxID string) *Extractor {
	return &Extractor{sellerTaxID: sellerTaxID}
}

// Extract recovers all fields from text. The requested identifier drives the
// empty-template guard: when the extracted invoice number is absent, or its
// digit suffix disagrees with the requested one, the document is classified
// as nonexistent (the billing API renders a generic template for unissued
// numbers) and an error wrapping domain.ErrInvoiceNotFound is returned.
func (e *Extractor) Extract(text string, requested Identifier) (*ExtractedInvoice, error) {
	inv := &ExtractedInvoice{RawText: text}

	inv.InvoiceNumber, _ = firstMatch(invoiceNumberRules, text)
	inv.InvoiceDate, _ = firstMatch(invoiceDateRules, text)
	inv.ClientName, _ = firstMatch(clientNameRules, text)
	inv.ClientTaxID, _ = firstMatch(taxIDRules, clientSection(text))
	inv.VATPayer = classifyVATPayer(text, e.sellerTaxID)
	inv.Products = extractLineItems(text)
	inv.OrderRef, _ = firstMatch(orderRefRules, text)

	if raw, _ := firstMatch(totalValueRules, text); raw != "" {
		if v, err := parseAmount(raw); err == nil {
			inv.TotalValue = &v
		}
	}

	if inv.InvoiceNumber == "" {
		return nil, fmt.Errorf("%w: no invoice number in document for %s", domain.ErrInvoiceNotFound, requested)
	}
	if !suffixMatches(inv.InvoiceNumber, requested.String()) {
		return nil, fmt.Errorf("%w: document carries %s, requested %s",
			domain.ErrInvoiceNotFound, inv.InvoiceNumber, requested)
	}

	return inv, nil
}

// suffixMatches compares the digit-only suffixes (last suffixLen digits) of
// the extracted and requested invoice numbers.
func suffixMatches(extracted, requested string) bool {
	return digitSuffix(extracted) == digitSuffix(requested)
}

func digitSuffix(s string) string {
	d := digitsOnly(s)
	if len(d) > suffixLen {
		d = d[len(d)-suffixLen:]
	}
	return d
}

// parseAmount reads Romanian-formatted amounts ("1.234,56") as well as plain
// decimal forms ("899.00").
func parseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(strings.Trim(s, "."), 64)
}
