package port

import "context"

// InvoiceSource abstracts the read-only billing API. Fetch returns the
// rendered invoice PDF for a (series, number) pair. Implementations must
// return an error wrapping domain.ErrInvoiceNotFound when the invoice does
// not exist, so callers can tell "unissued number" apart from a transient
// failure without inspecting error text.
type InvoiceSource interface {
	Fetch(ctx context.Context, series, number string) ([]byte, error)
}

// TextConverter turns rendered invoice PDF bytes into plain text. The PDF
// layout engine behind it is treated as a black box.
type TextConverter interface {
	Convert(data []byte) (string, error)
}
