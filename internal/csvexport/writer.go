package csvexport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"certikid/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row for the certificate register.
var columns = []string{
	"Invoice Number",
	"Invoice Date",
	"Client Name",
	"VAT Payer",
	"Products",
	"Warranty (Months)",
	"Order Ref",
	"Output Path",
	"Created At",
}

// Writer wraps csv.Writer for exporting certificates as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteCertificates converts a batch of certificates to CSV rows and writes them.
func (w *Writer) WriteCertificates(certs []domain.Certificate) error {
	for i := range certs {
		row := certificateToRow(&certs[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// certificateToRow converts a single certificate to a string slice. Products
// and warranty terms are flattened from the stored JSON snapshot; if the
// snapshot does not unmarshal, those columns are left empty.
func certificateToRow(cert *domain.Certificate) []string {
	row := make([]string, len(columns))

	row[0] = cert.InvoiceNumber
	row[1] = cert.InvoiceDate
	row[2] = cert.ClientName
	row[3] = formatBool(cert.VATPayer)
	row[6] = cert.OrderRef
	row[7] = cert.OutputPath
	row[8] = cert.CreatedAt.Format(time.RFC3339)

	var products []domain.MatchedProduct
	if err := json.Unmarshal(cert.Products, &products); err != nil {
		return row
	}

	names := make([]string, 0, len(products))
	warranties := make([]string, 0, len(products))
	for _, p := range products {
		if !p.Matched {
			continue
		}
		names = append(names, p.Name)
		warranties = append(warranties, strconv.Itoa(p.WarrantyMonths))
	}
	row[4] = strings.Join(names, "; ")
	row[5] = strings.Join(warranties, "; ")

	return row
}

func formatBool(v bool) string {
	if v {
		return "Da"
	}
	return "Nu"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.csv
func BuildFilename(name string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
