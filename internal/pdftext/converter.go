// Package pdftext converts rendered invoice PDFs to plain text. The layout
// engine is a black box: bytes in, line-oriented text out.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"certikid/internal/port"
)

type converter struct{}

// NewConverter creates the default PDF-to-text converter.
func NewConverter() port.TextConverter {
	return converter{}
}

// Convert extracts the text of every page, one row per line, preserving the
// row order of the rendered layout so downstream line scanning works.
func (converter) Convert(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var b strings.Builder
	for n := 1; n <= r.NumPage(); n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("reading page %d: %w", n, err)
		}
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					b.WriteString(" ")
				}
				b.WriteString(word.S)
			}
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}
