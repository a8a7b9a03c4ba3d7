package compose

import (
	"encoding/json"
	"fmt"

	"github.com/gosimple/unidecode"

	"certikid/internal/port"
)

// Template field names. The template exposes three product-name slots and
// three warranty slots alongside the header fields.
const (
	fieldClientName    = "client_name"
	fieldInvoiceNumber = "invoice_number"
	fieldInvoiceDate   = "invoice_date"
	fieldMinVoltage    = "min_voltage"
)

// Font sizes. Product and warranty slots hold variable-length names and use a
// reduced size relative to the header fields.
const (
	headerFontSize = 12
	slotFontSize   = 9
)

// formFont mirrors the font block of pdfcpu's form JSON.
type formFont struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// textField is one entry of the pdfcpu fill-form JSON. Locked marks the field
// read-only after filling.
type textField struct {
	Name   string    `json:"name"`
	Value  string    `json:"value"`
	Locked bool      `json:"locked"`
	Font   *formFont `json:"font,omitempty"`
}

type form struct {
	TextFields []textField `json:"textfield"`
}

type formDocument struct {
	Forms []form `json:"forms"`
}

// buildForm maps CertificateData onto the template's named fields as pdfcpu
// fill-form JSON. All text is transliterated to plain ASCII (the template
// field encoding cannot carry diacritics). Slots beyond the matched products
// are cleared with empty strings, never left stale, and every field is
// locked read-only.
func buildForm(data *port.CertificateData, fallbackWarrantyMonths int) ([]byte, error) {
	header := &formFont{Name: "Helvetica", Size: headerFontSize}
	slot := &formFont{Name: "Helvetica", Size: slotFontSize}

	fields := []textField{
		{Name: fieldClientName, Value: translit(data.ClientName), Locked: true, Font: header},
		{Name: fieldInvoiceNumber, Value: translit(data.InvoiceNumber), Locked: true, Font: header},
		{Name: fieldInvoiceDate, Value: translit(data.InvoiceDate), Locked: true, Font: header},
		{Name: fieldMinVoltage, Value: translit(data.MinVoltage), Locked: true, Font: header},
	}

	products := data.Products
	if len(products) > maxProductSlots {
		products = products[:maxProductSlots]
	}

	for i := 0; i < maxProductSlots; i++ {
		name, warranty := "", ""
		if i < len(products) {
			months := products[i].WarrantyMonths
			if months <= 0 {
				months = fallbackWarrantyMonths
			}
			name = translit(fmt.Sprintf("%d. %s", i+1, products[i].Name))
			warranty = fmt.Sprintf("Garantie (luni): %d", months)
		}
		fields = append(fields,
			textField{Name: fmt.Sprintf("product_%d", i+1), Value: name, Locked: true, Font: slot},
			textField{Name: fmt.Sprintf("warranty_%d", i+1), Value: warranty, Locked: true, Font: slot},
		)
	}

	return json.Marshal(formDocument{Forms: []form{{TextFields: fields}}})
}

// translit strips diacritics down to ASCII.
func translit(s string) string {
	return unidecode.Unidecode(s)
}
