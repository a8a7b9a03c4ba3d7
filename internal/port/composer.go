package port

import "certikid/internal/domain"

// CertificateData is the fixed-field input of the certificate template.
// The template holds three product slots; the composer truncates longer
// product lists silently.
type CertificateData struct {
	ClientName    string
	InvoiceNumber string
	InvoiceDate   string
	Products      []domain.MatchedProduct
	MinVoltage    string
	VATPayer      bool
	OrderRef      string
}

// Composer produces the finished certificate document and its filename.
type Composer interface {
	Compose(data *CertificateData) (pdf []byte, filename string, err error)
}
