package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"certikid/internal/domain"
	"certikid/internal/invoice"
	"certikid/internal/match"
	"certikid/internal/port"

	"github.com/google/uuid"
)

// GenerateResult is the outcome of one fetch→extract→match→compose cycle.
// A nil error means the invoice was confirmed to exist, whether or not a
// certificate came out of it.
type GenerateResult struct {
	Identifier  invoice.Identifier        `json:"identifier"`
	Extracted   *invoice.ExtractedInvoice `json:"extracted"`
	Matched     []domain.MatchedProduct   `json:"matched"`
	Certificate *domain.Certificate       `json:"certificate,omitempty"`
	Generated   bool                      `json:"generated"`
}

// CertificateService runs the full certificate pipeline for one invoice.
type CertificateService struct {
	source    port.InvoiceSource
	converter port.TextConverter
	extractor *invoice.Extractor
	matcher   *match.Matcher
	composer  port.Composer
	certRepo  port.CertificateRepository
	storage   port.ObjectStorage
	bucket    string
	series    string
}

// NewCertificateService creates a CertificateService. series is the fallback
// invoice series for bare numeric identifiers.
func NewCertificateService(
	source port.InvoiceSource,
	converter port.TextConverter,
	extractor *invoice.Extractor,
	matcher *match.Matcher,
	composer port.Composer,
	certRepo port.CertificateRepository,
	storage port.ObjectStorage,
	bucket, series string,
) *CertificateService {
	return &CertificateService{
		source:    source,
		converter: converter,
		extractor: extractor,
		matcher:   matcher,
		composer:  composer,
		certRepo:  certRepo,
		storage:   storage,
		bucket:    bucket,
		series:    series,
	}
}

// GenerateFromInput normalizes a free-form identifier string and runs the
// pipeline for it. Unparseable input fails with domain.ErrInvalidIdentifier.
func (s *CertificateService) GenerateFromInput(ctx context.Context, raw string) (*GenerateResult, error) {
	id, err := invoice.ParseIdentifierWithSeries(raw, s.series)
	if err != nil {
		return nil, err
	}
	return s.Generate(ctx, id)
}

// Generate runs one full cycle for a canonical identifier: fetch the PDF,
// recover its text and fields, reconcile products against the catalog, and,
// when at least one active product matched, compose and persist the
// certificate. When nothing matched the invoice is still confirmed existing
// and the result reports Generated=false.
func (s *CertificateService) Generate(ctx context.Context, id invoice.Identifier) (*GenerateResult, error) {
	pdfBytes, err := s.source.Fetch(ctx, id.Series, id.Number)
	if err != nil {
		return nil, err
	}

	text, err := s.converter.Convert(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("certificateService: converting %s: %w", id, err)
	}

	extracted, err := s.extractor.Extract(text, id)
	if err != nil {
		return nil, err
	}

	matched, err := s.matcher.Match(ctx, extracted.Products, extracted.VATPayer)
	if err != nil {
		return nil, fmt.Errorf("certificateService: matching %s: %w", id, err)
	}

	result := &GenerateResult{Identifier: id, Extracted: extracted, Matched: matched}

	if !anyMatched(matched) {
		log.Printf("certificateService: %s exists but no active products matched (%d line items)",
			id, len(extracted.Products))
		return result, nil
	}

	data := &port.CertificateData{
		ClientName:    extracted.ClientName,
		InvoiceNumber: id.String(),
		InvoiceDate:   extracted.InvoiceDate,
		Products:      onlyMatched(matched),
		MinVoltage:    formatVoltage(s.matcher.MinVoltage(ctx, matched)),
		VATPayer:      extracted.VATPayer,
		OrderRef:      extracted.OrderRef,
	}

	pdfOut, filename, err := s.composer.Compose(data)
	if err != nil {
		return nil, err
	}

	key := "certificates/" + filename
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(pdfOut),
		ContentType: "application/pdf",
	}); err != nil {
		return nil, fmt.Errorf("certificateService: uploading %s: %w", filename, err)
	}

	productsJSON, err := json.Marshal(matched)
	if err != nil {
		return nil, fmt.Errorf("certificateService: marshaling products: %w", err)
	}

	cert := &domain.Certificate{
		ID:            uuid.New(),
		InvoiceNumber: id.String(),
		InvoiceDate:   extracted.InvoiceDate,
		ClientName:    extracted.ClientName,
		VATPayer:      extracted.VATPayer,
		Products:      productsJSON,
		OrderRef:      extracted.OrderRef,
		OutputPath:    key,
	}
	if err := s.certRepo.Create(ctx, cert); err != nil {
		return nil, fmt.Errorf("certificateService: persisting %s: %w", id, err)
	}

	log.Printf("certificateService: generated %s for %s (%d matched products)",
		filename, id, len(data.Products))

	result.Certificate = cert
	result.Generated = true
	return result, nil
}

func anyMatched(matched []domain.MatchedProduct) bool {
	for i := range matched {
		if matched[i].Matched {
			return true
		}
	}
	return false
}

func onlyMatched(matched []domain.MatchedProduct) []domain.MatchedProduct {
	var out []domain.MatchedProduct
	for i := range matched {
		if matched[i].Matched {
			out = append(out, matched[i])
		}
	}
	return out
}

func formatVoltage(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%dV", v)
}
