// Package match reconciles extracted invoice line items against the local
// product catalog to determine applicable warranty terms.
package match

import (
	"context"
	"fmt"
	"strings"

	"certikid/internal/domain"
	"certikid/internal/invoice"
	"certikid/internal/port"
)

// Reasons reported on unmatched items.
const (
	ReasonNotFound      = "not found"
	ReasonNotConfigured = "not configured"
)

// Matcher looks up extracted line items in the catalog. It is stateless and
// safe for concurrent use; catalog consistency during a concurrent bulk
// update is not guaranteed.
type Matcher struct {
	products port.ProductRepository
}

// NewMatcher creates a Matcher backed by the given catalog repository.
func NewMatcher(products port.ProductRepository) *Matcher {
	return &Matcher{products: products}
}

// Match reconciles items against the catalog. The result has the same length
// and order as the input. vatPayer selects the PJ warranty term over the PF
// one. A catalog hit only counts as a match when the entry is active and
// fully configured; otherwise the item is reported unmatched with a reason.
func (m *Matcher) Match(ctx context.Context, items []invoice.LineItem, vatPayer bool) ([]domain.MatchedProduct, error) {
	if len(items) == 0 {
		return nil, nil
	}

	// The name tiers need the full catalog; load it once per call.
	catalog, err := m.products.GetAll(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("matcher: loading catalog: %w", err)
	}

	matched := make([]domain.MatchedProduct, 0, len(items))
	for i := range items {
		matched = append(matched, m.matchOne(ctx, &items[i], catalog, vatPayer))
	}
	return matched, nil
}

// matchOne applies the tiered lookup, first hit wins: exact code, exact
// case-insensitive name, catalog name contains extracted name, extracted name
// contains catalog name.
func (m *Matcher) matchOne(ctx context.Context, item *invoice.LineItem, catalog []domain.Product, vatPayer bool) domain.MatchedProduct {
	hit := m.lookup(ctx, item, catalog)
	if hit == nil {
		return domain.MatchedProduct{
			Name:     item.Name,
			Quantity: item.Quantity,
			Matched:  false,
			Reason:   ReasonNotFound,
		}
	}

	if !hit.IsActive || hit.NeedsConfiguration {
		return domain.MatchedProduct{
			Code:     hit.Code,
			Name:     hit.Name,
			Quantity: item.Quantity,
			Matched:  false,
			Reason:   ReasonNotConfigured,
		}
	}

	months := hit.WarrantyMonthsPF
	if vatPayer {
		months = hit.WarrantyMonthsPJ
	}
	return domain.MatchedProduct{
		Code:           hit.Code,
		Name:           hit.Name,
		WarrantyMonths: months,
		Quantity:       item.Quantity,
		Matched:        true,
	}
}

func (m *Matcher) lookup(ctx context.Context, item *invoice.LineItem, catalog []domain.Product) *domain.Product {
	if item.Code != "" {
		// The extracted code is a best-effort guess; on any lookup failure
		// the name tiers below still apply.
		if p, err := m.products.GetByCode(ctx, item.Code); err == nil {
			return p
		}
	}

	name := strings.ToLower(strings.TrimSpace(item.Name))
	if name == "" {
		return nil
	}

	for i := range catalog {
		if strings.EqualFold(catalog[i].Name, item.Name) {
			return &catalog[i]
		}
	}
	for i := range catalog {
		if strings.Contains(strings.ToLower(catalog[i].Name), name) {
			return &catalog[i]
		}
	}
	for i := range catalog {
		catName := strings.ToLower(strings.TrimSpace(catalog[i].Name))
		if catName != "" && strings.Contains(name, catName) {
			return &catalog[i]
		}
	}
	return nil
}

// MinVoltage returns the lowest nonzero min_voltage among the catalog entries
// of the matched products, for the certificate's minimum-voltage field. Zero
// means unknown.
func (m *Matcher) MinVoltage(ctx context.Context, matched []domain.MatchedProduct) int {
	minV := 0
	for i := range matched {
		if !matched[i].Matched || matched[i].Code == "" {
			continue
		}
		p, err := m.products.GetByCode(ctx, matched[i].Code)
		if err != nil || p.MinVoltage == 0 {
			continue
		}
		if minV == 0 || p.MinVoltage < minV {
			minV = p.MinVoltage
		}
	}
	return minV
}
