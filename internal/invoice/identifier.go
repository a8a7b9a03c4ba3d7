package invoice

import (
	"fmt"
	"regexp"
	"strings"

	"certikid/internal/domain"
)

// DefaultSeries is the series assumed for bare numeric identifiers.
const DefaultSeries = "PK"

// Identifier is the canonical (series, number) form of an invoice identifier.
// Series is uppercase alphabetic, optionally with an embedded 4-digit year.
// Number keeps its digits verbatim, without leading-zero normalization.
type Identifier struct {
	Series string `json:"series"`
	Number string `json:"number"`
}

// String returns the canonical series+number form without separators, as used
// in output filenames and the checkpoint store.
func (id Identifier) String() string {
	return id.Series + id.Number
}

// The four recognized identifier shapes, tried in fixed priority order.
// yearSeriesPattern must run before plainSeriesPattern: a year-bearing series
// is a strict subset of what the plain pattern would also match, and callers
// rely on the more specific split.
var (
	yearSeriesPattern  = regexp.MustCompile(`^([A-Z]{1,5})(20\d{2})(\d{4,6})$`)
	plainSeriesPattern = regexp.MustCompile(`^([A-Z]{2,5})(\d+)$`)
	separatorPattern   = regexp.MustCompile(`^([A-Z0-9]+)[\s.\-]+(\d+)$`)
	numericPattern     = regexp.MustCompile(`^\d+$`)
	separatorChars     = regexp.MustCompile(`[\s.\-]+`)
)

// ParseIdentifier normalizes a free-form invoice identifier string into its
// canonical (series, number) pair using DefaultSeries for bare numbers.
func ParseIdentifier(raw string) (Identifier, error) {
	return ParseIdentifierWithSeries(raw, DefaultSeries)
}

// ParseIdentifierWithSeries is ParseIdentifier with an explicit fallback
// series for purely numeric input. Unparseable input yields an error wrapping
// domain.ErrInvalidIdentifier.
func ParseIdentifierWithSeries(raw, fallbackSeries string) (Identifier, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return Identifier{}, fmt.Errorf("%w: empty input", domain.ErrInvalidIdentifier)
	}

	// Shapes 1 and 2 describe the compact form, so separators are dropped
	// before testing them. Shape 3 needs the separator and tests the raw form.
	compact := separatorChars.ReplaceAllString(s, "")

	if m := yearSeriesPattern.FindStringSubmatch(compact); m != nil {
		return Identifier{Series: m[1] + m[2], Number: m[3]}, nil
	}
	if m := plainSeriesPattern.FindStringSubmatch(compact); m != nil {
		return Identifier{Series: m[1], Number: m[2]}, nil
	}
	if m := separatorPattern.FindStringSubmatch(s); m != nil {
		return Identifier{Series: m[1], Number: m[2]}, nil
	}
	if numericPattern.MatchString(s) {
		return Identifier{Series: fallbackSeries, Number: s}, nil
	}

	return Identifier{}, fmt.Errorf("%w: %q", domain.ErrInvalidIdentifier, raw)
}
