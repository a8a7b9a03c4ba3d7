package invoice

import (
	"regexp"
	"strings"
)

// fieldRule is one named extraction rule: a pure regex applied to the raw
// document text. Rules for a field are evaluated in declaration order and the
// first match wins; results are never merged across rules.
type fieldRule struct {
	name string
	re   *regexp.Regexp
	// pick builds the field value from the submatches. Nil means "group 1".
	pick func(m []string) string
}

func (r fieldRule) apply(text string) (string, bool) {
	m := r.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	if r.pick != nil {
		return strings.TrimSpace(r.pick(m)), true
	}
	return strings.TrimSpace(m[1]), true
}

// firstMatch evaluates rules in order and returns the first value found,
// along with the name of the rule that produced it.
func firstMatch(rules []fieldRule, text string) (value, rule string) {
	for _, r := range rules {
		if v, ok := r.apply(text); ok {
			return v, r.name
		}
	}
	return "", ""
}

// invoiceNumberRules recover the invoice number. The label-anchored
// series+number form is preferred; permissive forms only apply when the
// issuer's template dropped the "seria ... nr ..." line.
var invoiceNumberRules = []fieldRule{
	{
		name: "seria-nr",
		re:   regexp.MustCompile(`(?i)seria\s+([A-Z0-9]+)[,\s]+nr\.?\s*:?\s*(\d+)`),
		pick: func(m []string) string { return m[1] + m[2] },
	},
	{
		name: "factura-nr",
		re:   regexp.MustCompile(`(?i)factura\s+nr\.?\s*:?\s*([A-Z]{0,5}[\s\-]?\d{4,12})`),
	},
	{
		name: "numar-factura",
		re:   regexp.MustCompile(`(?i)num[aă]r\s+factur[aă]\s*:?\s*([A-Z0-9\-]{3,20})`),
	},
}

// invoiceDateRules recover the issue date in dd.mm.yyyy-like forms.
var invoiceDateRules = []fieldRule{
	{
		name: "data-emiterii",
		re:   regexp.MustCompile(`(?i)data\s+emiterii\s*:?\s*(\d{1,2}[./-]\d{1,2}[./-]\d{4})`),
	},
	{
		name: "din-data",
		re:   regexp.MustCompile(`(?i)\bdin\s+(?:data\s+(?:de\s+)?)?(\d{1,2}[./-]\d{1,2}[./-]\d{4})`),
	},
	{
		name: "first-date",
		re:   regexp.MustCompile(`(\d{1,2}[./-]\d{1,2}[./-]\d{4})`),
	},
}

// clientNameRules recover the client name from its label line.
var clientNameRules = []fieldRule{
	{
		name: "client-label",
		re:   regexp.MustCompile(`(?i)\bclient\s*:\s*([^\n]+)`),
	},
	{
		name: "cumparator-label",
		re:   regexp.MustCompile(`(?i)\bcump[aă]r[aă]tor\s*:?\s*([^\n]+)`),
	},
}

// taxIDRules recover the client's fiscal identifier: company CUI/CIF, or the
// 13-digit personal CNP for individuals.
var taxIDRules = []fieldRule{
	{
		name: "cui",
		re:   regexp.MustCompile(`(?i)\bC\.?U\.?I\.?\s*:?\s*(RO\s?\d{2,10}|\d{2,10})`),
	},
	{
		name: "cif",
		re:   regexp.MustCompile(`(?i)\bC\.?I\.?F\.?\s*:?\s*(RO\s?\d{2,10}|\d{2,10})`),
	},
	{
		name: "cnp",
		re:   regexp.MustCompile(`(?i)\bCNP\s*:?\s*(\d{13})`),
	},
}

// totalValueRules recover the invoice total.
var totalValueRules = []fieldRule{
	{
		name: "total-de-plata",
		re:   regexp.MustCompile(`(?i)total\s+de\s+plat[aă]\s*:?\s*([\d.,]+)`),
	},
	{
		name: "total",
		re:   regexp.MustCompile(`(?i)\btotal\s*:?\s*([\d.,]+)`),
	},
}

// orderRefRules recover the marketplace order reference printed on invoices
// issued for marketplace sales.
var orderRefRules = []fieldRule{
	{
		name: "comanda-emag",
		re:   regexp.MustCompile(`(?i)comanda\s+emag\s*:?\s*#?\s*(\d{6,12})`),
	},
	{
		name: "comanda",
		re:   regexp.MustCompile(`(?i)\bcomanda\s*(?:nr\.?)?\s*:?\s*#?\s*(\d{6,12})`),
	},
}
