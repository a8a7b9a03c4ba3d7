package invoice

import (
	"regexp"
	"strings"
)

// Markers delimiting the client information sub-section of the document text.
var (
	clientSectionStart = regexp.MustCompile(`(?i)\b(client|cump[aă]r[aă]tor)\b`)
	clientSectionEnd   = regexp.MustCompile(`(?i)\b(denumire\s+produse|produse|total)\b`)

	vatMarkerPattern = regexp.MustCompile(`(?i)pl[aă]titor\s+(?:de\s+)?TVA\s*:?\s*(da|nu)\b`)
	cnpPattern       = regexp.MustCompile(`\b[1-9]\d{12}\b`)
	vatTaxIDPattern  = regexp.MustCompile(`(?i)\bRO\s?(\d{2,10})\b`)
)

// clientSection isolates the client information block, between the client
// label and the products/total marker. Falls back to the whole text when the
// section cannot be located.
func clientSection(text string) string {
	start := clientSectionStart.FindStringIndex(text)
	if start == nil {
		return text
	}
	rest := text[start[1]:]
	if end := clientSectionEnd.FindStringIndex(rest); end != nil {
		return rest[:end[0]]
	}
	return rest
}

// classifyVATPayer decides which warranty table applies. Precedence, most
// authoritative first:
//
//  1. an explicit "Platitor TVA: da/nu" marker in the client section; only
//     when no client section can be located does the search widen to the
//     whole text (the seller block prints its own payer marker, which must
//     never speak for the client)
//  2. a 13-digit CNP in the client section means an individual, not a payer
//  3. an RO-prefixed tax id in the client section, other than the seller's
//     own, means a VAT-registered company
//  4. default: not a payer (the longer warranty term, the safer default)
func classifyVATPayer(text, sellerTaxID string) bool {
	// clientSection falls back to the whole text when it cannot locate the
	// section, so this one search covers both scopes.
	section := clientSection(text)

	if m := vatMarkerPattern.FindStringSubmatch(section); m != nil {
		return strings.EqualFold(m[1], "da")
	}

	if cnpPattern.MatchString(section) {
		return false
	}

	sellerDigits := digitsOnly(sellerTaxID)
	for _, m := range vatTaxIDPattern.FindAllStringSubmatch(section, -1) {
		if m[1] != sellerDigits {
			return true
		}
	}

	return false
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
