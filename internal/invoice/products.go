package invoice

import (
	"regexp"
	"strings"
)

// LineItem is a product line recovered from the document text. Code is a
// best-effort guess (catalog code or EAN), not authoritative.
type LineItem struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

const (
	// maxContinuationLines bounds how many wrapped description lines are
	// appended after an anchor line.
	maxContinuationLines = 4

	// minDescriptionLen rejects noise candidates (stray header fragments,
	// unit labels) that happen to contain a category token.
	minDescriptionLen = 15
)

var (
	brandTokenPattern = regexp.MustCompile(`(?i)\bPREMIER\b`)

	categoryTokenPattern = regexp.MustCompile(
		`(?i)\b(masinut[aă]|motociclet[aă]|ATV|UTV|trotinet[aă]|kart|tractor|buggy)\b`)

	voltageTokenPattern = regexp.MustCompile(`(?i)\b\d{1,2}\s?V\b`)

	colorTokenPattern = regexp.MustCompile(
		`(?i)\b(alb[aă]?|negru|neagr[aă]|ro[sș]u|ro[sș]ie|albastr[au]|roz|verde|galben[aă]?|portocaliu|gri|maro|mov|vi[sș]iniu)\b`)

	// A terminating line is a pure price/quantity/total row that follows the
	// wrapped description in the rendered layout.
	terminatorLinePattern = regexp.MustCompile(
		`(?i)^\s*(?:total\b.*|[\d.,]+\s*(?:lei|ron)?|\d+\s*(?:buc|x)\b.*)\s*$`)

	productCodePattern = regexp.MustCompile(`\b(PK-?\d{3,5}|\d{13})\b`)
	quantityPattern    = regexp.MustCompile(`(?i)(\d+)\s*buc\b|x\s*(\d+)\b`)
)

// isProductAnchor reports whether a line starts a product description: it
// must carry both the brand token and an equipment category token.
func isProductAnchor(line string) bool {
	return brandTokenPattern.MatchString(line) && categoryTokenPattern.MatchString(line)
}

// descriptionComplete reports whether the accumulated text already holds both
// a voltage token and a color token, the signal of a full description.
func descriptionComplete(s string) bool {
	return voltageTokenPattern.MatchString(s) && colorTokenPattern.MatchString(s)
}

// extractLineItems scans the text line by line for product descriptions.
// From each anchor line it greedily appends wrapped continuation lines until
// a terminating row, another anchor, the continuation bound, or a complete
// description is reached. Candidates are deduplicated by case-normalized text
// and noise below minDescriptionLen is discarded.
func extractLineItems(text string) []LineItem {
	lines := strings.Split(text, "\n")

	var items []LineItem
	seen := make(map[string]bool)

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !isProductAnchor(line) {
			continue
		}

		desc := line
		appended := 0
		for j := i + 1; j < len(lines) && appended < maxContinuationLines; j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" || terminatorLinePattern.MatchString(next) || isProductAnchor(next) {
				break
			}
			desc = desc + " " + next
			appended++
			i = j
			if descriptionComplete(desc) {
				break
			}
		}

		key := strings.ToLower(desc)
		if seen[key] || len(desc) < minDescriptionLen {
			continue
		}
		seen[key] = true

		items = append(items, LineItem{
			Code:     firstSubmatch(productCodePattern, desc),
			Name:     cleanDescription(desc),
			Quantity: extractQuantity(desc),
		})
	}

	return items
}

// cleanDescription strips trailing price/quantity fragments left on the
// anchor line by the rendered layout.
func cleanDescription(desc string) string {
	if loc := quantityPattern.FindStringIndex(desc); loc != nil {
		desc = desc[:loc[0]]
	}
	return strings.Trim(strings.TrimSpace(desc), ",;")
}

func extractQuantity(desc string) int {
	m := quantityPattern.FindStringSubmatch(desc)
	if m == nil {
		return 1
	}
	for _, g := range m[1:] {
		if g != "" {
			if n := atoiSafe(g); n > 0 {
				return n
			}
		}
	}
	return 1
}

func firstSubmatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
