// Command seedproducts converts the product price-list Excel file into a SQL
// seed file for the products catalog.
// Usage: go run ./cmd/seedproducts [price_list.xlsx]
// Output: db/seeds/products.sql
package main

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const batchSize = 200

type productEntry struct {
	code             string
	name             string
	warrantyPF       int
	warrantyPJ       int
	minVoltage       int
	active           bool
	needsConfiguring bool
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := "price_list.xlsx"
	if len(os.Args) > 1 {
		xlsxPath = os.Args[1]
	}
	outPath := "db/seeds/products.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := parsePriceList(f)
	if err != nil {
		return fmt.Errorf("parse price list: %w", err)
	}
	log.Printf("price list: %d products", len(entries))

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	header := fmt.Sprintf("-- Product catalog seed data generated from %s.\n-- %d products in batches of %d.\nBEGIN;\n\n",
		xlsxPath, len(entries), batchSize)
	if _, err := out.WriteString(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := writeBatch(out, entries[i:end]); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	if _, err := out.WriteString("\nCOMMIT;\n"); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}

	log.Printf("Generated %d products in %s", len(entries), outPath)
	return nil
}

// voltagePattern extracts the battery voltage from a product name, e.g.
// "Masinuta electrica PREMIER Rio, 12V, roti EVA" yields 12.
var voltagePattern = regexp.MustCompile(`\b(\d{1,2})\s?V\b`)

// parsePriceList reads the first sheet of the price list.
// Columns: A(0)=code, B(1)=name, C(2)=warranty months (individuals),
// D(3)=warranty months (companies), E(4)=active flag ("da"/"nu"),
// F(5)=needs configuration flag. Data starts at row index 1 (after header).
func parsePriceList(f *excelize.File) ([]productEntry, error) {
	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var entries []productEntry
	for i := 1; i < len(rows); i++ {
		row := rows[i]

		code := strings.TrimSpace(cellVal(row, 0))
		name := strings.TrimSpace(cellVal(row, 1))
		if code == "" || name == "" {
			continue
		}
		if seen[code] {
			log.Printf("WARN: duplicate product code %s at row %d, skipping", code, i+1)
			continue
		}
		seen[code] = true

		entry := productEntry{
			code:             code,
			name:             name,
			warrantyPF:       atoiOr(cellVal(row, 2), 24),
			warrantyPJ:       atoiOr(cellVal(row, 3), 12),
			active:           parseFlag(cellVal(row, 4), true),
			needsConfiguring: parseFlag(cellVal(row, 5), false),
		}
		if m := voltagePattern.FindStringSubmatch(name); m != nil {
			entry.minVoltage, _ = strconv.Atoi(m[1])
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

func writeBatch(out *os.File, batch []productEntry) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO products (code, name, warranty_months_pf, warranty_months_pj, min_voltage, is_active, needs_configuration) VALUES\n")

	for i := range batch {
		e := &batch[i]
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  ('%s', '%s', %d, %d, %d, %t, %t)",
			escapeSQL(e.code), escapeSQL(e.name),
			e.warrantyPF, e.warrantyPJ, e.minVoltage, e.active, e.needsConfiguring)
	}

	b.WriteString("\nON CONFLICT (code) DO UPDATE SET\n")
	b.WriteString("  name = EXCLUDED.name,\n")
	b.WriteString("  warranty_months_pf = EXCLUDED.warranty_months_pf,\n")
	b.WriteString("  warranty_months_pj = EXCLUDED.warranty_months_pj,\n")
	b.WriteString("  min_voltage = EXCLUDED.min_voltage,\n")
	b.WriteString("  is_active = EXCLUDED.is_active,\n")
	b.WriteString("  needs_configuration = EXCLUDED.needs_configuration;\n")

	_, err := out.WriteString(b.String())
	return err
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// parseFlag reads a yes/no cell in either Romanian or English.
func parseFlag(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "da", "yes", "true", "1":
		return true
	case "nu", "no", "false", "0":
		return false
	default:
		return fallback
	}
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
