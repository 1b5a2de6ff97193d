// Package docparse extracts cost line items from uploaded contractor
// documents. Two line-oriented formats are supported: CSV with a header row,
// and plain text with one priced item per line.
package docparse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"chargemodel/internal/model"
)

// MaxDocumentBytes caps upload size; contractor quotes are small.
const MaxDocumentBytes = 1 << 20

var (
	ErrNoLineItems = errors.New("no cost line items found in document")
	ErrTooLarge    = errors.New("document exceeds size limit")
)

// Parse extracts line items, choosing the parser by file extension
// (.csv => CSV, anything else => plain text).
func Parse(filename string, r io.Reader) ([]model.CostLineItem, error) {
	limited := io.LimitReader(r, MaxDocumentBytes+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if len(raw) > MaxDocumentBytes {
		return nil, ErrTooLarge
	}

	var items []model.CostLineItem
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		items, err = parseCSV(raw)
	} else {
		items, err = parseText(raw)
	}
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoLineItems
	}
	return items, nil
}

// Header aliases seen across contractor spreadsheets.
var headerAliases = map[string]string{
	"label":       "label",
	"item":        "label",
	"description": "label",
	"line item":   "label",
	"quantity":    "quantity",
	"qty":         "quantity",
	"unit cost":   "unit_cost",
	"unit_cost":   "unit_cost",
	"unit price":  "unit_cost",
	"unit_price":  "unit_cost",
	"price":       "unit_cost",
	"total":       "total",
	"amount":      "total",
	"total cost":  "total",
	"category":    "category",
	"type":        "category",
}

func parseCSV(raw []byte) ([]model.CostLineItem, error) {
	reader := csv.NewReader(strings.NewReader(string(raw)))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, h := range records[0] {
		if canonical, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, taken := cols[canonical]; !taken {
				cols[canonical] = i
			}
		}
	}
	if _, ok := cols["label"]; !ok {
		return nil, errors.New("CSV missing a label/item/description column")
	}

	var items []model.CostLineItem
	for _, rec := range records[1:] {
		label := strings.TrimSpace(field(rec, cols, "label"))
		if label == "" {
			continue
		}
		item := model.CostLineItem{
			Label:    label,
			Quantity: parseMoney(field(rec, cols, "quantity")),
			UnitCost: parseMoney(field(rec, cols, "unit_cost")),
			Total:    parseMoney(field(rec, cols, "total")),
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		if item.Total == 0 {
			item.Total = item.Quantity * item.UnitCost
		}
		if item.UnitCost == 0 && item.Quantity != 0 {
			item.UnitCost = item.Total / item.Quantity
		}
		if item.Total == 0 {
			continue
		}
		item.Category = categorize(field(rec, cols, "category"), label)
		items = append(items, item)
	}
	return items, nil
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// Plain-text lines look like:
//
//	Trenching and conduit ........ $42,000.00
//	DC fast charger qty 4 @ $95,000 ... $380,000
//
// Lines without a dollar amount are skipped.
var (
	moneyRe = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	qtyRe   = regexp.MustCompile(`(?i)\bqty\.?\s+([0-9]+(?:\.[0-9]+)?)\s*@`)
)

func parseText(raw []byte) ([]model.CostLineItem, error) {
	var items []model.CostLineItem
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		moneyMatches := moneyRe.FindAllStringSubmatchIndex(line, -1)
		if len(moneyMatches) == 0 {
			continue
		}

		last := moneyMatches[len(moneyMatches)-1]
		total := parseMoney(line[last[2]:last[3]])
		if total == 0 {
			continue
		}

		item := model.CostLineItem{Quantity: 1, UnitCost: total, Total: total}

		labelEnd := moneyMatches[0][0]
		if qm := qtyRe.FindStringSubmatchIndex(line); qm != nil {
			item.Quantity = parseMoney(line[qm[2]:qm[3]])
			if qm[0] < labelEnd {
				labelEnd = qm[0]
			}
			if item.Quantity != 0 {
				item.UnitCost = total / item.Quantity
			}
		}

		item.Label = strings.TrimRight(strings.TrimSpace(line[:labelEnd]), ".-: \t")
		if item.Label == "" {
			continue
		}
		item.Category = categorize("", item.Label)
		items = append(items, item)
	}
	return items, nil
}

// parseMoney reads a number, tolerating "$", thousands separators and
// surrounding space. Unparseable input is 0.
func parseMoney(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

var (
	capitalKeywords   = []string{"charger", "install", "trench", "conduit", "transformer", "switchgear", "permit", "electrical", "civil", "equipment"}
	operatingKeywords = []string{"maintenance", "network", "subscription", "warranty", "monitoring", "service plan", "insurance"}
)

// categorize maps an explicit category column if present, else infers from
// the label.
func categorize(explicit, label string) model.CostCategory {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case "capital", "capex":
		return model.CategoryCapital
	case "operating", "opex", "operations":
		return model.CategoryOperating
	}

	lower := strings.ToLower(label)
	for _, kw := range operatingKeywords {
		if strings.Contains(lower, kw) {
			return model.CategoryOperating
		}
	}
	for _, kw := range capitalKeywords {
		if strings.Contains(lower, kw) {
			return model.CategoryCapital
		}
	}
	return model.CategoryOther
}
