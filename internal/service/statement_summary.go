package service

import (
	"strings"

	"statement-reader/internal/domain"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const (
	typeColumn      = "Type"
	amountColumn    = "Amount"
	unspecifiedType = "Unspecified"
)

// amountNoise is stripped from an Amount cell before it is parsed.
var amountNoise = strings.NewReplacer(
	"₹", "", "Rs.", "", "Rs", "", "INR", "",
	"$", "", "€", "", "£", "",
	",", "", " ", "", "\n", "", "\u00a0", "",
)

// StatementSummarizer totals the Amount column per Type value.
type StatementSummarizer struct {
	currency string
}

// NewStatementSummarizer creates a summarizer formatting totals in currency.
func NewStatementSummarizer(currency string) *StatementSummarizer {
	return &StatementSummarizer{currency: strings.ToUpper(currency)}
}

// Summarize groups rows by Type in first-seen order. Rows whose amount does
// not parse are counted as skipped. A table without Type or Amount columns
// yields no totals.
func (s *StatementSummarizer) Summarize(table *domain.Table) *domain.Summary {
	summary := &domain.Summary{
		Rows:     len(table.Rows),
		Currency: s.currency,
		Totals:   []domain.TypeTotal{},
	}

	ti, ai := table.ColumnIndex(typeColumn), table.ColumnIndex(amountColumn)
	if ti < 0 || ai < 0 {
		summary.SkippedRows = len(table.Rows)
		return summary
	}

	type bucket struct {
		count int
		sum   decimal.Decimal
	}
	buckets := make(map[string]*bucket)
	var order []string

	for _, row := range table.Rows {
		amount, ok := parseAmount(row.Cell(ai))
		if !ok {
			summary.SkippedRows++
			continue
		}
		kind := strings.TrimSpace(row.Cell(ti))
		if kind == "" {
			kind = unspecifiedType
		}
		b, seen := buckets[kind]
		if !seen {
			b = &bucket{}
			buckets[kind] = b
			order = append(order, kind)
		}
		b.count++
		b.sum = b.sum.Add(amount)
		summary.ParsedRows++
	}

	for _, kind := range order {
		b := buckets[kind]
		summary.Totals = append(summary.Totals, domain.TypeTotal{
			Type:    kind,
			Count:   b.count,
			Amount:  b.sum.StringFixed(2),
			Display: s.display(b.sum),
		})
	}
	return summary
}

// display formats amount in the configured currency, falling back to a plain
// decimal for codes go-money does not know.
func (s *StatementSummarizer) display(amount decimal.Decimal) string {
	cur := money.GetCurrency(s.currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + s.currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// parseAmount reads a statement amount such as "₹1,250.50" or "- 40".
func parseAmount(cell string) (decimal.Decimal, bool) {
	cleaned := amountNoise.Replace(strings.TrimSpace(cell))
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
