// Package renderer formats ledgers and catalogs as markdown for the terminal.
package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"fifostock/internal/core/types"
	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/domain/reports"
)

// Terminal renders markdown with the style picked from the terminal background.
// It falls back to the raw markdown when rendering fails.
func Terminal(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func num(d decimal.Decimal) string {
	return fmt.Sprint(types.Truncate(d))
}

// blank hides zero amounts so in and out columns read like a ledger.
func blank(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return num(d)
}

func stockColumn(stock []reports.Position, field func(reports.Position) decimal.Decimal) string {
	parts := make([]string, 0, len(stock))
	for _, p := range stock {
		parts = append(parts, num(field(p)))
	}
	return strings.Join(parts, "<br>")
}

// LedgerMarkdown renders the FIFO ledger of one item.
func LedgerMarkdown(l *reports.ItemLedger) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s (%s)\n\n", l.ItemCode, l.Name, l.Unit)

	s := l.Summary
	if !s.OpeningQty.IsZero() || !s.OpeningBalance.IsZero() {
		fmt.Fprintf(&b, "Opening: %s %s, balance %s\n\n", num(s.OpeningQty), l.Unit, num(s.OpeningBalance))
	}

	fmt.Fprintln(&b, "| Date | Code | Description | In Qty | In Price | In Total | Out Qty | Out Price | Out Total | Stock Qty | Stock Price | Stock Total | Balance Qty | Balance |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|")
	for _, r := range l.Rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			r.Date.Format(types.ReportDateLayout),
			r.Code,
			r.Description,
			blank(r.InQty), blank(r.InPrice), blank(r.InTotal),
			blank(r.OutQty), blank(r.OutPrice), blank(r.OutTotal),
			stockColumn(r.Stock, func(p reports.Position) decimal.Decimal { return p.Quantity }),
			stockColumn(r.Stock, func(p reports.Position) decimal.Decimal { return p.Price }),
			stockColumn(r.Stock, func(p reports.Position) decimal.Decimal { return p.Total }),
			num(r.BalanceQty),
			num(r.Balance),
		)
	}

	fmt.Fprintf(&b, "\n**In:** %s  **Out:** %s  **Closing:** %s %s, balance %s\n",
		num(s.InQty), num(s.OutQty), num(s.BalanceQty), l.Unit, num(s.Balance))
	return b.String()
}

// ItemsMarkdown renders a page of items with their cached ledgers.
func ItemsMarkdown(res []*item.Item, total int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Items (%d of %d)\n\n", len(res), total)
	fmt.Fprintln(&b, "| Code | Name | Unit | Stock | Balance |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|")
	for _, it := range res {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			it.Code, it.Name, it.Unit, it.Stock.String(), it.Balance.String())
	}
	return b.String()
}

// CheckMarkdown renders the outcome of a ledger audit.
func CheckMarkdown(r inventory.CheckReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Ledger audit\n\n%d items checked, %d faults\n", r.Checked, len(r.Faults))
	if len(r.Faults) == 0 {
		return b.String()
	}
	fmt.Fprintln(&b)
	for _, f := range r.Faults {
		fmt.Fprintf(&b, "- %v\n", f)
	}
	return b.String()
}

// Movement is one audited purchase or sale line.
type Movement struct {
	At        time.Time
	RequestID string
	Entry     inventory.AuditEntry
}

// MovementsMarkdown renders the audit trail of an item, newest first.
func MovementsMarkdown(itemCode string, moves []Movement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Movements of %s\n\n", itemCode)
	fmt.Fprintln(&b, "| Recorded | Kind | Document | Quantity | Cost | Lots | Stock after | Balance after | Request |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|---:|---:|:---|")
	for _, m := range moves {
		e := m.Entry
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d | %s | %s | %s |\n",
			m.At.UTC().Format(time.RFC3339),
			e.Kind,
			e.DocumentCode,
			e.Quantity.String(),
			e.Cost.String(),
			len(e.Takes),
			e.After.Stock.String(),
			e.After.Balance.String(),
			m.RequestID,
		)
	}
	return b.String()
}
