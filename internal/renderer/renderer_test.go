package renderer_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/domain/reports"
	"fifostock/internal/renderer"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLedgerMarkdown(t *testing.T) {
	ledger := &reports.ItemLedger{
		ItemCode: "ITEM001",
		Name:     "Widget",
		Unit:     "pcs",
		Rows: []reports.Row{
			{
				Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Code: "P-1", Description: "first buy",
				InQty: d("10"), InPrice: d("10"), InTotal: d("100"),
				Stock:      []reports.Position{{Quantity: d("10"), Price: d("10"), Total: d("100")}},
				BalanceQty: d("10"), Balance: d("100"),
			},
			{
				Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Code: "S-1", Description: "sale",
				OutQty: d("4"), OutPrice: d("10"), OutTotal: d("40"),
				Stock:      []reports.Position{{Quantity: d("6"), Price: d("10"), Total: d("60")}},
				BalanceQty: d("6"), Balance: d("60"),
			},
		},
		Summary: reports.Summary{InQty: d("10"), OutQty: d("4"), BalanceQty: d("6"), Balance: d("60")},
	}

	md := renderer.LedgerMarkdown(ledger)

	lines := strings.Split(md, "\n")
	assert.Equal(t, "# ITEM001 Widget (pcs)", lines[0])
	assert.Contains(t, md, "| 01-03-2024 | P-1 | first buy | 10 | 10 | 100 |  |  |  | 10 | 10 | 100 | 10 | 100 |")
	assert.Contains(t, md, "| 02-03-2024 | S-1 | sale |  |  |  | 4 | 10 | 40 | 6 | 10 | 60 | 6 | 60 |")
	assert.Contains(t, md, "**Closing:** 6 pcs, balance 60")
	assert.NotContains(t, md, "Opening:")
}

func TestLedgerMarkdown_OpeningAndSplitStock(t *testing.T) {
	ledger := &reports.ItemLedger{
		ItemCode: "ITEM002",
		Rows: []reports.Row{{
			Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Code: "P-2",
			InQty: d("5"), InPrice: d("12.7"), InTotal: d("63.5"),
			Stock: []reports.Position{
				{Quantity: d("20"), Price: d("10"), Total: d("200")},
				{Quantity: d("5"), Price: d("12.7"), Total: d("63.5")},
			},
			BalanceQty: d("25"), Balance: d("263.5"),
		}},
		Summary: reports.Summary{OpeningQty: d("20"), OpeningBalance: d("200")},
	}

	md := renderer.LedgerMarkdown(ledger)

	assert.Contains(t, md, "Opening: 20 , balance 200")
	assert.Contains(t, md, "| 20<br>5 | 10<br>12 | 200<br>63 | 25 | 263 |")
}

func TestItemsMarkdown(t *testing.T) {
	it := item.NewItem("ITEM001", "Widget", "pcs", "")
	it.Stock = d("2.5")
	it.Balance = d("25")

	md := renderer.ItemsMarkdown([]*item.Item{it}, 7)

	assert.Contains(t, md, "# Items (1 of 7)")
	assert.Contains(t, md, "| ITEM001 | Widget | pcs | 2.5 | 25 |")
}

func TestCheckMarkdown(t *testing.T) {
	clean := renderer.CheckMarkdown(inventory.CheckReport{Checked: 3})
	assert.Contains(t, clean, "3 items checked, 0 faults")

	faulty := renderer.CheckMarkdown(inventory.CheckReport{
		Checked: 2,
		Faults:  []error{errors.New("ITEM009: stock 5 != 4")},
	})
	assert.Contains(t, faulty, "- ITEM009: stock 5 != 4")
}

func TestTerminal(t *testing.T) {
	out := renderer.Terminal("# Title\n\nbody", 80)
	require.NotEmpty(t, out)
	assert.Contains(t, out, "body")
}

func TestMovementsMarkdown(t *testing.T) {
	moves := []renderer.Movement{{
		At:        time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
		RequestID: "req-1",
		Entry: inventory.AuditEntry{
			Kind:         inventory.MovementSale,
			ItemCode:     "ITEM001",
			DocumentCode: "S-1",
			Quantity:     d("15"),
			Cost:         d("160"),
			Takes:        make([]inventory.Take, 2),
			After:        inventory.Ledger{Stock: d("5"), Balance: d("60")},
		},
	}}

	md := renderer.MovementsMarkdown("ITEM001", moves)

	assert.Contains(t, md, "# Movements of ITEM001")
	assert.Contains(t, md, "| 2024-03-02T10:00:00Z | sale | S-1 | 15 | 160 | 2 | 5 | 60 | req-1 |")
}
