package dto

import (
	"fifostock/internal/core/types"
	"fifostock/internal/domain/reports"
)

// ReportRequest holds the optional YYYY-MM-DD bounds of a ledger report.
type ReportRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// ToRange parses the bounds.
func (r ReportRequest) ToRange() (reports.DateRange, error) {
	var rng reports.DateRange
	if r.StartDate != "" {
		d, err := types.ParseDate(r.StartDate)
		if err != nil {
			return rng, dateError("start_date", r.StartDate)
		}
		rng.From = &d
	}
	if r.EndDate != "" {
		d, err := types.ParseDate(r.EndDate)
		if err != nil {
			return rng, dateError("end_date", r.EndDate)
		}
		rng.To = &d
	}
	return rng, nil
}

// ReportResponse is the ledger report envelope.
type ReportResponse struct {
	Result ReportResult `json:"result"`
}

// ReportResult is the ledger of one item.
type ReportResult struct {
	Items    []ReportRow   `json:"items"`
	ItemCode string        `json:"item_code"`
	Name     string        `json:"name"`
	Unit     string        `json:"unit"`
	Summary  ReportSummary `json:"summary"`
}

// ReportRow is one ledger line. Amounts are truncated to integers.
type ReportRow struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Code        string  `json:"code"`
	InQty       int64   `json:"in_qty"`
	InPrice     int64   `json:"in_price"`
	InTotal     int64   `json:"in_total"`
	OutQty      int64   `json:"out_qty"`
	OutPrice    int64   `json:"out_price"`
	OutTotal    int64   `json:"out_total"`
	StockQty    []int64 `json:"stock_qty"`
	StockPrice  []int64 `json:"stock_price"`
	StockTotal  []int64 `json:"stock_total"`
	BalanceQty  int64   `json:"balance_qty"`
	Balance     int64   `json:"balance"`
}

// ReportSummary closes the report.
type ReportSummary struct {
	OpeningQty     int64 `json:"opening_qty"`
	OpeningBalance int64 `json:"opening_balance"`
	InQty          int64 `json:"in_qty"`
	OutQty         int64 `json:"out_qty"`
	BalanceQty     int64 `json:"balance_qty"`
	Balance        int64 `json:"balance"`
}

// FromItemLedger renders a reconstructed ledger.
func FromItemLedger(l *reports.ItemLedger) ReportResponse {
	rows := make([]ReportRow, 0, len(l.Rows))
	for _, r := range l.Rows {
		row := ReportRow{
			Date:        r.Date.Format(types.ReportDateLayout),
			Description: r.Description,
			Code:        r.Code,
			InQty:       types.Truncate(r.InQty),
			InPrice:     types.Truncate(r.InPrice),
			InTotal:     types.Truncate(r.InTotal),
			OutQty:      types.Truncate(r.OutQty),
			OutPrice:    types.Truncate(r.OutPrice),
			OutTotal:    types.Truncate(r.OutTotal),
			StockQty:    make([]int64, 0, len(r.Stock)),
			StockPrice:  make([]int64, 0, len(r.Stock)),
			StockTotal:  make([]int64, 0, len(r.Stock)),
			BalanceQty:  types.Truncate(r.BalanceQty),
			Balance:     types.Truncate(r.Balance),
		}
		for _, p := range r.Stock {
			row.StockQty = append(row.StockQty, types.Truncate(p.Quantity))
			row.StockPrice = append(row.StockPrice, types.Truncate(p.Price))
			row.StockTotal = append(row.StockTotal, types.Truncate(p.Total))
		}
		rows = append(rows, row)
	}

	s := l.Summary
	return ReportResponse{Result: ReportResult{
		Items:    rows,
		ItemCode: l.ItemCode,
		Name:     l.Name,
		Unit:     l.Unit,
		Summary: ReportSummary{
			OpeningQty:     types.Truncate(s.OpeningQty),
			OpeningBalance: types.Truncate(s.OpeningBalance),
			InQty:          types.Truncate(s.InQty),
			OutQty:         types.Truncate(s.OutQty),
			BalanceQty:     types.Truncate(s.BalanceQty),
			Balance:        types.Truncate(s.Balance),
		},
	}}
}
