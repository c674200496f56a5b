// Package metrics derives performance analytics from a raw trade log.
// Everything in this package is a pure computation over in-memory trades:
// no I/O, no shared state, deterministic for a given input.
package metrics

import (
	"math"

	"trade-journal/internal/models"
)

// CalculatePnL computes the realized profit or loss for a single trade.
//
// Open, pending, or cancelled trades contribute no realized P&L and return 0,
// as does a closed trade with a missing exit price. A non-zero finite stored
// ProfitLoss is treated as authoritative (rounded to 2 decimal places) to avoid
// drift between write-time and read-time computation; a stored zero is never
// trusted because it is indistinguishable from "not computed". Malformed
// numeric inputs yield 0 rather than an error: bad historical data must not
// break analytics.
func CalculatePnL(t models.Trade) float64 {
	if t.Status != models.StatusClosed || t.ExitPrice == 0 {
		return 0
	}

	if t.ProfitLoss != 0 && isFinite(t.ProfitLoss) {
		return round2(t.ProfitLoss)
	}

	if !validPrice(t.EntryPrice) || !validPrice(t.ExitPrice) || !validPrice(t.Quantity) {
		return 0
	}

	switch t.Type {
	case models.TradeBuy:
		return (t.ExitPrice - t.EntryPrice) * t.Quantity
	case models.TradeSell:
		return (t.EntryPrice - t.ExitPrice) * t.Quantity
	default:
		return 0
	}
}

// PnLPercentage computes the realized P&L as a percentage of position cost.
// Returns 0 for trades that carry no realized P&L.
func PnLPercentage(t models.Trade) float64 {
	pnl := CalculatePnL(t)
	if pnl == 0 {
		return 0
	}
	cost := t.EntryPrice * t.Quantity
	if !validPrice(cost) {
		return 0
	}
	return pnl / cost * 100
}

// ResultFor maps a trade's realized P&L to its stored result value.
// Non-closed trades always map to UNKNOWN.
func ResultFor(t models.Trade) models.TradeResult {
	if !t.IsClosed() {
		return models.ResultUnknown
	}
	pnl := CalculatePnL(t)
	switch {
	case pnl > 0:
		return models.ResultWin
	case pnl < 0:
		return models.ResultLoss
	default:
		return models.ResultBreakeven
	}
}

func validPrice(v float64) bool {
	return v > 0 && isFinite(v)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
