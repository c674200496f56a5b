package models

import (
	"math"
	"strings"
)

// Defaults applied to trades coming off the persistence boundary.
const (
	DefaultCapital        = 10000.0
	DefaultEmotionalState = "neutral"
)

// Normalize applies canonical defaults and repairs inconsistent fields on a
// trade loaded from storage. Every downstream consumer can assume a normalized
// trade: label sets are non-nil, capital and emotional state are defaulted, and
// the status/result/closedAt invariants hold. Called once at the repository
// boundary rather than scattering defaults across call sites.
func Normalize(t Trade) Trade {
	if t.Strategy == nil {
		t.Strategy = []string{}
	}
	if t.Indicators == nil {
		t.Indicators = []string{}
	}
	if t.Mistakes == nil {
		t.Mistakes = []string{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}

	if t.Capital <= 0 || math.IsNaN(t.Capital) || math.IsInf(t.Capital, 0) {
		t.Capital = DefaultCapital
	}
	if strings.TrimSpace(t.EmotionalState) == "" {
		t.EmotionalState = DefaultEmotionalState
	}

	switch t.Type {
	case TradeBuy, TradeSell:
	default:
		// Unknown direction contributes no P&L; keep the raw value so the
		// categorizer routes the trade to the invalid bucket.
	}

	// A trade with closedAt set must be CLOSED; a non-closed trade carries no result.
	if t.ClosedAt != nil && t.Status != StatusClosed {
		t.ClosedAt = nil
	}
	if t.Status != StatusClosed {
		t.Result = ResultUnknown
	}
	if t.Result == "" {
		t.Result = ResultUnknown
	}

	for _, v := range []float64{t.EntryPrice, t.ExitPrice, t.ProfitLoss, t.ProfitLossPercentage} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.EntryPrice = sanitize(t.EntryPrice)
			t.ExitPrice = sanitize(t.ExitPrice)
			t.ProfitLoss = sanitize(t.ProfitLoss)
			t.ProfitLossPercentage = sanitize(t.ProfitLossPercentage)
			break
		}
	}

	return t
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NormalizeAll normalizes a slice of trades in place-order.
func NormalizeAll(trades []Trade) []Trade {
	out := make([]Trade, len(trades))
	for i, t := range trades {
		out[i] = Normalize(t)
	}
	return out
}
