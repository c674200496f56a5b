package metrics

import (
	"math"
	"testing"
	"time"

	"trade-journal/internal/models"
)

func closedTrade(tradeType models.TradeType, entry, exit, qty float64) models.Trade {
	closedAt := time.Now()
	return models.Trade{
		ID:         "t1",
		UserID:     "u1",
		Pair:       "BTC/USDT",
		Type:       tradeType,
		Status:     models.StatusClosed,
		EntryPrice: entry,
		ExitPrice:  exit,
		Quantity:   qty,
		CreatedAt:  closedAt.Add(-time.Hour),
		ClosedAt:   &closedAt,
	}
}

func TestCalculatePnL(t *testing.T) {
	tests := []struct {
		name  string
		trade models.Trade
		want  float64
	}{
		{
			name:  "winning buy",
			trade: closedTrade(models.TradeBuy, 100, 110, 2),
			want:  20,
		},
		{
			name:  "winning sell",
			trade: closedTrade(models.TradeSell, 100, 90, 1),
			want:  10,
		},
		{
			name:  "losing buy",
			trade: closedTrade(models.TradeBuy, 50, 40, 1),
			want:  -10,
		},
		{
			name:  "losing sell",
			trade: closedTrade(models.TradeSell, 50, 60, 1),
			want:  -10,
		},
		{
			name:  "break even",
			trade: closedTrade(models.TradeBuy, 100, 100, 5),
			want:  0,
		},
		{
			name: "open trade contributes nothing",
			trade: models.Trade{
				Type:       models.TradeBuy,
				Status:     models.StatusOpen,
				EntryPrice: 100,
				Quantity:   2,
			},
			want: 0,
		},
		{
			name: "closed with zero exit price",
			trade: models.Trade{
				Type:       models.TradeBuy,
				Status:     models.StatusClosed,
				EntryPrice: 100,
				ExitPrice:  0,
				Quantity:   2,
			},
			want: 0,
		},
		{
			name: "cancelled trade",
			trade: models.Trade{
				Type:       models.TradeBuy,
				Status:     models.StatusCancelled,
				EntryPrice: 100,
				ExitPrice:  110,
				Quantity:   2,
			},
			want: 0,
		},
		{
			name: "unknown direction",
			trade: models.Trade{
				Type:       models.TradeType("SHORT"),
				Status:     models.StatusClosed,
				EntryPrice: 100,
				ExitPrice:  110,
				Quantity:   2,
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePnL(tt.trade)
			if got != tt.want {
				t.Errorf("CalculatePnL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculatePnLStoredValue(t *testing.T) {
	t.Run("non-zero stored pnl is authoritative", func(t *testing.T) {
		trade := closedTrade(models.TradeBuy, 100, 110, 2)
		trade.ProfitLoss = 42.5
		if got := CalculatePnL(trade); got != 42.5 {
			t.Errorf("CalculatePnL() = %v, want stored 42.5", got)
		}
	})

	t.Run("stored pnl is rounded to two decimals", func(t *testing.T) {
		trade := closedTrade(models.TradeBuy, 100, 110, 2)
		trade.ProfitLoss = 42.5678
		if got := CalculatePnL(trade); got != 42.57 {
			t.Errorf("CalculatePnL() = %v, want 42.57", got)
		}
	})

	t.Run("stored zero falls through to computation", func(t *testing.T) {
		trade := closedTrade(models.TradeBuy, 100, 110, 2)
		trade.ProfitLoss = 0
		if got := CalculatePnL(trade); got != 20 {
			t.Errorf("CalculatePnL() = %v, want computed 20", got)
		}
	})

	t.Run("stored NaN falls through to computation", func(t *testing.T) {
		trade := closedTrade(models.TradeBuy, 100, 110, 2)
		trade.ProfitLoss = math.NaN()
		if got := CalculatePnL(trade); got != 20 {
			t.Errorf("CalculatePnL() = %v, want computed 20", got)
		}
	})
}

func TestCalculatePnLDataQuality(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Trade)
	}{
		{"NaN entry price", func(tr *models.Trade) { tr.EntryPrice = math.NaN() }},
		{"infinite exit price", func(tr *models.Trade) { tr.ExitPrice = math.Inf(1) }},
		{"negative entry price", func(tr *models.Trade) { tr.EntryPrice = -100 }},
		{"zero quantity", func(tr *models.Trade) { tr.Quantity = 0 }},
		{"negative quantity", func(tr *models.Trade) { tr.Quantity = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trade := closedTrade(models.TradeBuy, 100, 110, 2)
			tt.mutate(&trade)
			if got := CalculatePnL(trade); got != 0 {
				t.Errorf("CalculatePnL() = %v, want 0 for malformed input", got)
			}
		})
	}
}

func TestPnLPercentage(t *testing.T) {
	trade := closedTrade(models.TradeBuy, 100, 110, 2)
	// pnl 20 on cost 200
	if got := PnLPercentage(trade); got != 10 {
		t.Errorf("PnLPercentage() = %v, want 10", got)
	}

	open := models.Trade{Type: models.TradeBuy, Status: models.StatusOpen, EntryPrice: 100, Quantity: 2}
	if got := PnLPercentage(open); got != 0 {
		t.Errorf("PnLPercentage() on open trade = %v, want 0", got)
	}
}

func TestResultFor(t *testing.T) {
	tests := []struct {
		name  string
		trade models.Trade
		want  models.TradeResult
	}{
		{"win", closedTrade(models.TradeBuy, 100, 110, 1), models.ResultWin},
		{"loss", closedTrade(models.TradeBuy, 100, 90, 1), models.ResultLoss},
		{"breakeven", closedTrade(models.TradeSell, 100, 100, 1), models.ResultBreakeven},
		{"open is unknown", models.Trade{Type: models.TradeBuy, Status: models.StatusOpen, EntryPrice: 100, Quantity: 1}, models.ResultUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResultFor(tt.trade); got != tt.want {
				t.Errorf("ResultFor() = %v, want %v", got, tt.want)
			}
		})
	}
}
