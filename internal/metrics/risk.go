package metrics

import (
	"math"

	"trade-journal/internal/models"
)

// DefaultRiskFreeRate is subtracted from the mean per-trade return when
// computing the Sharpe ratio.
const DefaultRiskFreeRate = 0.02

// PnLSeries extracts the realized P&L of each closed trade, in input order.
func PnLSeries(closed []models.Trade) []float64 {
	pnls := make([]float64, len(closed))
	for i, t := range closed {
		pnls[i] = CalculatePnL(t)
	}
	return pnls
}

// ReferenceCapital returns the capital figure used to convert P&L values into
// returns: the capital of the first closed trade, or the default when absent.
func ReferenceCapital(closed []models.Trade) float64 {
	if len(closed) > 0 && closed[0].Capital > 0 && isFinite(closed[0].Capital) {
		return closed[0].Capital
	}
	return models.DefaultCapital
}

// SharpeRatio computes (mean(returns) - riskFreeRate) / stddev(returns) using
// the population standard deviation, where returns = pnl / referenceCapital.
// Returns 0 when the deviation is 0: a flat series has no meaningful ratio,
// and divide-by-zero is not an error condition here.
func SharpeRatio(pnls []float64, referenceCapital, riskFreeRate float64) float64 {
	if len(pnls) == 0 || referenceCapital <= 0 {
		return 0
	}

	returns := make([]float64, len(pnls))
	var mean float64
	for i, pnl := range pnls {
		returns[i] = pnl / referenceCapital
		mean += returns[i]
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	stdDev := math.Sqrt(variance)

	if stdDev == 0 {
		return 0
	}
	return (mean - riskFreeRate) / stdDev
}

// MaxDrawdown tracks a running peak over the P&L sequence in input order and
// returns the largest observed (peak - value) / peak. 0 for an empty sequence
// or one that never declines from its running peak.
//
// The sequence is deliberately NOT sorted chronologically first: the drawdown
// is computed over whatever order the repository returned, matching the
// long-standing observable behavior. Callers wanting a chronological drawdown
// must sort by close time before calling.
func MaxDrawdown(pnls []float64) float64 {
	if len(pnls) == 0 {
		return 0
	}
	peak := pnls[0]
	maxDD := 0.0
	for _, v := range pnls {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// GrossProfitLoss sums positive P&L entries and the magnitudes of negative
// entries separately, and counts each side.
func GrossProfitLoss(pnls []float64) (grossProfit, grossLoss float64, wins, losses int) {
	for _, pnl := range pnls {
		if pnl > 0 {
			grossProfit += pnl
			wins++
		} else if pnl < 0 {
			grossLoss += -pnl
			losses++
		}
	}
	return grossProfit, grossLoss, wins, losses
}

// ProfitFactor is gross profit divided by gross loss. A loss-free history
// yields the gross profit itself (never infinity); no profit and no loss
// yields 0.
func ProfitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return grossProfit
		}
		return 0
	}
	return grossProfit / grossLoss
}

// LargestWin returns the largest P&L entry, floored at 0 so an all-losing
// history still reports a sensible bound.
func LargestWin(pnls []float64) float64 {
	largest := 0.0
	for _, pnl := range pnls {
		if pnl > largest {
			largest = pnl
		}
	}
	return largest
}

// LargestLoss returns the most negative P&L entry, capped at 0.
func LargestLoss(pnls []float64) float64 {
	largest := 0.0
	for _, pnl := range pnls {
		if pnl < largest {
			largest = pnl
		}
	}
	return largest
}

// AverageWinSize is gross profit per winning trade, 0 when there are no wins.
func AverageWinSize(grossProfit float64, wins int) float64 {
	if wins == 0 {
		return 0
	}
	return grossProfit / float64(wins)
}

// AverageLossSize is gross loss per losing trade (a positive magnitude),
// 0 when there are no losses.
func AverageLossSize(grossLoss float64, losses int) float64 {
	if losses == 0 {
		return 0
	}
	return grossLoss / float64(losses)
}

// RiskRewardRatio is the average win divided by the average loss. With no
// losses it returns the 100 sentinel when wins exist ("undefined but
// favorable"), never infinity.
func RiskRewardRatio(averageWinSize, averageLossSize float64) float64 {
	if averageLossSize == 0 {
		if averageWinSize > 0 {
			return 100
		}
		return 0
	}
	return averageWinSize / averageLossSize
}
