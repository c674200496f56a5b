package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trade-journal/internal/models"
)

// genTrade builds a trade generator spanning every status and direction the
// categorizer has to route, including closed trades without exit prices.
func genTrade() gopter.Gen {
	statuses := gen.OneConstOf(
		models.StatusOpen, models.StatusClosed, models.StatusCancelled, models.StatusPending,
	)
	types := gen.OneConstOf(models.TradeBuy, models.TradeSell)

	return gopter.CombineGens(
		statuses,
		types,
		gen.Float64Range(1, 5000),
		gen.Float64Range(0, 5000), // 0 exit price exercises the invalid path
		gen.Float64Range(0.001, 100),
	).Map(func(values []interface{}) models.Trade {
		status := values[0].(models.TradeStatus)
		trade := models.Trade{
			ID:         "prop",
			UserID:     "u1",
			Pair:       "BTC/USDT",
			Type:       values[1].(models.TradeType),
			Status:     status,
			EntryPrice: values[2].(float64),
			ExitPrice:  values[3].(float64),
			Quantity:   values[4].(float64),
			CreatedAt:  time.Now(),
		}
		if status == models.StatusClosed && trade.ExitPrice > 0 {
			closedAt := trade.CreatedAt.Add(time.Hour)
			trade.ClosedAt = &closedAt
		}
		if status == models.StatusOpen {
			trade.ExitPrice = 0
		}
		return trade
	})
}

// Property: every trade lands in exactly one bucket and the bucket sizes sum
// to the input size.
func TestProperty_PartitionTotality(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("bucket sizes sum to input size", prop.ForAll(
		func(trades []models.Trade) bool {
			b := Categorize(trades)
			return b.Total() == len(trades)
		},
		gen.SliceOf(genTrade()),
	))

	properties.TestingRun(t)
}

// Property: for a BUY trade PnL > 0 iff exit > entry; for a SELL trade
// PnL > 0 iff exit < entry.
func TestProperty_PnLSignLaw(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	entryGen := gen.Float64Range(1, 5000)
	exitGen := gen.Float64Range(1, 5000)
	qtyGen := gen.Float64Range(0.001, 100)

	properties.Property("BUY pnl sign follows exit-entry", prop.ForAll(
		func(entry, exit, qty float64) bool {
			trade := closedTrade(models.TradeBuy, entry, exit, qty)
			pnl := CalculatePnL(trade)
			return (pnl > 0) == (exit > entry)
		},
		entryGen, exitGen, qtyGen,
	))

	properties.Property("SELL pnl sign follows entry-exit", prop.ForAll(
		func(entry, exit, qty float64) bool {
			trade := closedTrade(models.TradeSell, entry, exit, qty)
			pnl := CalculatePnL(trade)
			return (pnl > 0) == (exit < entry)
		},
		entryGen, exitGen, qtyGen,
	))

	properties.TestingRun(t)
}

// Property: the win rate of any non-empty closed set stays within [0, 100].
func TestProperty_WinRateBound(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("win rate within [0, 100]", prop.ForAll(
		func(trades []models.Trade) bool {
			b := Categorize(trades)
			closed := b.Closed()
			if len(closed) == 0 {
				return true
			}
			winRate := float64(len(b.Winning)) / float64(len(closed)) * 100
			return winRate >= 0 && winRate <= 100
		},
		gen.SliceOf(genTrade()),
	))

	properties.TestingRun(t)
}

// Property: the profit factor is never negative and never infinite.
func TestProperty_ProfitFactorNonNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("profit factor >= 0 and finite", prop.ForAll(
		func(trades []models.Trade) bool {
			closed := Categorize(trades).Closed()
			grossProfit, grossLoss, _, _ := GrossProfitLoss(PnLSeries(closed))
			pf := ProfitFactor(grossProfit, grossLoss)
			return pf >= 0 && !math.IsInf(pf, 0) && !math.IsNaN(pf)
		},
		gen.SliceOf(genTrade()),
	))

	properties.TestingRun(t)
}

// Property: recomputing over an unchanged trade set yields identical metrics
// within floating tolerance.
func TestProperty_Idempotence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("identical inputs produce identical snapshots", prop.ForAll(
		func(trades []models.Trade) bool {
			closed := Categorize(trades).Closed()
			a := PnLSeries(closed)
			b := PnLSeries(closed)
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if math.Abs(a[i]-b[i]) > 1e-9 {
					return false
				}
			}
			gpA, glA, _, _ := GrossProfitLoss(a)
			gpB, glB, _, _ := GrossProfitLoss(b)
			return math.Abs(ProfitFactor(gpA, glA)-ProfitFactor(gpB, glB)) <= 1e-9 &&
				math.Abs(MaxDrawdown(a)-MaxDrawdown(b)) <= 1e-9 &&
				math.Abs(SharpeRatio(a, models.DefaultCapital, DefaultRiskFreeRate)-
					SharpeRatio(b, models.DefaultCapital, DefaultRiskFreeRate)) <= 1e-9
		},
		gen.SliceOf(genTrade()),
	))

	properties.TestingRun(t)
}
