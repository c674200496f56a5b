package metrics

import "trade-journal/internal/models"

// Buckets is a total partition of a trade set: every input trade lands in
// exactly one bucket, in input order.
type Buckets struct {
	Open      []models.Trade
	Winning   []models.Trade
	Losing    []models.Trade
	BreakEven []models.Trade
	Invalid   []models.Trade
}

// Closed returns the union of winning, losing, and break-even trades in input
// order. This is the set every downstream ratio and statistic operates on;
// open and invalid trades are excluded from all of them.
func (b Buckets) Closed() []models.Trade {
	closed := make([]models.Trade, 0, len(b.Winning)+len(b.Losing)+len(b.BreakEven))
	closed = append(closed, b.Winning...)
	closed = append(closed, b.Losing...)
	closed = append(closed, b.BreakEven...)
	return closed
}

// Total returns the number of trades across all buckets.
func (b Buckets) Total() int {
	return len(b.Open) + len(b.Winning) + len(b.Losing) + len(b.BreakEven) + len(b.Invalid)
}

// Categorize partitions trades into open, winning, losing, break-even, and
// invalid buckets. A CLOSED trade with a missing or zero exit price is invalid,
// as are CANCELLED and PENDING trades.
func Categorize(trades []models.Trade) Buckets {
	var b Buckets
	for _, t := range trades {
		switch {
		case t.Status == models.StatusOpen && t.ExitPrice == 0:
			b.Open = append(b.Open, t)
		case t.Status == models.StatusClosed && t.ExitPrice > 0:
			pnl := CalculatePnL(t)
			switch {
			case pnl > 0:
				b.Winning = append(b.Winning, t)
			case pnl < 0:
				b.Losing = append(b.Losing, t)
			default:
				b.BreakEven = append(b.BreakEven, t)
			}
		default:
			b.Invalid = append(b.Invalid, t)
		}
	}
	return b
}
