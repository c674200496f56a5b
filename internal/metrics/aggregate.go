package metrics

import (
	"sort"

	"trade-journal/internal/models"
)

// Placeholder rows returned when an aggregation has no data. Consumers expect
// at least one entry, never an empty list.
const (
	noMistakeData   = "No mistakes recorded"
	noStrategyData  = "No strategy data"
	noIndicatorData = "No indicator data"
)

// AggregateMistakes groups closed trades by each recorded mistake label.
// A trade with N mistakes contributes to N groups. Impact is the average P&L
// of trades exhibiting the mistake. Sorted by count descending; ties keep the
// order in which labels first appeared in the input.
func AggregateMistakes(closed []models.Trade) []models.MistakeStat {
	type group struct {
		count int
		pnl   float64
	}
	groups := make(map[string]*group)
	var order []string

	for _, t := range closed {
		pnl := CalculatePnL(t)
		for _, m := range t.Mistakes {
			if m == "" {
				continue
			}
			g, ok := groups[m]
			if !ok {
				g = &group{}
				groups[m] = g
				order = append(order, m)
			}
			g.count++
			g.pnl += pnl
		}
	}

	if len(order) == 0 {
		return []models.MistakeStat{{Description: noMistakeData, Count: 0, Impact: 0}}
	}

	stats := make([]models.MistakeStat, 0, len(order))
	for _, label := range order {
		g := groups[label]
		stats = append(stats, models.MistakeStat{
			Description: label,
			Count:       g.count,
			Impact:      g.pnl / float64(g.count),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})
	return stats
}

// AggregateStrategies groups closed trades by each strategy label and reports
// total P&L and win rate per strategy, sorted by P&L descending.
func AggregateStrategies(closed []models.Trade) []models.StrategyStat {
	type group struct {
		trades int
		wins   int
		pnl    float64
	}
	groups := make(map[string]*group)
	var order []string

	for _, t := range closed {
		pnl := CalculatePnL(t)
		for _, s := range t.Strategy {
			if s == "" {
				continue
			}
			g, ok := groups[s]
			if !ok {
				g = &group{}
				groups[s] = g
				order = append(order, s)
			}
			g.trades++
			g.pnl += pnl
			if pnl > 0 {
				g.wins++
			}
		}
	}

	if len(order) == 0 {
		return []models.StrategyStat{{Strategy: noStrategyData, PnL: 0, WinRate: 0}}
	}

	stats := make([]models.StrategyStat, 0, len(order))
	for _, label := range order {
		g := groups[label]
		stats = append(stats, models.StrategyStat{
			Strategy: label,
			PnL:      g.pnl,
			WinRate:  float64(g.wins) / float64(g.trades) * 100,
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].PnL > stats[j].PnL
	})
	return stats
}

// AggregateIndicators groups closed trades by each indicator label and reports
// usage count and success rate (share of profitable trades), sorted by count
// descending.
func AggregateIndicators(closed []models.Trade) []models.IndicatorStat {
	type group struct {
		count     int
		successes int
	}
	groups := make(map[string]*group)
	var order []string

	for _, t := range closed {
		pnl := CalculatePnL(t)
		for _, ind := range t.Indicators {
			if ind == "" {
				continue
			}
			g, ok := groups[ind]
			if !ok {
				g = &group{}
				groups[ind] = g
				order = append(order, ind)
			}
			g.count++
			if pnl > 0 {
				g.successes++
			}
		}
	}

	if len(order) == 0 {
		return []models.IndicatorStat{{Indicator: noIndicatorData, Count: 0, SuccessRate: 0}}
	}

	stats := make([]models.IndicatorStat, 0, len(order))
	for _, label := range order {
		g := groups[label]
		stats = append(stats, models.IndicatorStat{
			Indicator:   label,
			Count:       g.count,
			SuccessRate: float64(g.successes) / float64(g.count) * 100,
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})
	return stats
}
