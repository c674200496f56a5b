package metrics

import (
	"strings"

	"trade-journal/internal/models"
)

// TimeOfDayBuckets buckets closed trades by the local hour of entry and
// reports trade count and win rate per hour.
func TimeOfDayBuckets(closed []models.Trade) map[int]models.BucketStat {
	type group struct {
		trades int
		wins   int
	}
	groups := make(map[int]*group)

	for _, t := range closed {
		hour := t.CreatedAt.Local().Hour()
		g, ok := groups[hour]
		if !ok {
			g = &group{}
			groups[hour] = g
		}
		g.trades++
		if CalculatePnL(t) > 0 {
			g.wins++
		}
	}

	out := make(map[int]models.BucketStat, len(groups))
	for hour, g := range groups {
		out[hour] = models.BucketStat{
			Trades:  g.trades,
			WinRate: float64(g.wins) / float64(g.trades) * 100,
		}
	}
	return out
}

// EmotionalStateBuckets buckets closed trades by their recorded emotional
// state ("neutral" when absent) and reports count and win rate per state.
func EmotionalStateBuckets(closed []models.Trade) map[string]models.BucketStat {
	type group struct {
		trades int
		wins   int
	}
	groups := make(map[string]*group)

	for _, t := range closed {
		state := t.EmotionalState
		if strings.TrimSpace(state) == "" {
			state = models.DefaultEmotionalState
		}
		g, ok := groups[state]
		if !ok {
			g = &group{}
			groups[state] = g
		}
		g.trades++
		if CalculatePnL(t) > 0 {
			g.wins++
		}
	}

	out := make(map[string]models.BucketStat, len(groups))
	for state, g := range groups {
		out[state] = models.BucketStat{
			Trades:  g.trades,
			WinRate: float64(g.wins) / float64(g.trades) * 100,
		}
	}
	return out
}

// FearGreedScore measures how often winning trades were cut short. An "early
// exit" is a winning trade tagged with a mistake containing "early"
// (case-insensitive). Score = 1 - earlyExitWins/total, clamped to [0,1];
// 0 on empty input.
func FearGreedScore(closed []models.Trade) float64 {
	if len(closed) == 0 {
		return 0
	}
	early := 0
	for _, t := range closed {
		if CalculatePnL(t) <= 0 {
			continue
		}
		for _, m := range t.Mistakes {
			if strings.Contains(strings.ToLower(m), "early") {
				early++
				break
			}
		}
	}
	return clamp01(1 - float64(early)/float64(len(closed)))
}

// ConsistencyScore measures strategy focus: the occurrence count of the single
// most-used strategy label divided by the total trade count, clamped to 1.
func ConsistencyScore(closed []models.Trade) float64 {
	if len(closed) == 0 {
		return 0
	}
	counts := make(map[string]int)
	max := 0
	for _, t := range closed {
		for _, s := range t.Strategy {
			if s == "" {
				continue
			}
			counts[s]++
			if counts[s] > max {
				max = counts[s]
			}
		}
	}
	return clamp01(float64(max) / float64(len(closed)))
}

// TimeManagementScore penalizes overtrading: with avgPerDay the average number
// of trades per distinct calendar day traded, score = min(5/max(avgPerDay,1), 1).
func TimeManagementScore(closed []models.Trade) float64 {
	if len(closed) == 0 {
		return 0
	}
	days := make(map[string]struct{})
	for _, t := range closed {
		days[t.CreatedAt.Local().Format("2006-01-02")] = struct{}{}
	}
	if len(days) == 0 {
		return 0
	}
	avgPerDay := float64(len(closed)) / float64(len(days))
	denom := avgPerDay
	if denom < 1 {
		denom = 1
	}
	return clamp01(5 / denom)
}

// RiskManagementScore is the fraction of trades with a valid capital figure
// whose realized P&L stayed within 2% of that capital.
func RiskManagementScore(closed []models.Trade) float64 {
	valid := 0
	within := 0
	for _, t := range closed {
		if t.Capital <= 0 || !isFinite(t.Capital) {
			continue
		}
		valid++
		pnl := CalculatePnL(t)
		riskPct := pnl / t.Capital * 100
		if riskPct < 0 {
			riskPct = -riskPct
		}
		if riskPct <= 2 {
			within++
		}
	}
	if valid == 0 {
		return 0
	}
	return clamp01(float64(within) / float64(valid))
}

// DisciplineScore rewards documented trades: per trade 0.4 for a non-empty
// strategy list, 0.3 for notes, 0.3 for indicators, averaged over all trades.
func DisciplineScore(closed []models.Trade) float64 {
	if len(closed) == 0 {
		return 0
	}
	var sum float64
	for _, t := range closed {
		var score float64
		if len(t.Strategy) > 0 {
			score += 0.4
		}
		if strings.TrimSpace(t.Notes) != "" {
			score += 0.3
		}
		if len(t.Indicators) > 0 {
			score += 0.3
		}
		sum += score
	}
	return clamp01(sum / float64(len(closed)))
}

// BehavioralProfile assembles the full behavioral pattern block. The exposed
// confidence score is the fear/greed index; the exposed risk-management score
// is the 2%-of-capital rule.
func BehavioralProfile(closed []models.Trade) models.BehavioralPatterns {
	return models.BehavioralPatterns{
		TimeOfDay:         TimeOfDayBuckets(closed),
		EmotionalState:    EmotionalStateBuckets(closed),
		OverallConfidence: FearGreedScore(closed),
		RiskManagement:    RiskManagementScore(closed),
	}
}

func clamp01(v float64) float64 {
	if v < 0 || !isFinite(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
