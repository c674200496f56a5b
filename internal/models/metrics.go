package models

import "time"

// MetricsPeriod is the reporting window a metrics snapshot covers.
type MetricsPeriod string

const (
	PeriodAllTime MetricsPeriod = "all-time"
	PeriodDaily   MetricsPeriod = "daily"
	PeriodWeekly  MetricsPeriod = "weekly"
	PeriodMonthly MetricsPeriod = "monthly"
	PeriodYearly  MetricsPeriod = "yearly"
)

// ValidPeriod reports whether p is one of the known reporting periods.
func ValidPeriod(p MetricsPeriod) bool {
	switch p {
	case PeriodAllTime, PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// MistakeStat is the aggregated impact of one recurring mistake.
type MistakeStat struct {
	Description string
	Count       int
	Impact      float64 // average P&L of trades exhibiting the mistake
}

// StrategyStat is the aggregated profitability of one strategy label.
type StrategyStat struct {
	Strategy string
	PnL      float64
	WinRate  float64
}

// IndicatorStat is the aggregated success of one indicator label.
type IndicatorStat struct {
	Indicator   string
	Count       int
	SuccessRate float64
}

// BucketStat is trade count and win rate for one behavioral bucket.
type BucketStat struct {
	Trades  int
	WinRate float64
}

// BehavioralPatterns groups behavioral observations derived from trade metadata.
type BehavioralPatterns struct {
	TimeOfDay         map[int]BucketStat    // keyed by hour 0-23 of entry, local time
	EmotionalState    map[string]BucketStat // keyed by recorded emotional state
	OverallConfidence float64               // fear/greed score in [0,1]
	RiskManagement    float64               // risk-management score in [0,1]
}

// PerformanceMetrics is one computed snapshot for a user over a date window.
// It is a pure derivation from a trade set: never mutated after construction;
// a changed trade set produces a new snapshot.
type PerformanceMetrics struct {
	UserID    string
	Period    MetricsPeriod
	StartDate *time.Time
	EndDate   *time.Time

	TotalTrades   int
	WinningTrades int
	LosingTrades  int

	WinRate         float64 // percent
	TotalPnL        float64
	AveragePnL      float64
	LargestWin      float64
	LargestLoss     float64
	AverageWinSize  float64
	AverageLossSize float64

	ProfitFactor    float64
	SharpeRatio     float64
	MaxDrawdown     float64 // fraction of peak
	RiskRewardRatio float64

	CommonMistakes           []MistakeStat
	MostProfitableStrategies []StrategyStat
	MostUsedIndicators       []IndicatorStat

	BehavioralPatterns BehavioralPatterns

	CreatedAt     time.Time
	IsDefaultData bool
	// DefaultReason distinguishes "no data" from "computation degraded" when
	// IsDefaultData is true. Empty for real snapshots.
	DefaultReason string
}
