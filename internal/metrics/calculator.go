package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"trade-journal/internal/cache"
	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

// Options tune the calculator. The zero value is usable; unset fields fall
// back to defaults.
type Options struct {
	RiskFreeRate float64
	CacheTTL     time.Duration
	Clock        cache.Clock
}

// Calculator composes the pure metric reducers into full performance
// snapshots. It owns the only I/O in this package: the upstream trade fetch,
// the snapshot memo cache, and the background history persist.
type Calculator struct {
	trades       store.TradeStore
	logger       zerolog.Logger
	riskFreeRate float64
	clock        cache.Clock
	memo         *cache.TTL[*models.PerformanceMetrics]
	persists     sync.WaitGroup
}

// NewCalculator creates a metrics calculator backed by the given trade store.
func NewCalculator(trades store.TradeStore, logger zerolog.Logger, opts Options) *Calculator {
	if opts.RiskFreeRate == 0 {
		opts.RiskFreeRate = DefaultRiskFreeRate
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Calculator{
		trades:       trades,
		logger:       logger,
		riskFreeRate: opts.RiskFreeRate,
		clock:        opts.Clock,
		memo:         cache.NewTTL[*models.PerformanceMetrics](opts.CacheTTL, opts.Clock),
	}
}

// Calculate derives a performance snapshot for the user.
//
// The date window is accepted, validated, and stamped onto the snapshot, but
// the underlying fetch is NOT filtered by it: the reference contract computes
// over the user's full history regardless. See the drawdown and date-window
// notes in DESIGN.md before changing this.
//
// A repository fetch failure is the one error that propagates. Any failure
// inside the computation itself degrades to the default snapshot with the
// reason recorded on it; analytics must stay renderable over bad history.
func (c *Calculator) Calculate(ctx context.Context, userID string, period models.MetricsPeriod, startDate, endDate *time.Time) (*models.PerformanceMetrics, error) {
	if period == "" {
		period = models.PeriodAllTime
	}
	if !models.ValidPeriod(period) {
		return nil, fmt.Errorf("period %q: %w", period, apperrors.ErrInvalidPeriod)
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, apperrors.ErrInvalidDateRange
	}

	key := memoKey(userID, period, startDate, endDate)
	if m, ok := c.memo.Get(key); ok {
		c.logger.Debug().Str("user_id", userID).Str("period", string(period)).Msg("Metrics served from cache")
		return m, nil
	}

	trades, err := c.trades.GetTradesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching trades for %s: %w", userID, err)
	}

	m := c.compute(userID, period, startDate, endDate, trades)
	c.memo.Set(key, m)

	// History persist runs in the background so a slow disk never delays
	// the returned snapshot; a failure never affects it either. Close
	// joins the write before the process exits.
	c.persists.Add(1)
	go func() {
		defer c.persists.Done()
		c.persistSnapshot(m)
	}()

	c.logger.Info().
		Str("user_id", userID).
		Str("period", string(period)).
		Int("total_trades", m.TotalTrades).
		Float64("win_rate", m.WinRate).
		Bool("default_data", m.IsDefaultData).
		Msg("Metrics computed")

	return m, nil
}

// Invalidate drops the user's memoized snapshots. Called after trade writes.
func (c *Calculator) Invalidate(userID string) {
	c.memo.Invalidate(userID + "|")
}

// Close waits for in-flight snapshot persists, up to the timeout. Called
// once before the process exits; without it a short-lived CLI run could
// terminate before the history write lands.
func (c *Calculator) Close(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		c.persists.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		c.logger.Warn().Msg("Timed out waiting for snapshot persist")
	}
}

// compute runs the full pipeline over an in-memory trade set. It never
// panics past its own boundary: a recovered failure collapses into the
// default snapshot with the reason recorded.
func (c *Calculator) compute(userID string, period models.MetricsPeriod, startDate, endDate *time.Time, raw []models.Trade) (m *models.PerformanceMetrics) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Str("user_id", userID).Msg("Metrics computation degraded to defaults")
			m = c.defaultMetrics(userID, period, startDate, endDate, len(raw),
				fmt.Sprintf("computation degraded: %v", r))
		}
	}()

	trades := models.NormalizeAll(raw)
	buckets := Categorize(trades)
	closed := buckets.Closed()

	if len(closed) == 0 {
		return c.defaultMetrics(userID, period, startDate, endDate, len(trades), "no closed trades")
	}

	pnls := PnLSeries(closed)
	grossProfit, grossLoss, wins, losses := GrossProfitLoss(pnls)

	var totalPnL float64
	for _, pnl := range pnls {
		totalPnL += pnl
	}

	avgWin := AverageWinSize(grossProfit, wins)
	avgLoss := AverageLossSize(grossLoss, losses)

	return &models.PerformanceMetrics{
		UserID:    userID,
		Period:    period,
		StartDate: startDate,
		EndDate:   endDate,

		TotalTrades:   len(trades),
		WinningTrades: len(buckets.Winning),
		LosingTrades:  len(buckets.Losing),

		WinRate:         float64(len(buckets.Winning)) / float64(len(closed)) * 100,
		TotalPnL:        totalPnL,
		AveragePnL:      totalPnL / float64(len(closed)),
		LargestWin:      LargestWin(pnls),
		LargestLoss:     LargestLoss(pnls),
		AverageWinSize:  avgWin,
		AverageLossSize: avgLoss,

		ProfitFactor:    ProfitFactor(grossProfit, grossLoss),
		SharpeRatio:     SharpeRatio(pnls, ReferenceCapital(closed), c.riskFreeRate),
		MaxDrawdown:     MaxDrawdown(pnls),
		RiskRewardRatio: RiskRewardRatio(avgWin, avgLoss),

		CommonMistakes:           AggregateMistakes(closed),
		MostProfitableStrategies: AggregateStrategies(closed),
		MostUsedIndicators:       AggregateIndicators(closed),

		BehavioralPatterns: BehavioralProfile(closed),

		CreatedAt:     c.clock(),
		IsDefaultData: false,
	}
}

// defaultMetrics is the fully zeroed snapshot returned when no closed trades
// exist or the computation degraded. Aggregation lists still carry their
// placeholder rows; consumers render this as a neutral sample state, not an
// error.
func (c *Calculator) defaultMetrics(userID string, period models.MetricsPeriod, startDate, endDate *time.Time, totalTrades int, reason string) *models.PerformanceMetrics {
	return &models.PerformanceMetrics{
		UserID:    userID,
		Period:    period,
		StartDate: startDate,
		EndDate:   endDate,

		TotalTrades: totalTrades,

		CommonMistakes:           AggregateMistakes(nil),
		MostProfitableStrategies: AggregateStrategies(nil),
		MostUsedIndicators:       AggregateIndicators(nil),
		BehavioralPatterns: models.BehavioralPatterns{
			TimeOfDay:      map[int]models.BucketStat{},
			EmotionalState: map[string]models.BucketStat{},
		},

		CreatedAt:     c.clock(),
		IsDefaultData: true,
		DefaultReason: reason,
	}
}

func (c *Calculator) persistSnapshot(m *models.PerformanceMetrics) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.trades.SaveMetricsSnapshot(ctx, m); err != nil {
		c.logger.Warn().Err(err).Str("user_id", m.UserID).Msg("Failed to persist metrics snapshot")
	}
}

func memoKey(userID string, period models.MetricsPeriod, startDate, endDate *time.Time) string {
	start, end := "", ""
	if startDate != nil {
		start = startDate.UTC().Format(time.RFC3339)
	}
	if endDate != nil {
		end = endDate.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s|%s|%s|%s", userID, period, start, end)
}
