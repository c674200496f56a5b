package insight

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trade-journal/internal/cache"
	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

const analystSystemPrompt = `You are a trading performance coach reviewing a trader's journal.
Write a short, direct narrative assessment of the metrics you are given: what is working,
what is costing money, and one or two concrete habits to change. Plain prose, no headings,
no financial advice disclaimers.`

// Analyst turns a metrics snapshot plus a recent-trades slice into narrative
// commentary. Responses are cached per user and snapshot so repeat views of
// the same history do not re-bill the API.
type Analyst struct {
	llm    LLMClient
	logger zerolog.Logger
	memo   *cache.TTL[string]
}

// NewAnalyst creates an analyst over the given LLM client.
func NewAnalyst(llm LLMClient, logger zerolog.Logger, ttl time.Duration, clock cache.Clock) *Analyst {
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	return &Analyst{
		llm:    llm,
		logger: logger,
		memo:   cache.NewTTL[string](ttl, clock),
	}
}

// Commentary generates (or returns cached) narrative commentary for a
// computed snapshot. Default-data snapshots get a canned response without
// touching the API: there is nothing for a model to analyze.
func (a *Analyst) Commentary(ctx context.Context, m *models.PerformanceMetrics, recent []models.Trade) (string, error) {
	if a.llm == nil {
		return "", apperrors.ErrNoAPIKey
	}
	if m == nil {
		return "", apperrors.NewInsightError("commentary", fmt.Errorf("nil metrics"))
	}
	if m.IsDefaultData {
		return "Not enough closed trades to analyze yet. Log a few completed trades and check back.", nil
	}

	key := fmt.Sprintf("%s|%s|%s", m.UserID, m.Period, m.CreatedAt.UTC().Format(time.RFC3339Nano))
	if text, ok := a.memo.Get(key); ok {
		return text, nil
	}

	start := time.Now()
	text, err := a.llm.Complete(ctx, analystSystemPrompt, buildPrompt(m, recent))
	a.logger.Debug().
		Str("user_id", m.UserID).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("Insight generation finished")
	if err != nil {
		return "", apperrors.NewInsightError("commentary", err)
	}

	a.memo.Set(key, text)
	return text, nil
}

// buildPrompt flattens the snapshot and a recent-trades slice into the
// structured text the model sees.
func buildPrompt(m *models.PerformanceMetrics, recent []models.Trade) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Period: %s\n", m.Period))
	sb.WriteString(fmt.Sprintf("Total trades: %d (wins %d, losses %d)\n", m.TotalTrades, m.WinningTrades, m.LosingTrades))
	sb.WriteString(fmt.Sprintf("Win rate: %.1f%%\n", m.WinRate))
	sb.WriteString(fmt.Sprintf("Total P&L: %.2f (avg %.2f per trade)\n", m.TotalPnL, m.AveragePnL))
	sb.WriteString(fmt.Sprintf("Largest win: %.2f, largest loss: %.2f\n", m.LargestWin, m.LargestLoss))
	sb.WriteString(fmt.Sprintf("Profit factor: %.2f\n", m.ProfitFactor))
	sb.WriteString(fmt.Sprintf("Sharpe ratio: %.2f\n", m.SharpeRatio))
	sb.WriteString(fmt.Sprintf("Max drawdown: %.1f%%\n", m.MaxDrawdown*100))
	sb.WriteString(fmt.Sprintf("Risk/reward ratio: %.2f\n", m.RiskRewardRatio))
	sb.WriteString(fmt.Sprintf("Confidence score: %.2f, risk management score: %.2f\n",
		m.BehavioralPatterns.OverallConfidence, m.BehavioralPatterns.RiskManagement))

	if len(m.CommonMistakes) > 0 && m.CommonMistakes[0].Count > 0 {
		sb.WriteString("\nRecurring mistakes:\n")
		for _, ms := range m.CommonMistakes {
			sb.WriteString(fmt.Sprintf("  - %s: %d trades, avg impact %.2f\n", ms.Description, ms.Count, ms.Impact))
		}
	}

	if len(m.MostProfitableStrategies) > 0 && m.MostProfitableStrategies[0].Strategy != "" {
		sb.WriteString("\nStrategies by P&L:\n")
		for _, st := range m.MostProfitableStrategies {
			sb.WriteString(fmt.Sprintf("  - %s: %.2f (win rate %.0f%%)\n", st.Strategy, st.PnL, st.WinRate))
		}
	}

	if len(m.BehavioralPatterns.TimeOfDay) > 0 {
		sb.WriteString("\nBy hour of day:\n")
		hours := make([]int, 0, len(m.BehavioralPatterns.TimeOfDay))
		for h := range m.BehavioralPatterns.TimeOfDay {
			hours = append(hours, h)
		}
		sort.Ints(hours)
		for _, h := range hours {
			b := m.BehavioralPatterns.TimeOfDay[h]
			sb.WriteString(fmt.Sprintf("  - %02d:00: %d trades, win rate %.0f%%\n", h, b.Trades, b.WinRate))
		}
	}

	if len(recent) > 0 {
		sb.WriteString("\nMost recent trades:\n")
		for _, t := range recent {
			line := fmt.Sprintf("  - %s %s qty %.4g entry %.4f", t.Type, t.Pair, t.Quantity, t.EntryPrice)
			if t.IsClosed() {
				line += fmt.Sprintf(" exit %.4f pnl %.2f", t.ExitPrice, t.ProfitLoss)
			} else {
				line += " (open)"
			}
			if len(t.Mistakes) > 0 {
				line += " mistakes: " + strings.Join(t.Mistakes, ", ")
			}
			sb.WriteString(line + "\n")
		}
	}

	return sb.String()
}
