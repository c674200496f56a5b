package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/metrics"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

// addMetricsCommands adds performance analytics commands.
func addMetricsCommands(rootCmd *cobra.Command, app *App) {
	metricsCmd := &cobra.Command{
		Use:   "metrics",
		Short: "Performance analytics",
		Long:  "Compute performance metrics over your trade history, browse past snapshots, and export to CSV.",
	}

	metricsCmd.AddCommand(newMetricsShowCmd(app))
	metricsCmd.AddCommand(newMetricsHistoryCmd(app))
	metricsCmd.AddCommand(newMetricsExportCmd(app))

	rootCmd.AddCommand(metricsCmd)
}

func newMetricsShowCmd(app *App) *cobra.Command {
	var (
		period string
		from   string
		to     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show performance metrics",
		Long: `Compute and display the performance snapshot for a period.

With no closed trades the snapshot renders as sample data rather than
an error. Repeat calls within the cache TTL reuse the computed snapshot.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Calculator == nil {
				return apperrors.ErrDatabaseError
			}

			startDate, endDate, err := parseDateWindow(from, to)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			userID := app.userID(cmd)
			m, err := app.Calculator.Calculate(ctx, userID, models.MetricsPeriod(period), startDate, endDate)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(m)
			}

			renderMetrics(output, m)
			renderHabits(ctx, output, app, userID, m)
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", string(models.PeriodAllTime), "reporting period (all-time, daily, weekly, monthly, yearly)")
	cmd.Flags().StringVar(&from, "from", "", "window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "window end (YYYY-MM-DD)")

	return cmd
}

func newMetricsHistoryCmd(app *App) *cobra.Command {
	var (
		period string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past metrics snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			filter := store.SnapshotFilter{
				UserID: app.userID(cmd),
				Limit:  limit,
			}
			if period != "" {
				filter.Period = models.MetricsPeriod(period)
			}

			snapshots, err := app.Store.GetMetricsSnapshots(ctx, filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(snapshots)
			}
			if len(snapshots) == 0 {
				output.Info("No snapshots recorded yet")
				return nil
			}

			table := NewTable(output, "COMPUTED", "PERIOD", "TRADES", "WIN RATE", "TOTAL P&L", "PF", "SHARPE")
			for _, s := range snapshots {
				if s.IsDefaultData {
					table.AddRow(FormatDateTime(s.CreatedAt), string(s.Period),
						fmt.Sprintf("%d", s.TotalTrades), "-", "-", "-", "-")
					continue
				}
				table.AddRow(
					FormatDateTime(s.CreatedAt),
					string(s.Period),
					fmt.Sprintf("%d", s.TotalTrades),
					fmt.Sprintf("%.1f%%", s.WinRate),
					output.FormatPnL(s.TotalPnL),
					fmt.Sprintf("%.2f", s.ProfitFactor),
					fmt.Sprintf("%.2f", s.SharpeRatio),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "filter by reporting period")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of snapshots")

	return cmd
}

// metricsCSVRow is the flattened snapshot shape written to CSV.
type metricsCSVRow struct {
	ComputedAt   string  `csv:"computed_at"`
	Period       string  `csv:"period"`
	TotalTrades  int     `csv:"total_trades"`
	Wins         int     `csv:"winning_trades"`
	Losses       int     `csv:"losing_trades"`
	WinRate      float64 `csv:"win_rate_pct"`
	TotalPnL     float64 `csv:"total_pnl"`
	AveragePnL   float64 `csv:"average_pnl"`
	LargestWin   float64 `csv:"largest_win"`
	LargestLoss  float64 `csv:"largest_loss"`
	ProfitFactor float64 `csv:"profit_factor"`
	SharpeRatio  float64 `csv:"sharpe_ratio"`
	MaxDrawdown  float64 `csv:"max_drawdown"`
	RiskReward   float64 `csv:"risk_reward_ratio"`
	IsDefault    bool    `csv:"is_sample_data"`
}

// tradeCSVRow is the flattened trade shape written to CSV.
type tradeCSVRow struct {
	ID       string  `csv:"id"`
	OpenedAt string  `csv:"opened_at"`
	ClosedAt string  `csv:"closed_at"`
	Pair     string  `csv:"pair"`
	Side     string  `csv:"side"`
	Status   string  `csv:"status"`
	Entry    float64 `csv:"entry_price"`
	Exit     float64 `csv:"exit_price"`
	Quantity float64 `csv:"quantity"`
	PnL      float64 `csv:"pnl"`
	PnLPct   float64 `csv:"pnl_pct"`
	Result   string  `csv:"result"`
	Strategy string  `csv:"strategy"`
	Mistakes string  `csv:"mistakes"`
	Emotion  string  `csv:"emotional_state"`
}

func newMetricsExportCmd(app *App) *cobra.Command {
	var (
		period string
		trades bool
	)

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export metrics history or the trade log to CSV",
		Long: `Export recorded metrics snapshots (default) or the raw trade log
(--trades) to a CSV file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			file, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			defer file.Close()

			var count int
			if trades {
				count, err = exportTrades(ctx, app, app.userID(cmd), file)
			} else {
				count, err = exportSnapshots(ctx, app, app.userID(cmd), models.MetricsPeriod(period), file)
			}
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"file": args[0], "rows": count})
			}
			output.Success("✓ Exported %d row(s) to %s", count, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "filter snapshots by reporting period")
	cmd.Flags().BoolVar(&trades, "trades", false, "export the raw trade log instead of snapshots")

	return cmd
}

func exportSnapshots(ctx context.Context, app *App, userID string, period models.MetricsPeriod, file *os.File) (int, error) {
	filter := store.SnapshotFilter{UserID: userID, Period: period}
	snapshots, err := app.Store.GetMetricsSnapshots(ctx, filter)
	if err != nil {
		return 0, err
	}

	rows := make([]metricsCSVRow, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, metricsCSVRow{
			ComputedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
			Period:       string(s.Period),
			TotalTrades:  s.TotalTrades,
			Wins:         s.WinningTrades,
			Losses:       s.LosingTrades,
			WinRate:      s.WinRate,
			TotalPnL:     s.TotalPnL,
			AveragePnL:   s.AveragePnL,
			LargestWin:   s.LargestWin,
			LargestLoss:  s.LargestLoss,
			ProfitFactor: s.ProfitFactor,
			SharpeRatio:  s.SharpeRatio,
			MaxDrawdown:  s.MaxDrawdown,
			RiskReward:   s.RiskRewardRatio,
			IsDefault:    s.IsDefaultData,
		})
	}
	return len(rows), gocsv.MarshalFile(&rows, file)
}

func exportTrades(ctx context.Context, app *App, userID string, file *os.File) (int, error) {
	allTrades, err := app.Store.GetTradesForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	rows := make([]tradeCSVRow, 0, len(allTrades))
	for _, t := range allTrades {
		closedAt := ""
		if t.ClosedAt != nil {
			closedAt = t.ClosedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, tradeCSVRow{
			ID:       t.ID,
			OpenedAt: t.CreatedAt.UTC().Format(time.RFC3339),
			ClosedAt: closedAt,
			Pair:     t.Pair,
			Side:     string(t.Type),
			Status:   string(t.Status),
			Entry:    t.EntryPrice,
			Exit:     t.ExitPrice,
			Quantity: t.Quantity,
			PnL:      t.ProfitLoss,
			PnLPct:   t.ProfitLossPercentage,
			Result:   string(t.Result),
			Strategy: FormatLabels(t.Strategy),
			Mistakes: FormatLabels(t.Mistakes),
			Emotion:  t.EmotionalState,
		})
	}
	return len(rows), gocsv.MarshalFile(&rows, file)
}

// parseDateWindow parses optional from/to dates into a validated window.
func parseDateWindow(from, to string) (*time.Time, *time.Time, error) {
	var startDate, endDate *time.Time
	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("from", from, "must be YYYY-MM-DD")
		}
		startDate = &t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("to", to, "must be YYYY-MM-DD")
		}
		endDate = &t
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, nil, apperrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func renderMetrics(output *Output, m *models.PerformanceMetrics) {
	output.Bold("Performance Metrics - %s", m.Period)
	if m.StartDate != nil || m.EndDate != nil {
		window := "..."
		if m.StartDate != nil {
			window = FormatDate(*m.StartDate) + " to "
		} else {
			window = "... to "
		}
		if m.EndDate != nil {
			window += FormatDate(*m.EndDate)
		} else {
			window += "..."
		}
		output.Dim("Window: %s", window)
	}

	if m.IsDefaultData {
		output.Warning("⚠ Sample data: %s", m.DefaultReason)
		output.Printf("  Total trades logged: %d\n", m.TotalTrades)
		return
	}

	output.Println()
	output.Printf("  Trades:         %d (%d wins, %d losses)\n", m.TotalTrades, m.WinningTrades, m.LosingTrades)
	output.Printf("  Win Rate:       %.1f%%\n", m.WinRate)
	output.Printf("  Total P&L:      %s\n", output.FormatPnL(m.TotalPnL))
	output.Printf("  Average P&L:    %s\n", output.FormatPnL(m.AveragePnL))
	output.Printf("  Largest Win:    %s\n", output.FormatPnL(m.LargestWin))
	output.Printf("  Largest Loss:   %s\n", output.FormatPnL(m.LargestLoss))
	output.Printf("  Profit Factor:  %.2f\n", m.ProfitFactor)
	output.Printf("  Sharpe Ratio:   %.2f\n", m.SharpeRatio)
	output.Printf("  Max Drawdown:   %.1f%%\n", m.MaxDrawdown*100)
	output.Printf("  Risk/Reward:    %.2f\n", m.RiskRewardRatio)

	output.Println()
	output.Bold("Behavioral Scores")
	output.Printf("  Confidence:      %s\n", FormatScore(m.BehavioralPatterns.OverallConfidence))
	output.Printf("  Risk Management: %s\n", FormatScore(m.BehavioralPatterns.RiskManagement))

	if len(m.CommonMistakes) > 0 && m.CommonMistakes[0].Count > 0 {
		output.Println()
		output.Bold("Recurring Mistakes")
		table := NewTable(output, "MISTAKE", "COUNT", "AVG IMPACT")
		for _, ms := range m.CommonMistakes {
			table.AddRow(ms.Description, fmt.Sprintf("%d", ms.Count), output.FormatPnL(ms.Impact))
		}
		table.Render()
	}

	if len(m.MostProfitableStrategies) > 0 && m.MostProfitableStrategies[0].Strategy != "" {
		output.Println()
		output.Bold("Strategies by P&L")
		table := NewTable(output, "STRATEGY", "P&L", "WIN RATE")
		for _, st := range m.MostProfitableStrategies {
			table.AddRow(st.Strategy, output.FormatPnL(st.PnL), fmt.Sprintf("%.0f%%", st.WinRate))
		}
		table.Render()
	}

	if len(m.MostUsedIndicators) > 0 && m.MostUsedIndicators[0].Count > 0 {
		output.Println()
		output.Bold("Indicators by Usage")
		table := NewTable(output, "INDICATOR", "COUNT", "SUCCESS RATE")
		for _, ind := range m.MostUsedIndicators {
			table.AddRow(ind.Indicator, fmt.Sprintf("%d", ind.Count), fmt.Sprintf("%.0f%%", ind.SuccessRate))
		}
		table.Render()
	}

	if len(m.BehavioralPatterns.TimeOfDay) > 0 {
		output.Println()
		output.Bold("By Hour of Day")
		hours := make([]int, 0, len(m.BehavioralPatterns.TimeOfDay))
		for h := range m.BehavioralPatterns.TimeOfDay {
			hours = append(hours, h)
		}
		sort.Ints(hours)
		table := NewTable(output, "HOUR", "TRADES", "WIN RATE")
		for _, h := range hours {
			b := m.BehavioralPatterns.TimeOfDay[h]
			table.AddRow(fmt.Sprintf("%02d:00", h), fmt.Sprintf("%d", b.Trades), fmt.Sprintf("%.0f%%", b.WinRate))
		}
		table.Render()
	}

	if len(m.BehavioralPatterns.EmotionalState) > 0 {
		output.Println()
		output.Bold("By Emotional State")
		states := make([]string, 0, len(m.BehavioralPatterns.EmotionalState))
		for s := range m.BehavioralPatterns.EmotionalState {
			states = append(states, s)
		}
		sort.Strings(states)
		table := NewTable(output, "STATE", "TRADES", "WIN RATE")
		for _, s := range states {
			b := m.BehavioralPatterns.EmotionalState[s]
			table.AddRow(s, fmt.Sprintf("%d", b.Trades), fmt.Sprintf("%.0f%%", b.WinRate))
		}
		table.Render()
	}
}

// renderHabits shows the habit scores that are not part of the stored
// snapshot: strategy consistency, overtrading, and journaling discipline.
func renderHabits(ctx context.Context, output *Output, app *App, userID string, m *models.PerformanceMetrics) {
	if m.IsDefaultData || app.Store == nil {
		return
	}

	raw, err := app.Store.GetTradesForUser(ctx, userID)
	if err != nil {
		return
	}
	closed := metrics.Categorize(models.NormalizeAll(raw)).Closed()
	if len(closed) == 0 {
		return
	}

	output.Println()
	output.Bold("Trading Habits")
	output.Printf("  Consistency:     %s\n", FormatScore(metrics.ConsistencyScore(closed)))
	output.Printf("  Time Management: %s\n", FormatScore(metrics.TimeManagementScore(closed)))
	output.Printf("  Discipline:      %s\n", FormatScore(metrics.DisciplineScore(closed)))
}
