package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

// addInsightCommands adds the AI commentary command.
func addInsightCommands(rootCmd *cobra.Command, app *App) {
	var (
		period string
		from   string
		to     string
	)

	cmd := &cobra.Command{
		Use:   "insight",
		Short: "AI commentary on your performance",
		Long: `Generate narrative commentary on your trading performance.

Computes the metrics snapshot for the period, hands it to the language
model together with your most recent trades, and prints the response.
Requires an OpenAI API key in credentials.toml or OPENAI_API_KEY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Analyst == nil {
				output.Error("No OpenAI API key configured")
				output.Dim("Set OPENAI_API_KEY or add it to credentials.toml under [openai]")
				return apperrors.ErrNoAPIKey
			}
			if app.Calculator == nil {
				return apperrors.ErrDatabaseError
			}

			startDate, endDate, err := parseDateWindow(from, to)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 90*time.Second)
			defer cancel()

			userID := app.userID(cmd)
			m, err := app.Calculator.Calculate(ctx, userID, models.MetricsPeriod(period), startDate, endDate)
			if err != nil {
				return err
			}

			// Newest first, so the limit keeps the latest trades.
			recent, err := app.Store.GetTrades(ctx, store.TradeFilter{
				UserID:     userID,
				Limit:      app.Config.Insight.RecentTrades,
				Descending: true,
			})
			if err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to fetch recent trades for insight")
				recent = nil
			}

			if !output.IsJSON() {
				output.Info("Analyzing %d trade(s)...", m.TotalTrades)
			}

			text, err := app.Analyst.Commentary(ctx, m, recent)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"user_id":    userID,
					"period":     m.Period,
					"commentary": text,
				})
			}

			output.Println()
			output.Bold("Performance Commentary - %s", m.Period)
			output.Println()
			output.Println(text)
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", string(models.PeriodAllTime), "reporting period")
	cmd.Flags().StringVar(&from, "from", "", "window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "window end (YYYY-MM-DD)")

	rootCmd.AddCommand(cmd)
}
