package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/metrics"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

// addTradeCommands adds trade logging commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	tradeCmd := &cobra.Command{
		Use:   "trade",
		Short: "Log and manage trades",
		Long:  "Log new trades, close open positions, and list trade history.",
	}

	tradeCmd.AddCommand(newTradeAddCmd(app))
	tradeCmd.AddCommand(newTradeCloseCmd(app))
	tradeCmd.AddCommand(newTradeListCmd(app))
	tradeCmd.AddCommand(newTradeShowCmd(app))

	rootCmd.AddCommand(tradeCmd)
}

func newTradeAddCmd(app *App) *cobra.Command {
	var (
		side      string
		entry     float64
		exit      float64
		quantity  float64
		capital   float64
		emotion   string
		notes     string
		strategy  []string
		indicator []string
		mistakes  []string
		tags      []string
	)

	cmd := &cobra.Command{
		Use:   "add PAIR",
		Short: "Log a new trade",
		Long: `Log a new trade for the given pair.

A trade with --exit is recorded as closed and its P&L is derived
immediately; without --exit it stays open until 'trade close'.

Examples:
  journal trade add BTC/USDT --side BUY --entry 61250 --qty 0.1 --strategy breakout
  journal trade add EUR/USD --side SELL --entry 1.0850 --exit 1.0820 --qty 10000 --emotion calm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}

			tradeType := models.TradeType(strings.ToUpper(side))
			if tradeType != models.TradeBuy && tradeType != models.TradeSell {
				return apperrors.NewValidationError("side", side, "must be BUY or SELL")
			}
			if entry <= 0 {
				return apperrors.NewValidationError("entry", fmt.Sprintf("%v", entry), "must be positive")
			}
			if quantity <= 0 {
				return apperrors.NewValidationError("qty", fmt.Sprintf("%v", quantity), "must be positive")
			}

			now := time.Now()
			trade := models.Trade{
				ID:             uuid.New().String(),
				UserID:         app.userID(cmd),
				Pair:           strings.ToUpper(args[0]),
				Type:           tradeType,
				Status:         models.StatusOpen,
				EntryPrice:     entry,
				Quantity:       quantity,
				Strategy:       strategy,
				Indicators:     indicator,
				Mistakes:       mistakes,
				Tags:           tags,
				Notes:          notes,
				EmotionalState: emotion,
				Capital:        capital,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if trade.Capital == 0 {
				trade.Capital = app.Config.Journal.DefaultCapital
			}

			if exit > 0 {
				closedAt := now
				trade.ExitPrice = exit
				trade.Status = models.StatusClosed
				trade.ClosedAt = &closedAt
				trade.ProfitLoss = metrics.CalculatePnL(trade)
				trade.ProfitLossPercentage = metrics.PnLPercentage(trade)
				trade.Result = metrics.ResultFor(trade)
			}

			trade = models.Normalize(trade)

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if err := app.Store.SaveTrade(ctx, &trade); err != nil {
				return err
			}
			app.Calculator.Invalidate(trade.UserID)

			if output.IsJSON() {
				return output.JSON(trade)
			}
			if trade.IsClosed() {
				output.Success("✓ Logged closed %s %s trade: %s", trade.Type, trade.Pair, output.FormatPnL(trade.ProfitLoss))
			} else {
				output.Success("✓ Logged open %s %s trade at %s", trade.Type, trade.Pair, FormatCurrency(trade.EntryPrice))
			}
			output.Dim("ID: %s", trade.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&side, "side", "BUY", "trade side (BUY or SELL)")
	cmd.Flags().Float64Var(&entry, "entry", 0, "entry price (required)")
	cmd.Flags().Float64Var(&exit, "exit", 0, "exit price (records a closed trade)")
	cmd.Flags().Float64Var(&quantity, "qty", 0, "quantity (required)")
	cmd.Flags().Float64Var(&capital, "capital", 0, "capital at risk (default: journal.default_capital)")
	cmd.Flags().StringVar(&emotion, "emotion", "", "emotional state while trading")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringSliceVar(&strategy, "strategy", nil, "strategy labels")
	cmd.Flags().StringSliceVar(&indicator, "indicator", nil, "indicator labels")
	cmd.Flags().StringSliceVar(&mistakes, "mistake", nil, "mistake labels")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "free-form tags")
	cmd.MarkFlagRequired("entry")
	cmd.MarkFlagRequired("qty")

	return cmd
}

func newTradeCloseCmd(app *App) *cobra.Command {
	var (
		exit     float64
		reason   string
		mistakes []string
	)

	cmd := &cobra.Command{
		Use:   "close TRADE_ID",
		Short: "Close an open trade",
		Long: `Close an open trade at the given exit price.

P&L, P&L percentage, and the win/loss result are derived at close time
and stored with the trade.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			if exit <= 0 {
				return apperrors.NewValidationError("exit", fmt.Sprintf("%v", exit), "must be positive")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			trade, err := app.Store.GetTrade(ctx, args[0])
			if err != nil {
				return err
			}
			if trade.IsClosed() {
				return apperrors.ErrTradeClosed
			}

			now := time.Now()
			trade.ExitPrice = exit
			trade.Status = models.StatusClosed
			trade.ClosedAt = &now
			trade.UpdatedAt = now
			if reason != "" {
				trade.Reason = reason
			}
			if len(mistakes) > 0 {
				trade.Mistakes = append(trade.Mistakes, mistakes...)
			}
			trade.ProfitLoss = metrics.CalculatePnL(*trade)
			trade.ProfitLossPercentage = metrics.PnLPercentage(*trade)
			trade.Result = metrics.ResultFor(*trade)

			if err := app.Store.UpdateTrade(ctx, trade); err != nil {
				return err
			}
			app.Calculator.Invalidate(trade.UserID)

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Closed %s %s: %s (%s)", trade.Type, trade.Pair,
				output.FormatPnL(trade.ProfitLoss), output.FormatPercent(trade.ProfitLossPercentage))
			return nil
		},
	}

	cmd.Flags().Float64Var(&exit, "exit", 0, "exit price (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "reason for closing")
	cmd.Flags().StringSliceVar(&mistakes, "mistake", nil, "mistake labels to record on close")
	cmd.MarkFlagRequired("exit")

	return cmd
}

func newTradeListCmd(app *App) *cobra.Command {
	var (
		pair   string
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			filter := store.TradeFilter{
				UserID: app.userID(cmd),
				Pair:   strings.ToUpper(pair),
				Limit:  limit,
			}
			if status != "" {
				filter.Status = models.TradeStatus(strings.ToUpper(status))
			}

			trades, err := app.Store.GetTrades(ctx, filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades found")
				return nil
			}

			table := NewTable(output, "DATE", "PAIR", "SIDE", "STATUS", "ENTRY", "EXIT", "QTY", "P&L", "ID")
			for _, t := range trades {
				exitStr := "-"
				pnlStr := "-"
				if t.IsClosed() {
					exitStr = FormatCurrency(t.ExitPrice)
					pnlStr = output.FormatPnL(t.ProfitLoss)
				}
				table.AddRow(
					FormatDate(t.CreatedAt),
					t.Pair,
					string(t.Type),
					string(t.Status),
					FormatCurrency(t.EntryPrice),
					exitStr,
					fmt.Sprintf("%.4g", t.Quantity),
					pnlStr,
					TruncateString(t.ID, 8),
				)
			}
			table.Render()
			output.Dim("%d trade(s)", len(trades))
			return nil
		},
	}

	cmd.Flags().StringVar(&pair, "pair", "", "filter by pair")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (OPEN, CLOSED)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of trades")

	return cmd
}

func newTradeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show TRADE_ID",
		Short: "Show a single trade in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			trade, err := app.Store.GetTrade(ctx, args[0])
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}

			output.Bold("%s %s (%s)", trade.Type, trade.Pair, trade.Status)
			output.Printf("  ID:        %s\n", trade.ID)
			output.Printf("  Opened:    %s\n", FormatDateTime(trade.CreatedAt))
			output.Printf("  Entry:     %s\n", FormatCurrency(trade.EntryPrice))
			if trade.IsClosed() {
				output.Printf("  Closed:    %s\n", FormatDateTime(*trade.ClosedAt))
				output.Printf("  Exit:      %s\n", FormatCurrency(trade.ExitPrice))
				output.Printf("  P&L:       %s (%s)\n", output.FormatPnL(trade.ProfitLoss), output.FormatPercent(trade.ProfitLossPercentage))
				output.Printf("  Result:    %s\n", trade.Result)
				output.Printf("  Held:      %s\n", trade.HoldDuration().Round(time.Minute))
			}
			output.Printf("  Quantity:  %.4g\n", trade.Quantity)
			output.Printf("  Capital:   %s\n", FormatCurrency(trade.Capital))
			output.Printf("  Emotion:   %s\n", trade.EmotionalState)
			output.Printf("  Strategy:  %s\n", FormatLabels(trade.Strategy))
			output.Printf("  Indicators:%s\n", " "+FormatLabels(trade.Indicators))
			output.Printf("  Mistakes:  %s\n", FormatLabels(trade.Mistakes))
			output.Printf("  Tags:      %s\n", FormatLabels(trade.Tags))
			if trade.Notes != "" {
				output.Printf("  Notes:     %s\n", trade.Notes)
			}
			if trade.Reason != "" {
				output.Printf("  Reason:    %s\n", trade.Reason)
			}
			return nil
		},
	}
}
