package cli

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

// addNoteCommands adds journal note commands.
func addNoteCommands(rootCmd *cobra.Command, app *App) {
	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Journal notes",
		Long:  "Write and search free-form journal notes, optionally attached to a trade.",
	}

	noteCmd.AddCommand(newNoteAddCmd(app))
	noteCmd.AddCommand(newNoteListCmd(app))

	rootCmd.AddCommand(noteCmd)
}

func newNoteAddCmd(app *App) *cobra.Command {
	var (
		tradeID string
		mood    string
		tags    []string
	)

	cmd := &cobra.Command{
		Use:   "add CONTENT",
		Short: "Write a journal note",
		Long: `Write a journal note.

Attach it to a trade with --trade to keep post-mortems next to the
position they describe.

Examples:
  journal note add "Choppy session, stayed flat after the open"
  journal note add "Exited too early again" --trade 4f3c2a1b --mood anxious --tag exits`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			content := strings.TrimSpace(args[0])
			if content == "" {
				return apperrors.NewValidationError("content", "", "must not be empty")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			if tradeID != "" {
				if _, err := app.Store.GetTrade(ctx, tradeID); err != nil {
					return err
				}
			}

			now := time.Now()
			note := models.JournalNote{
				ID:        uuid.New().String(),
				UserID:    app.userID(cmd),
				TradeID:   tradeID,
				Date:      now,
				Content:   content,
				Tags:      tags,
				Mood:      mood,
				CreatedAt: now,
				UpdatedAt: now,
			}

			if err := app.Store.SaveNote(ctx, &note); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(note)
			}
			output.Success("✓ Note saved")
			output.Dim("ID: %s", note.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&tradeID, "trade", "", "attach the note to a trade ID")
	cmd.Flags().StringVar(&mood, "mood", "", "mood while writing")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "note tags")

	return cmd
}

func newNoteListCmd(app *App) *cobra.Command {
	var (
		tradeID string
		tags    []string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			notes, err := app.Store.GetNotes(ctx, store.NoteFilter{
				UserID:  app.userID(cmd),
				TradeID: tradeID,
				Tags:    tags,
				Limit:   limit,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(notes)
			}
			if len(notes) == 0 {
				output.Info("No notes found")
				return nil
			}

			for _, n := range notes {
				header := FormatDateTime(n.Date)
				if n.Mood != "" {
					header += "  [" + n.Mood + "]"
				}
				if n.TradeID != "" {
					header += "  trade:" + TruncateString(n.TradeID, 8)
				}
				output.Bold(header)
				output.Println("  " + n.Content)
				if len(n.Tags) > 0 {
					output.Dim("  tags: %s", FormatLabels(n.Tags))
				}
				output.Println()
			}
			output.Dim("%d note(s)", len(notes))
			return nil
		},
	}

	cmd.Flags().StringVar(&tradeID, "trade", "", "filter by trade ID")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "filter by tags (any match)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of notes")

	return cmd
}
