package cli

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trade-journal/internal/config"
	"trade-journal/internal/insight"
	"trade-journal/internal/logging"
	"trade-journal/internal/metrics"
	"trade-journal/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-06-01"
)

// App holds the application dependencies.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Store      store.TradeStore
	Calculator *metrics.Calculator
	Analyst    *insight.Analyst
}

// NewRootCmd creates the root command for the CLI. The returned shutdown
// function joins the background snapshot persist and closes the store; the
// caller runs it after Execute, whether or not the command failed.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) (*cobra.Command, func()) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	tradeStore, err := store.NewSQLiteStore(cfg.Journal.DatabasePath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = tradeStore
		logger.Debug().Str("path", cfg.Journal.DatabasePath).Msg("SQLite store initialized")
	}

	if app.Store != nil {
		app.Calculator = metrics.NewCalculator(app.Store, logger, metrics.Options{
			RiskFreeRate: cfg.Metrics.RiskFreeRate,
			CacheTTL:     cfg.CacheTTL(),
		})
	}

	if cfg.Credentials.OpenAI.APIKey != "" {
		llm := insight.NewOpenAIClient(cfg.Credentials.OpenAI.APIKey, cfg.Insight.Model)
		app.Analyst = insight.NewAnalyst(llm, logger, cfg.CommentaryTTL(), nil)
		logger.Debug().Str("model", cfg.Insight.Model).Msg("OpenAI LLM client initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Trade Journal - trading journal with performance analytics",
		Long: `Trade Journal is a trading journal CLI.

Log individual trades with strategy tags, mistakes, and notes; derive
performance analytics (win rate, profit factor, Sharpe ratio, drawdown,
behavioral patterns); and generate AI commentary over your history.

Use 'journal help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trade-journal)")
	rootCmd.PersistentFlags().String("user", "", "user ID (default: journal.user_id from config)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addMetricsCommands(rootCmd, app)
	addNoteCommands(rootCmd, app)
	addInsightCommands(rootCmd, app)

	shutdown := func() {
		if app.Calculator != nil {
			app.Calculator.Close(5 * time.Second)
		}
		if app.Store != nil {
			if err := app.Store.Close(); err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to close store")
			}
		}
	}
	return rootCmd, shutdown
}

// userID resolves the acting user from the --user flag or config.
func (app *App) userID(cmd *cobra.Command) string {
	if user, _ := cmd.Flags().GetString("user"); user != "" {
		return user
	}
	return app.Config.Journal.UserID
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Trade Journal v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Journal Configuration")
	output.Printf("  User ID:         %s\n", cfg.Journal.UserID)
	output.Printf("  Database:        %s\n", cfg.Journal.DatabasePath)
	output.Printf("  Default Capital: %s\n", FormatCurrency(cfg.Journal.DefaultCapital))
	output.Println()

	output.Bold("Metrics Configuration")
	output.Printf("  Risk-Free Rate:  %.2f\n", cfg.Metrics.RiskFreeRate)
	output.Printf("  Cache TTL:       %d min\n", cfg.Metrics.CacheTTLMinutes)
	output.Println()

	output.Bold("Insight Configuration")
	output.Printf("  Model:           %s\n", cfg.Insight.Model)
	output.Printf("  Commentary TTL:  %d min\n", cfg.Insight.CommentaryTTLMinutes)
	output.Printf("  Recent Trades:   %d\n", cfg.Insight.RecentTrades)
}
