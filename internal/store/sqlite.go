package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// SQLiteStore implements TradeStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based trade store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trades table: one row per logged position
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		pair TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL,
		quantity REAL NOT NULL,
		strategy TEXT,
		indicators TEXT,
		mistakes TEXT,
		tags TEXT,
		notes TEXT,
		reason TEXT,
		result TEXT DEFAULT 'UNKNOWN',
		profit_loss REAL,
		profit_loss_pct REAL,
		emotional_state TEXT,
		capital REAL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		closed_at DATETIME
	);

	-- Journal notes table
	CREATE TABLE IF NOT EXISTS journal (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		trade_id TEXT,
		date DATE NOT NULL,
		content TEXT NOT NULL,
		tags TEXT,
		mood TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Metrics snapshot history
	CREATE TABLE IF NOT EXISTS metrics_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		period TEXT NOT NULL,
		start_date DATETIME,
		end_date DATETIME,
		total_trades INTEGER NOT NULL,
		winning_trades INTEGER NOT NULL,
		losing_trades INTEGER NOT NULL,
		win_rate REAL NOT NULL,
		total_pnl REAL NOT NULL,
		average_pnl REAL NOT NULL,
		largest_win REAL NOT NULL,
		largest_loss REAL NOT NULL,
		average_win_size REAL NOT NULL,
		average_loss_size REAL NOT NULL,
		profit_factor REAL NOT NULL,
		sharpe_ratio REAL NOT NULL,
		max_drawdown REAL NOT NULL,
		risk_reward_ratio REAL NOT NULL,
		breakdowns TEXT,
		is_default INTEGER DEFAULT 0,
		default_reason TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(user_id);
	CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status);
	CREATE INDEX IF NOT EXISTS idx_trades_created ON trades(created_at);
	CREATE INDEX IF NOT EXISTS idx_journal_user_date ON journal(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_snapshots_user ON metrics_snapshots(user_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Trades
// ============================================================================

const tradeColumns = `id, user_id, pair, type, status, entry_price, exit_price, quantity,
	strategy, indicators, mistakes, tags, notes, reason, result,
	profit_loss, profit_loss_pct, emotional_state, capital,
	created_at, updated_at, closed_at`

// SaveTrade inserts a new trade.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.Trade) error {
	strategy, _ := json.Marshal(trade.Strategy)
	indicators, _ := json.Marshal(trade.Indicators)
	mistakes, _ := json.Marshal(trade.Mistakes)
	tags, _ := json.Marshal(trade.Tags)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.UserID, trade.Pair, trade.Type, trade.Status,
		trade.EntryPrice, trade.ExitPrice, trade.Quantity,
		string(strategy), string(indicators), string(mistakes), string(tags),
		trade.Notes, trade.Reason, trade.Result,
		trade.ProfitLoss, trade.ProfitLossPercentage, trade.EmotionalState, trade.Capital,
		trade.CreatedAt, trade.UpdatedAt, trade.ClosedAt)
	if err != nil {
		return apperrors.NewStoreError("insert", "trade", trade.ID, err)
	}
	return nil
}

// UpdateTrade rewrites an existing trade.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	strategy, _ := json.Marshal(trade.Strategy)
	indicators, _ := json.Marshal(trade.Indicators)
	mistakes, _ := json.Marshal(trade.Mistakes)
	tags, _ := json.Marshal(trade.Tags)

	res, err := s.db.ExecContext(ctx, `
		UPDATE trades SET pair = ?, type = ?, status = ?, entry_price = ?, exit_price = ?,
			quantity = ?, strategy = ?, indicators = ?, mistakes = ?, tags = ?,
			notes = ?, reason = ?, result = ?, profit_loss = ?, profit_loss_pct = ?,
			emotional_state = ?, capital = ?, updated_at = ?, closed_at = ?
		WHERE id = ?
	`, trade.Pair, trade.Type, trade.Status, trade.EntryPrice, trade.ExitPrice,
		trade.Quantity, string(strategy), string(indicators), string(mistakes), string(tags),
		trade.Notes, trade.Reason, trade.Result, trade.ProfitLoss, trade.ProfitLossPercentage,
		trade.EmotionalState, trade.Capital, trade.UpdatedAt, trade.ClosedAt,
		trade.ID)
	if err != nil {
		return apperrors.NewStoreError("update", "trade", trade.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrTradeNotFound
	}
	return nil
}

// GetTrade fetches one trade by ID.
func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id)
	trade, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrTradeNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get", "trade", id, err)
	}
	return trade, nil
}

// GetTradesForUser fetches the user's full trade history, oldest first. This
// is the upstream contract the metrics calculator consumes.
func (s *SQLiteStore) GetTradesForUser(ctx context.Context, userID string) ([]models.Trade, error) {
	return s.GetTrades(ctx, TradeFilter{UserID: userID})
}

// GetTrades retrieves trades matching the filter, oldest first by default,
// newest first with filter.Descending.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE 1=1`
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.Pair != "" {
		query += " AND pair = ?"
		args = append(args, filter.Pair)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if !filter.StartDate.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, filter.EndDate)
	}

	if filter.Descending {
		query += " ORDER BY created_at DESC"
	} else {
		query += " ORDER BY created_at ASC"
	}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("query", "trades", "filter query failed", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("scan", "trade", "row scan failed", err)
		}
		trades = append(trades, *trade)
	}
	return trades, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade reads one trade row and normalizes it, so every consumer sees
// canonical defaulted fields.
func scanTrade(row scanner) (*models.Trade, error) {
	var t models.Trade
	var strategyJSON, indicatorsJSON, mistakesJSON, tagsJSON sql.NullString
	var notes, reason, result, emotionalState sql.NullString
	var exitPrice, profitLoss, profitLossPct, capital sql.NullFloat64
	var closedAt sql.NullTime

	err := row.Scan(&t.ID, &t.UserID, &t.Pair, &t.Type, &t.Status,
		&t.EntryPrice, &exitPrice, &t.Quantity,
		&strategyJSON, &indicatorsJSON, &mistakesJSON, &tagsJSON,
		&notes, &reason, &result,
		&profitLoss, &profitLossPct, &emotionalState, &capital,
		&t.CreatedAt, &t.UpdatedAt, &closedAt)
	if err != nil {
		return nil, err
	}

	if strategyJSON.Valid {
		json.Unmarshal([]byte(strategyJSON.String), &t.Strategy)
	}
	if indicatorsJSON.Valid {
		json.Unmarshal([]byte(indicatorsJSON.String), &t.Indicators)
	}
	if mistakesJSON.Valid {
		json.Unmarshal([]byte(mistakesJSON.String), &t.Mistakes)
	}
	if tagsJSON.Valid {
		json.Unmarshal([]byte(tagsJSON.String), &t.Tags)
	}
	t.Notes = notes.String
	t.Reason = reason.String
	t.Result = models.TradeResult(result.String)
	t.EmotionalState = emotionalState.String
	t.ExitPrice = exitPrice.Float64
	t.ProfitLoss = profitLoss.Float64
	t.ProfitLossPercentage = profitLossPct.Float64
	t.Capital = capital.Float64
	if closedAt.Valid {
		ts := closedAt.Time
		t.ClosedAt = &ts
	}

	normalized := models.Normalize(t)
	return &normalized, nil
}

// ============================================================================
// Journal notes
// ============================================================================

// SaveNote saves a journal note.
func (s *SQLiteStore) SaveNote(ctx context.Context, note *models.JournalNote) error {
	tags, _ := json.Marshal(note.Tags)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO journal (id, user_id, trade_id, date, content, tags, mood, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, note.ID, note.UserID, note.TradeID, note.Date, note.Content, string(tags), note.Mood, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return apperrors.NewStoreError("insert", "note", note.ID, err)
	}
	return nil
}

// GetNotes retrieves journal notes matching the filter, newest first.
func (s *SQLiteStore) GetNotes(ctx context.Context, filter NoteFilter) ([]models.JournalNote, error) {
	query := "SELECT id, user_id, trade_id, date, content, tags, mood, created_at, updated_at FROM journal WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.TradeID != "" {
		query += " AND trade_id = ?"
		args = append(args, filter.TradeID)
	}
	if !filter.StartDate.IsZero() {
		query += " AND date >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND date <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY date DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("query", "notes", "filter query failed", err)
	}
	defer rows.Close()

	var notes []models.JournalNote
	for rows.Next() {
		var n models.JournalNote
		var tradeID, tagsJSON, mood sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &tradeID, &n.Date, &n.Content, &tagsJSON, &mood, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, apperrors.NewStoreError("scan", "note", "row scan failed", err)
		}
		n.TradeID = tradeID.String
		n.Mood = mood.String
		if tagsJSON.Valid {
			json.Unmarshal([]byte(tagsJSON.String), &n.Tags)
		}

		// Tag filter applied in memory: tags are stored as a JSON list.
		if len(filter.Tags) > 0 && !hasAnyTag(n.Tags, filter.Tags) {
			continue
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// ============================================================================
// Metrics snapshots
// ============================================================================

// snapshotBreakdowns is the JSON-encoded qualitative portion of a snapshot.
type snapshotBreakdowns struct {
	CommonMistakes           []models.MistakeStat      `json:"common_mistakes"`
	MostProfitableStrategies []models.StrategyStat     `json:"most_profitable_strategies"`
	MostUsedIndicators       []models.IndicatorStat    `json:"most_used_indicators"`
	BehavioralPatterns       models.BehavioralPatterns `json:"behavioral_patterns"`
}

// SaveMetricsSnapshot appends a computed snapshot to the history log.
func (s *SQLiteStore) SaveMetricsSnapshot(ctx context.Context, m *models.PerformanceMetrics) error {
	breakdowns, err := json.Marshal(snapshotBreakdowns{
		CommonMistakes:           m.CommonMistakes,
		MostProfitableStrategies: m.MostProfitableStrategies,
		MostUsedIndicators:       m.MostUsedIndicators,
		BehavioralPatterns:       m.BehavioralPatterns,
	})
	if err != nil {
		return apperrors.NewStoreError("marshal", "snapshot", m.UserID, err)
	}

	isDefault := 0
	if m.IsDefaultData {
		isDefault = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO metrics_snapshots (user_id, period, start_date, end_date,
			total_trades, winning_trades, losing_trades, win_rate, total_pnl, average_pnl,
			largest_win, largest_loss, average_win_size, average_loss_size,
			profit_factor, sharpe_ratio, max_drawdown, risk_reward_ratio,
			breakdowns, is_default, default_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.UserID, m.Period, m.StartDate, m.EndDate,
		m.TotalTrades, m.WinningTrades, m.LosingTrades, m.WinRate, m.TotalPnL, m.AveragePnL,
		m.LargestWin, m.LargestLoss, m.AverageWinSize, m.AverageLossSize,
		m.ProfitFactor, m.SharpeRatio, m.MaxDrawdown, m.RiskRewardRatio,
		string(breakdowns), isDefault, m.DefaultReason, m.CreatedAt)
	if err != nil {
		return apperrors.NewStoreError("insert", "snapshot", m.UserID, err)
	}
	return nil
}

// GetMetricsSnapshots retrieves snapshot history, newest first.
func (s *SQLiteStore) GetMetricsSnapshots(ctx context.Context, filter SnapshotFilter) ([]models.PerformanceMetrics, error) {
	query := `SELECT user_id, period, start_date, end_date,
		total_trades, winning_trades, losing_trades, win_rate, total_pnl, average_pnl,
		largest_win, largest_loss, average_win_size, average_loss_size,
		profit_factor, sharpe_ratio, max_drawdown, risk_reward_ratio,
		breakdowns, is_default, default_reason, created_at
	FROM metrics_snapshots WHERE 1=1`
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.Period != "" {
		query += " AND period = ?"
		args = append(args, filter.Period)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("query", "snapshots", "filter query failed", err)
	}
	defer rows.Close()

	var snapshots []models.PerformanceMetrics
	for rows.Next() {
		var m models.PerformanceMetrics
		var startDate, endDate sql.NullTime
		var breakdownsJSON, defaultReason sql.NullString
		var isDefault int

		if err := rows.Scan(&m.UserID, &m.Period, &startDate, &endDate,
			&m.TotalTrades, &m.WinningTrades, &m.LosingTrades, &m.WinRate, &m.TotalPnL, &m.AveragePnL,
			&m.LargestWin, &m.LargestLoss, &m.AverageWinSize, &m.AverageLossSize,
			&m.ProfitFactor, &m.SharpeRatio, &m.MaxDrawdown, &m.RiskRewardRatio,
			&breakdownsJSON, &isDefault, &defaultReason, &m.CreatedAt); err != nil {
			return nil, apperrors.NewStoreError("scan", "snapshot", "row scan failed", err)
		}

		if startDate.Valid {
			ts := startDate.Time
			m.StartDate = &ts
		}
		if endDate.Valid {
			ts := endDate.Time
			m.EndDate = &ts
		}
		if breakdownsJSON.Valid {
			var b snapshotBreakdowns
			if err := json.Unmarshal([]byte(breakdownsJSON.String), &b); err == nil {
				m.CommonMistakes = b.CommonMistakes
				m.MostProfitableStrategies = b.MostProfitableStrategies
				m.MostUsedIndicators = b.MostUsedIndicators
				m.BehavioralPatterns = b.BehavioralPatterns
			}
		}
		m.IsDefaultData = isDefault == 1
		m.DefaultReason = defaultReason.String

		snapshots = append(snapshots, m)
	}
	return snapshots, rows.Err()
}
