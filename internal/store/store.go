// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"trade-journal/internal/models"
)

// TradeStore defines the interface for data persistence.
type TradeStore interface {
	// Trades
	SaveTrade(ctx context.Context, trade *models.Trade) error
	UpdateTrade(ctx context.Context, trade *models.Trade) error
	GetTrade(ctx context.Context, id string) (*models.Trade, error)
	GetTradesForUser(ctx context.Context, userID string) ([]models.Trade, error)
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)

	// Journal notes
	SaveNote(ctx context.Context, note *models.JournalNote) error
	GetNotes(ctx context.Context, filter NoteFilter) ([]models.JournalNote, error)

	// Metrics snapshot history
	SaveMetricsSnapshot(ctx context.Context, m *models.PerformanceMetrics) error
	GetMetricsSnapshots(ctx context.Context, filter SnapshotFilter) ([]models.PerformanceMetrics, error)

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades. Results come back
// oldest first unless Descending is set, which flips the order so Limit
// selects the most recent trades.
type TradeFilter struct {
	UserID     string
	Pair       string
	Status     models.TradeStatus
	StartDate  time.Time
	EndDate    time.Time
	Limit      int
	Descending bool
}

// NoteFilter represents filters for querying journal notes.
type NoteFilter struct {
	UserID    string
	TradeID   string
	StartDate time.Time
	EndDate   time.Time
	Tags      []string
	Limit     int
}

// SnapshotFilter represents filters for querying metrics snapshots.
type SnapshotFilter struct {
	UserID string
	Period models.MetricsPeriod
	Limit  int
}
