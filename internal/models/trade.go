// Package models defines the core data types shared across the application.
package models

import "time"

// TradeType is the direction of a trade.
type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// TradeStatus is the lifecycle state of a trade.
type TradeStatus string

const (
	StatusOpen      TradeStatus = "OPEN"
	StatusClosed    TradeStatus = "CLOSED"
	StatusCancelled TradeStatus = "CANCELLED"
	StatusPending   TradeStatus = "PENDING"
)

// TradeResult is the stored outcome of a closed trade.
type TradeResult string

const (
	ResultWin       TradeResult = "WIN"
	ResultLoss      TradeResult = "LOSS"
	ResultBreakeven TradeResult = "BREAKEVEN"
	ResultUnknown   TradeResult = "UNKNOWN"
)

// Trade represents one logged position.
type Trade struct {
	ID     string
	UserID string

	Pair string
	Type TradeType

	Status TradeStatus

	EntryPrice float64
	ExitPrice  float64
	Quantity   float64

	Strategy   []string
	Indicators []string
	Mistakes   []string
	Tags       []string

	Notes  string
	Reason string

	// Written at close time and trusted as a cache, but always recomputable.
	Result               TradeResult
	ProfitLoss           float64
	ProfitLossPercentage float64

	EmotionalState string
	Capital        float64

	CreatedAt time.Time
	UpdatedAt time.Time
	ClosedAt  *time.Time
}

// IsClosed reports whether the trade is closed with a usable exit price.
func (t *Trade) IsClosed() bool {
	return t.Status == StatusClosed && t.ExitPrice > 0
}

// HoldDuration returns the time between entry and close, or 0 for open trades.
func (t *Trade) HoldDuration() time.Duration {
	if t.ClosedAt == nil {
		return 0
	}
	return t.ClosedAt.Sub(t.CreatedAt)
}

// JournalNote is a free-form dated note, optionally tied to a trade.
type JournalNote struct {
	ID        string
	UserID    string
	TradeID   string
	Date      time.Time
	Content   string
	Tags      []string
	Mood      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
