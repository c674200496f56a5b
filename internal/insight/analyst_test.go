package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// fakeLLM counts calls and returns a fixed response.
type fakeLLM struct {
	calls      int
	lastPrompt string
	response   string
	err        error
}

func (f *fakeLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastPrompt = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func sampleMetrics() *models.PerformanceMetrics {
	return &models.PerformanceMetrics{
		UserID:        "u1",
		Period:        models.PeriodAllTime,
		TotalTrades:   4,
		WinningTrades: 2,
		LosingTrades:  2,
		WinRate:       50,
		TotalPnL:      30,
		AveragePnL:    7.5,
		LargestWin:    40,
		LargestLoss:   -25,
		ProfitFactor:  1.6,
		SharpeRatio:   0.4,
		MaxDrawdown:   0.3,
		CommonMistakes: []models.MistakeStat{
			{Description: "FOMO", Count: 2, Impact: -15},
		},
		MostProfitableStrategies: []models.StrategyStat{
			{Strategy: "breakout", PnL: 55, WinRate: 66},
		},
		BehavioralPatterns: models.BehavioralPatterns{
			TimeOfDay:         map[int]models.BucketStat{9: {Trades: 3, WinRate: 66}},
			OverallConfidence: 0.75,
			RiskManagement:    0.5,
		},
		CreatedAt: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestCommentary(t *testing.T) {
	llm := &fakeLLM{response: "Tighten up your exits."}
	analyst := NewAnalyst(llm, zerolog.Nop(), time.Hour, nil)

	text, err := analyst.Commentary(context.Background(), sampleMetrics(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Tighten up your exits.", text)
	assert.Equal(t, 1, llm.calls)

	// The prompt carries the numbers the model is asked to reason over.
	assert.Contains(t, llm.lastPrompt, "Win rate: 50.0%")
	assert.Contains(t, llm.lastPrompt, "FOMO")
	assert.Contains(t, llm.lastPrompt, "breakout")
	assert.Contains(t, llm.lastPrompt, "09:00")
}

func TestCommentaryCached(t *testing.T) {
	llm := &fakeLLM{response: "same history, same take"}
	analyst := NewAnalyst(llm, zerolog.Nop(), time.Hour, nil)
	m := sampleMetrics()

	first, err := analyst.Commentary(context.Background(), m, nil)
	require.NoError(t, err)
	second, err := analyst.Commentary(context.Background(), m, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, llm.calls, "second call must be served from the memo")

	// A new snapshot (different CreatedAt) misses the memo.
	fresh := sampleMetrics()
	fresh.CreatedAt = fresh.CreatedAt.Add(time.Minute)
	_, err = analyst.Commentary(context.Background(), fresh, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, llm.calls)
}

func TestCommentaryDefaultData(t *testing.T) {
	llm := &fakeLLM{response: "should never be called"}
	analyst := NewAnalyst(llm, zerolog.Nop(), time.Hour, nil)

	m := sampleMetrics()
	m.IsDefaultData = true
	m.DefaultReason = "no closed trades"

	text, err := analyst.Commentary(context.Background(), m, nil)
	require.NoError(t, err)
	assert.True(t, strings.Contains(text, "Not enough closed trades"))
	assert.Equal(t, 0, llm.calls, "default-data snapshots must not hit the API")
}

func TestCommentaryNoClient(t *testing.T) {
	analyst := NewAnalyst(nil, zerolog.Nop(), time.Hour, nil)
	_, err := analyst.Commentary(context.Background(), sampleMetrics(), nil)
	assert.ErrorIs(t, err, apperrors.ErrNoAPIKey)
}

func TestCommentaryLLMFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("quota exceeded")}
	analyst := NewAnalyst(llm, zerolog.Nop(), time.Hour, nil)

	_, err := analyst.Commentary(context.Background(), sampleMetrics(), nil)
	require.Error(t, err)

	var insightErr *apperrors.InsightError
	assert.True(t, errors.As(err, &insightErr))
}

func TestBuildPromptRecentTrades(t *testing.T) {
	closedAt := time.Now()
	recent := []models.Trade{
		{
			Pair:       "BTC/USDT",
			Type:       models.TradeBuy,
			Status:     models.StatusClosed,
			EntryPrice: 100,
			ExitPrice:  110,
			Quantity:   2,
			ProfitLoss: 20,
			Mistakes:   []string{"oversized"},
			ClosedAt:   &closedAt,
		},
		{
			Pair:       "ETH/USDT",
			Type:       models.TradeSell,
			Status:     models.StatusOpen,
			EntryPrice: 3000,
			Quantity:   1,
		},
	}

	prompt := buildPrompt(sampleMetrics(), recent)
	assert.Contains(t, prompt, "BTC/USDT")
	assert.Contains(t, prompt, "oversized")
	assert.Contains(t, prompt, "(open)")
}
