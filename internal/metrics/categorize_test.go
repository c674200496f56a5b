package metrics

import (
	"testing"

	"trade-journal/internal/models"
)

func TestCategorize(t *testing.T) {
	open := models.Trade{ID: "open", Type: models.TradeBuy, Status: models.StatusOpen, EntryPrice: 100, Quantity: 1}
	win := closedTrade(models.TradeBuy, 100, 110, 1)
	win.ID = "win"
	loss := closedTrade(models.TradeBuy, 100, 90, 1)
	loss.ID = "loss"
	flat := closedTrade(models.TradeSell, 100, 100, 1)
	flat.ID = "flat"
	noExit := models.Trade{ID: "noexit", Type: models.TradeBuy, Status: models.StatusClosed, EntryPrice: 100, Quantity: 1}
	cancelled := models.Trade{ID: "cancelled", Type: models.TradeBuy, Status: models.StatusCancelled, EntryPrice: 100, ExitPrice: 110, Quantity: 1}
	pending := models.Trade{ID: "pending", Type: models.TradeSell, Status: models.StatusPending, EntryPrice: 100, Quantity: 1}

	b := Categorize([]models.Trade{open, win, loss, flat, noExit, cancelled, pending})

	if len(b.Open) != 1 || b.Open[0].ID != "open" {
		t.Errorf("Open bucket = %v, want [open]", ids(b.Open))
	}
	if len(b.Winning) != 1 || b.Winning[0].ID != "win" {
		t.Errorf("Winning bucket = %v, want [win]", ids(b.Winning))
	}
	if len(b.Losing) != 1 || b.Losing[0].ID != "loss" {
		t.Errorf("Losing bucket = %v, want [loss]", ids(b.Losing))
	}
	if len(b.BreakEven) != 1 || b.BreakEven[0].ID != "flat" {
		t.Errorf("BreakEven bucket = %v, want [flat]", ids(b.BreakEven))
	}
	if len(b.Invalid) != 3 {
		t.Errorf("Invalid bucket = %v, want [noexit cancelled pending]", ids(b.Invalid))
	}
	if b.Total() != 7 {
		t.Errorf("Total() = %d, want 7", b.Total())
	}
}

// A CLOSED trade with a missing exit price must never leak into the closed set.
func TestCategorizeClosedWithoutExitIsInvalid(t *testing.T) {
	trade := models.Trade{ID: "x", Type: models.TradeBuy, Status: models.StatusClosed, EntryPrice: 100, ExitPrice: 0, Quantity: 1}
	b := Categorize([]models.Trade{trade})
	if len(b.Invalid) != 1 {
		t.Fatalf("Invalid bucket = %v, want [x]", ids(b.Invalid))
	}
	if len(b.Closed()) != 0 {
		t.Errorf("Closed() = %v, want empty", ids(b.Closed()))
	}
}

func TestClosedOrder(t *testing.T) {
	w1 := closedTrade(models.TradeBuy, 100, 110, 1)
	w1.ID = "w1"
	l1 := closedTrade(models.TradeBuy, 100, 90, 1)
	l1.ID = "l1"
	w2 := closedTrade(models.TradeSell, 100, 90, 1)
	w2.ID = "w2"

	b := Categorize([]models.Trade{w1, l1, w2})
	closed := b.Closed()
	if len(closed) != 3 {
		t.Fatalf("Closed() length = %d, want 3", len(closed))
	}
	// Wins first in input order, then losses, then break-evens.
	want := []string{"w1", "w2", "l1"}
	for i, id := range want {
		if closed[i].ID != id {
			t.Errorf("Closed()[%d] = %s, want %s", i, closed[i].ID, id)
		}
	}
}

func ids(trades []models.Trade) []string {
	out := make([]string, len(trades))
	for i, t := range trades {
		out[i] = t.ID
	}
	return out
}
