package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("side", "SHORT", "must be BUY or SELL")
	msg := err.Error()
	if msg == "" {
		t.Fatal("empty error message")
	}
	for _, want := range []string{"side", "must be BUY or SELL"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestStoreErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStoreError("insert", "trade", "t1", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() failed to reach the cause")
	}

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatal("errors.As() failed")
	}
	if storeErr.Op != "insert" || storeErr.Entity != "trade" {
		t.Errorf("StoreError fields = %+v", storeErr)
	}
}

func TestInsightErrorUnwrap(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := NewInsightError("commentary", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is() failed to reach the cause")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) must stay nil")
	}

	wrapped := Wrap(ErrTradeNotFound, "closing position")
	if !errors.Is(wrapped, ErrTradeNotFound) {
		t.Error("wrapped sentinel not reachable via errors.Is")
	}

	formatted := Wrapf(ErrInvalidPeriod, "period %q", "fortnightly")
	if !errors.Is(formatted, ErrInvalidPeriod) {
		t.Error("Wrapf lost the sentinel")
	}
	if !strings.Contains(formatted.Error(), "fortnightly") {
		t.Errorf("Wrapf message = %q", formatted.Error())
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrTradeNotFound, ErrTradeClosed, ErrTradeNotClosed,
		ErrInvalidPeriod, ErrInvalidDateRange, ErrDataNotFound,
		ErrDatabaseError, ErrNoAPIKey, ErrRateLimited,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v matches %v", a, b)
			}
		}
	}
}
