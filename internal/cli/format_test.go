package cli

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{5, "$5.00"},
		{1234.5, "$1,234.50"},
		{1000000, "$1,000,000.00"},
		{-42.1, "-$42.10"},
		{999.999, "$1,000.00"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.amount); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

// For any reasonable amount the formatted string parses back to the same
// value after stripping separators.
func TestProperty_CurrencyRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatCurrency preserves the value", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatCurrency(amount)

			cleaned := strings.NewReplacer("$", "", ",", "").Replace(formatted)
			parsed, err := strconv.ParseFloat(cleaned, 64)
			if err != nil {
				t.Logf("unparseable output %q for %v", formatted, amount)
				return false
			}

			// Two-decimal rendering rounds; compare at that precision.
			diff := parsed - amount
			if diff < 0 {
				diff = -diff
			}
			return diff <= 0.005+1e-9
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.TestingRun(t)
}

func TestFormatDateAndTime(t *testing.T) {
	ts := time.Date(2024, 3, 4, 9, 30, 15, 0, time.UTC)
	if got := FormatDate(ts); got != "04 Mar 2024" {
		t.Errorf("FormatDate() = %q", got)
	}
	if got := FormatTime(ts); got != "09:30:15" {
		t.Errorf("FormatTime() = %q", got)
	}
	if got := FormatDateTime(ts); got != "04 Mar 2024 09:30" {
		t.Errorf("FormatDateTime() = %q", got)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abc", 2, "ab"},
	}
	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormatLabels(t *testing.T) {
	if got := FormatLabels(nil); got != "-" {
		t.Errorf("FormatLabels(nil) = %q, want -", got)
	}
	if got := FormatLabels([]string{"a", "b"}); got != "a, b" {
		t.Errorf("FormatLabels() = %q", got)
	}
}

func TestFormatScore(t *testing.T) {
	if got := FormatScore(1); !strings.HasPrefix(got, "█████") {
		t.Errorf("FormatScore(1) = %q, want full bar", got)
	}
	if got := FormatScore(0); !strings.HasPrefix(got, "░░░░░") {
		t.Errorf("FormatScore(0) = %q, want empty bar", got)
	}
	// Out-of-range inputs clamp instead of panicking.
	if got := FormatScore(7); !strings.HasSuffix(got, "1.00") {
		t.Errorf("FormatScore(7) = %q, want clamp to 1.00", got)
	}
	if got := FormatScore(-1); !strings.HasSuffix(got, "0.00") {
		t.Errorf("FormatScore(-1) = %q, want clamp to 0.00", got)
	}
}

func TestTableRender(t *testing.T) {
	var sb strings.Builder
	output := &Output{writer: &sb}

	table := NewTable(output, "PAIR", "P&L")
	table.AddRow("BTC/USDT", "+$20.00")
	table.AddRow("ETH/USDT", "-$10.00")
	table.Render()

	rendered := sb.String()
	if !strings.Contains(rendered, "PAIR") || !strings.Contains(rendered, "BTC/USDT") {
		t.Errorf("table output missing content:\n%s", rendered)
	}
	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("got %d lines, want header + separator + 2 rows", len(lines))
	}
}
