// Package cli provides the command-line interface for the trade journal.
package cli

import (
	"fmt"
	"strings"
	"time"
)

// FormatCurrency formats an amount with thousands separators and two decimals.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	result := "$" + strings.Join(groups, ",") + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// FormatDate formats a date for display.
func FormatDate(t time.Time) string {
	return t.Format("02 Jan 2006")
}

// FormatTime formats a time for display.
func FormatTime(t time.Time) string {
	return t.Format("15:04:05")
}

// FormatDateTime formats a timestamp for display.
func FormatDateTime(t time.Time) string {
	return t.Format("02 Jan 2006 15:04")
}

// TruncateString truncates a string to maxLen characters, adding an ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// FormatLabels joins a label set for display, or a dash when empty.
func FormatLabels(labels []string) string {
	if len(labels) == 0 {
		return "-"
	}
	return strings.Join(labels, ", ")
}

// FormatScore renders a [0,1] behavioral score as a 5-segment bar.
func FormatScore(score float64) string {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	filled := int(score*5 + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", 5-filled) + fmt.Sprintf(" %.2f", score)
}
