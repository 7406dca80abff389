package format

import (
	"fmt"
	"time"

	"crywolf/internal/measure"
)

// Value formats a measure with prec decimals, or "N/A".
func Value(v measure.Value, prec int) string { return v.Format(prec) }

// Percent formats a [0,1] measure as a percentage with one decimal.
func Percent(v measure.Value) string {
	f, ok := v.Get()
	if !ok {
		return measure.NAString
	}
	return fmt.Sprintf("%.1f%%", f*100)
}

// PValue formats a p-value, flooring tiny values at "<0.001".
func PValue(p float64) string {
	if p < 0.001 {
		return "<0.001"
	}
	return fmt.Sprintf("%.3f", p)
}

// FmtDuration formats a duration as "Xm Ys" or "Ys".
func FmtDuration(d time.Duration) string {
	s := int(d.Seconds())
	if s >= 60 {
		return fmt.Sprintf("%dm %ds", s/60, s%60)
	}
	return fmt.Sprintf("%ds", s)
}

// Minutes formats fractional minutes as "Xm Ys".
func Minutes(v measure.Value) string {
	f, ok := v.Get()
	if !ok {
		return measure.NAString
	}
	return FmtDuration(time.Duration(f * float64(time.Minute)))
}

// Truncate shortens s to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// BoolMark returns "✓" for true and "✗" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}
