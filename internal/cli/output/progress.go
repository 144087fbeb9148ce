package output

import (
	"fmt"
	"strings"
)

// DefaultBarWidth is the cell count of a progress bar.
const DefaultBarWidth = 20

// Bar renders percent (0 to 100) as a fixed-width bar followed by the
// rounded percentage, e.g. "████░░░░ 50%". Out-of-range values are clamped.
func Bar(percent float64, width int) string {
	if width <= 0 {
		width = DefaultBarWidth
	}
	switch {
	case percent < 0:
		percent = 0
	case percent > 100:
		percent = 100
	}

	filled := int(float64(width) * percent / 100)
	return fmt.Sprintf("%s%s %3.0f%%",
		strings.Repeat("█", filled),
		strings.Repeat("░", width-filled),
		percent,
	)
}

// Ratio returns part as a percentage of whole, or 0 when whole is not
// positive.
func Ratio(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
