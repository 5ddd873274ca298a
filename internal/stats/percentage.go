package stats

import (
	"math"

	"dompet/internal/models"
)

// Status bands, closed on the lower bound.
const (
	WarningThreshold = 80
	OverThreshold    = 100
)

// maxExact bounds the operands for which 200*part cannot overflow.
const maxExact = math.MaxInt64 / 200

// Percentage returns part/total*100 rounded half up, or 0 when total <= 0.
func Percentage(part, total int64) int {
	if total <= 0 {
		return 0
	}
	if part > maxExact || part < -maxExact || total > maxExact {
		return int(math.Floor(float64(part)/float64(total)*100 + 0.5))
	}
	return int(floorDiv(200*part+total, 2*total))
}

// StatusFor classifies a utilization percentage.
func StatusFor(pct int) models.BudgetStatus {
	switch {
	case pct >= OverThreshold:
		return models.BudgetStatusOver
	case pct >= WarningThreshold:
		return models.BudgetStatusWarning
	default:
		return models.BudgetStatusNormal
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
