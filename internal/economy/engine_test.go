package economy

import (
	"testing"
	"time"
)

func TestTaxPeriod(t *testing.T) {
	morning := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	nextDay := time.Date(2026, 3, 2, 0, 30, 0, 0, time.UTC)

	if taxPeriod(morning) != taxPeriod(evening) {
		t.Error("same day must share a tax period")
	}
	if taxPeriod(evening) == taxPeriod(nextDay) {
		t.Error("midnight must open a new tax period")
	}
	if taxPeriod(nextDay) != taxPeriod(morning)+1 {
		t.Error("periods must be consecutive day numbers")
	}
}
