package classes

import "testing"

var testBounds = []int64{10_000, 50_000, 200_000, 1_000_000}

func TestClassify(t *testing.T) {
	c := NewClassifier(testBounds)

	tests := []struct {
		name     string
		netWorth int64
		want     Class
	}{
		{name: "negative net worth", netWorth: -5_000, want: Lower},
		{name: "zero", netWorth: 0, want: Lower},
		{name: "lower upper bound", netWorth: 10_000, want: Lower},
		{name: "just above lower", netWorth: 10_001, want: Middle},
		{name: "middle", netWorth: 50_000, want: Middle},
		{name: "upper", netWorth: 200_000, want: Upper},
		{name: "elite", netWorth: 999_999, want: Elite},
		{name: "elite upper bound", netWorth: 1_000_000, want: Elite},
		{name: "oligarch", netWorth: 1_000_001, want: Oligarch},
		{name: "very rich", netWorth: 1 << 50, want: Oligarch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.netWorth); got != tt.want {
				t.Errorf("Classify(%d) = %v, want %v", tt.netWorth, got, tt.want)
			}
		})
	}
}

func TestClassifyMonotonic(t *testing.T) {
	c := NewClassifier(testBounds)

	prev := c.Classify(-1_000_000)
	for w := int64(0); w <= 2_000_000; w += 997 {
		got := c.Classify(w)
		if got < prev {
			t.Fatalf("Classify not monotonic: Classify(%d) = %v below previous %v", w, got, prev)
		}
		prev = got
	}
}

func TestClassifyExhaustive(t *testing.T) {
	c := NewClassifier(testBounds)

	// Every value maps to exactly one class in range.
	for _, w := range []int64{-1, 0, 9_999, 10_000, 10_001, 49_999, 200_001, 5_000_000} {
		got := c.Classify(w)
		if got < Lower || got > Oligarch {
			t.Errorf("Classify(%d) = %v out of range", w, got)
		}
	}
}
