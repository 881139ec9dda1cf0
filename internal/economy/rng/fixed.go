package rng

// Fixed is a scripted Source for tests. Each slice is consumed in order and
// the last value repeats once exhausted; zero values are returned for empty
// slices.
type Fixed struct {
	Uniform []float64
	Normal  []float64
	Ints    []int

	ui, ni, ii int
}

func (f *Fixed) Float64() float64 {
	v := take(f.Uniform, &f.ui)
	return v
}

func (f *Fixed) NormFloat64() float64 {
	return take(f.Normal, &f.ni)
}

func (f *Fixed) IntN(n int) int {
	v := take(f.Ints, &f.ii)
	if n <= 0 {
		return 0
	}
	return v % n
}

func take[T any](s []T, i *int) T {
	var zero T
	if len(s) == 0 {
		return zero
	}
	if *i >= len(s) {
		return s[len(s)-1]
	}
	v := s[*i]
	*i++
	return v
}
