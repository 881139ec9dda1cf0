// Package classes maps net worth to one of five economic classes. The
// brackets select the tax rate and loan benefit tables used elsewhere.
package classes

type Class int

const (
	Lower Class = iota
	Middle
	Upper
	Elite
	Oligarch
)

// Count is the number of classes; per-class config tables are indexed by it.
const Count = 5

var classNames = [Count]string{"Lower Class", "Middle Class", "Upper Class", "Elite", "Oligarch"}

func (c Class) String() string {
	if c < 0 || int(c) >= Count {
		return "unknown"
	}
	return classNames[c]
}

// Classifier holds the ascending upper bounds for Lower..Elite. Anything
// above the last bound is Oligarch. Brackets never overlap and cover every
// net worth, negative values included.
type Classifier struct {
	upperBounds []int64
}

func NewClassifier(upperBounds []int64) *Classifier {
	bounds := make([]int64, len(upperBounds))
	copy(bounds, upperBounds)
	return &Classifier{upperBounds: bounds}
}

// Classify is pure: no caching, re-evaluated on demand since net worth moves
// with every transaction.
func (c *Classifier) Classify(netWorth int64) Class {
	for i, bound := range c.upperBounds {
		if netWorth <= bound {
			return Class(i)
		}
	}
	return Class(len(c.upperBounds))
}
