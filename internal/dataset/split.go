// internal/dataset/split.go
package dataset

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	TestFraction       = 0.1
	ValidationFraction = 0.1111 // of the remaining 90%, about 10% of the total
	DefaultSeed        = 42
	MinRows            = 10
)

type Splits struct {
	Train      *Dataset
	Validation *Dataset
	Test       *Dataset
}

// Split holds out TestFraction of the rows as test, then ValidationFraction
// of the rest as validation. The same seed always yields the same splits.
func Split(d *Dataset, seed int64) (*Splits, error) {
	if d.Len() < MinRows {
		return nil, fmt.Errorf("dataset looks too small (%d rows)", d.Len())
	}

	rng := rand.New(rand.NewSource(seed))
	trainVal, test := holdOut(rng, seq(d.Len()), TestFraction)
	train, val := holdOut(rng, trainVal, ValidationFraction)

	return &Splits{
		Train:      d.subset(train),
		Validation: d.subset(val),
		Test:       d.subset(test),
	}, nil
}

// holdOut shuffles indices and returns (rest, heldOut). The held-out size is
// rounded up so a fraction of a row still yields one row.
func holdOut(rng *rand.Rand, indices []int, fraction float64) (rest, held []int) {
	perm := rng.Perm(len(indices))
	n := int(math.Ceil(fraction * float64(len(indices))))
	for i, p := range perm {
		if i < n {
			held = append(held, indices[p])
		} else {
			rest = append(rest, indices[p])
		}
	}
	return rest, held
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
