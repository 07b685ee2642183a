// README: Seeded train/test split over cleaned trips.
package training

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"nyctaxi/internal/modules/trips"
)

// TrainTestSplit shuffles a copy of rows with seed and holds out
// ceil(testSize*n) of them for testing.
func TrainTestSplit(rows []trips.Trip, testSize float64, seed int64) (train, test []trips.Trip, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("training: test size %.3f must be in (0, 1)", testSize)
	}
	n := len(rows)
	nTest := int(math.Ceil(testSize * float64(n)))
	if n < 2 || nTest >= n {
		return nil, nil, fmt.Errorf("training: %d rows is too few to split", n)
	}
	shuffled := slices.Clone(rows)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[nTest:], shuffled[:nTest], nil
}
