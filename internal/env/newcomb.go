package env

import (
	"errors"
	"fmt"
	"math/rand"
)

// Action identities of the two-option Newcomb game.
const (
	OneBox = 0
	TwoBox = 1
)

// newcombMeans[c][a] is the true mean reward for realized action a when the
// predictor forecast action c. Two-boxing always pays one unit more than
// one-boxing under the same forecast, yet a forecast of one-boxing is worth
// a hundred units on its own.
var newcombMeans = [2][2]float64{
	{100, 101},
	{0, 1},
}

// NewNewcomb builds the canonical two-option Newcomb environment: the fixed
// reward table above with unit observation noise around the means.
func NewNewcomb(actions int, rng *rand.Rand) (*PolicyBandit, error) {
	if actions != 2 {
		return nil, fmt.Errorf("newcomb environment requires exactly 2 actions, got %d", actions)
	}
	if rng == nil {
		return nil, errors.New("rng is required")
	}

	table := make([][]Gaussian, 2)
	for c := range table {
		row := make([]Gaussian, 2)
		for a := range row {
			row[a] = Gaussian{Mean: newcombMeans[c][a], Sigma: 1}
		}
		table[c] = row
	}
	return newTableEnv(KindNewcomb, table, rng), nil
}
