package env

import (
	"errors"
	"fmt"
	"math/rand"
)

// PolicyBandit rewards depend on both the realized action and a prediction
// of the agent's policy: one reward row per predicted action. The best
// action is context-conditional, so optimality tracking asks "best given
// this prediction", not "best overall".
type PolicyBandit struct {
	kind  Kind
	table [][]Gaussian
	best  []int
	rng   *rand.Rand
}

// NewPolicyBandit draws a full actions x actions table of true means from a
// unit Gaussian prior, unit observation noise.
func NewPolicyBandit(actions int, rng *rand.Rand) (*PolicyBandit, error) {
	if actions <= 0 {
		return nil, fmt.Errorf("actions must be > 0, got %d", actions)
	}
	if rng == nil {
		return nil, errors.New("rng is required")
	}

	table := make([][]Gaussian, actions)
	for c := range table {
		row := make([]Gaussian, actions)
		for a := range row {
			row[a] = Gaussian{Mean: rng.NormFloat64(), Sigma: 1}
		}
		table[c] = row
	}
	return newTableEnv(KindPolicyBandit, table, rng), nil
}

func newTableEnv(kind Kind, table [][]Gaussian, rng *rand.Rand) *PolicyBandit {
	best := make([]int, len(table))
	for c, row := range table {
		for a := 1; a < len(row); a++ {
			if row[a].Mean > row[best[c]].Mean {
				best[c] = a
			}
		}
	}
	return &PolicyBandit{kind: kind, table: table, best: best, rng: rng}
}

func (p *PolicyBandit) Kind() Kind            { return p.kind }
func (p *PolicyBandit) NumActions() int       { return len(p.table) }
func (p *PolicyBandit) NeedsPrediction() bool { return true }

func (p *PolicyBandit) Sample(ctx Context, action int) (float64, int) {
	return p.table[int(ctx)][action].Sample(p.rng), p.best[int(ctx)]
}

func (p *PolicyBandit) BestAction(ctx Context) int { return p.best[int(ctx)] }
