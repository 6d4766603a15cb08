package env

import (
	"errors"
	"fmt"
	"math/rand"
)

// Bandit is the classic k-armed testbed: a single fixed context, per-action
// true means drawn once from a unit Gaussian prior, unit observation noise.
// The best action is fixed for the environment's lifetime.
type Bandit struct {
	arms []Gaussian
	best int
	rng  *rand.Rand
}

func NewBandit(actions int, rng *rand.Rand) (*Bandit, error) {
	if actions <= 0 {
		return nil, fmt.Errorf("actions must be > 0, got %d", actions)
	}
	if rng == nil {
		return nil, errors.New("rng is required")
	}

	arms := make([]Gaussian, actions)
	best := 0
	for a := range arms {
		arms[a] = Gaussian{Mean: rng.NormFloat64(), Sigma: 1}
		if arms[a].Mean > arms[best].Mean {
			best = a
		}
	}
	return &Bandit{arms: arms, best: best, rng: rng}, nil
}

func (b *Bandit) Kind() Kind            { return KindBandit }
func (b *Bandit) NumActions() int       { return len(b.arms) }
func (b *Bandit) NeedsPrediction() bool { return false }

func (b *Bandit) Sample(_ Context, action int) (float64, int) {
	return b.arms[action].Sample(b.rng), b.best
}

func (b *Bandit) BestAction(_ Context) int { return b.best }
