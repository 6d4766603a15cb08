package agent

import (
	"fmt"
	"math/rand"
	"strings"
)

type Kind string

const (
	KindClassical     Kind = "classical"
	KindBayesian      Kind = "bayesian"
	KindInfrabayesian Kind = "infrabayesian"
)

// Normalize canonicalizes agent kind names and common aliases.
func Normalize(name string) Kind {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.Trim(normalized, "-")

	switch strings.ReplaceAll(normalized, "-", "") {
	case "classical", "classic", "frequentist", "sampleaverage":
		return KindClassical
	case "bayesian", "bayes":
		return KindBayesian
	case "infrabayesian", "infrabayes", "infra":
		return KindInfrabayesian
	}
	return Kind(normalized)
}

// New builds an agent of the given kind. The rng becomes owned agent state,
// shared with the environment of the same run and nothing else.
func New(kind Kind, actions int, epsilon, optimism float64, rng *rand.Rand) (Agent, error) {
	switch kind {
	case KindClassical:
		return NewClassical(actions, epsilon, optimism, rng)
	case KindBayesian:
		return NewBayesian(actions, epsilon, optimism, rng)
	case KindInfrabayesian:
		return NewInfrabayesian(actions, epsilon, optimism, rng)
	default:
		return nil, fmt.Errorf("unsupported agent kind: %s", kind)
	}
}
