package env

import (
	"fmt"
	"math/rand"
	"strings"
)

type Kind string

const (
	KindBandit       Kind = "bandit"
	KindNewcomb      Kind = "newcomb"
	KindPolicyBandit Kind = "policy-dependent-bandit"
)

// Normalize canonicalizes environment kind names and common aliases.
func Normalize(name string) Kind {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.Trim(normalized, "-")

	switch strings.ReplaceAll(normalized, "-", "") {
	case "bandit", "karmedbandit", "karmbandit", "testbed":
		return KindBandit
	case "newcomb", "newcombsproblem", "newcomblike":
		return KindNewcomb
	case "policydependentbandit", "policybandit", "policydependent":
		return KindPolicyBandit
	}
	return Kind(normalized)
}

// New builds an environment of the given kind with freshly drawn true
// parameters. The rng becomes owned environment state; callers hand each
// environment its run's source and never share one across runs.
func New(kind Kind, actions int, rng *rand.Rand) (Environment, error) {
	switch kind {
	case KindBandit:
		return NewBandit(actions, rng)
	case KindNewcomb:
		return NewNewcomb(actions, rng)
	case KindPolicyBandit:
		return NewPolicyBandit(actions, rng)
	default:
		return nil, fmt.Errorf("unsupported environment kind: %s", kind)
	}
}
