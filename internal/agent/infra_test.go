package agent

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"murphy/internal/env"
)

func newInfra(t *testing.T, actions int, optimism float64) *Infrabayesian {
	t.Helper()
	a, err := NewInfrabayesian(actions, 0, optimism, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("new infrabayesian: %v", err)
	}
	return a
}

func TestNirvanaRuleExcludesInconsistentCell(t *testing.T) {
	a := newInfra(t, 2, 0)

	// Cell (context 0, action 0) is consistent with declaring action 0.
	// Cell (context 1, action 0) is not: a perfect predictor forecasting 1
	// contradicts a declared policy of 0. Its deliberately terrible estimate
	// must not bind the worst case.
	if err := a.Update(env.Context(0), 0, 100); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := a.Update(env.Context(1), 0, -1000); err != nil {
		t.Fatalf("update: %v", err)
	}

	got := a.value(0)
	if got <= -1000 {
		t.Fatalf("worst case %v was bound by an inconsistent cell", got)
	}
	if got != 100 {
		t.Fatalf("worst case = %v, want 100 from the lone consistent cell", got)
	}
}

func TestWorstCaseIsMinimumOverConsistentCells(t *testing.T) {
	a := newInfra(t, 2, 0)

	// The fixed bandit context is consistent with every action, so together
	// with the self context there are two binding cells; the minimum wins.
	if err := a.Update(env.ContextNone, 0, 5); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := a.Update(env.Context(0), 0, 2); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := a.value(0); got != 2 {
		t.Fatalf("worst case = %v, want min(5, 2)", got)
	}
}

func TestUnobservedCellsAreUnconstrained(t *testing.T) {
	a := newInfra(t, 2, 0)

	if err := a.Update(env.Context(0), 0, 5); err != nil {
		t.Fatalf("update: %v", err)
	}

	if got := a.value(0); got != 5 {
		t.Fatalf("value(0) = %v, want 5", got)
	}
	// Action 1's only consistent cell (1, 1) was never observed and no
	// optimism is configured, so nothing binds it.
	if got := a.value(1); !math.IsInf(got, 1) {
		t.Fatalf("value(1) = %v, want +Inf", got)
	}
	// With no exploration the unconstrained action must win the argmax.
	if got := a.Policy(); got != 1 {
		t.Fatalf("policy = %d, want the unconstrained action 1", got)
	}
}

func TestOptimismBindsUnobservedCells(t *testing.T) {
	a := newInfra(t, 2, 50)

	if err := a.Update(env.Context(1), 0, 3); err != nil {
		t.Fatalf("update: %v", err)
	}

	// (1, 1) is consistent for action 1 but unobserved: the configured
	// optimism speaks for it.
	if got := a.value(1); got != 50 {
		t.Fatalf("value(1) = %v, want optimism 50", got)
	}
	// For action 0 the observed cell (1, 0) is inconsistent and the self
	// context 0 was never forecast, so optimism speaks there too.
	if got := a.value(0); got != 50 {
		t.Fatalf("value(0) = %v, want optimism 50", got)
	}
}

func TestSmallOptimismPinsThePolicy(t *testing.T) {
	a := newInfra(t, 2, 0.5)

	// The first declared policy was 1; its consistent cell now estimates
	// near 1, while the never-declared action 0 is stuck at the optimism
	// value 0.5. The agent has no reason left to switch.
	if err := a.Update(env.Context(1), 1, 1.0); err != nil {
		t.Fatalf("update: %v", err)
	}
	for i := 0; i < 100; i++ {
		if got := a.Policy(); got != 1 {
			t.Fatalf("policy flipped to %d despite the pinned belief", got)
		}
	}
}

func TestLargeOptimismForcesPolicySwitch(t *testing.T) {
	a := newInfra(t, 2, 200)

	if err := a.Update(env.Context(1), 1, 1.0); err != nil {
		t.Fatalf("update: %v", err)
	}
	// value(0) = 200 beats value(1) ~ 1, so the policy must switch over.
	if got := a.Policy(); got != 0 {
		t.Fatalf("policy = %d, want switch to 0", got)
	}
}

func TestNoCrossContextPooling(t *testing.T) {
	a := newInfra(t, 2, 0)

	if err := a.Update(env.Context(0), 0, 10); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := a.Update(env.Context(0), 0, 20); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := a.Update(env.Context(1), 0, -5); err != nil {
		t.Fatalf("update: %v", err)
	}

	key := cellKey{ctx: env.Context(0), action: 0}
	if c := a.cells[key]; c == nil || c.mean != 15 || c.count != 2 {
		t.Fatalf("cell (0, 0) = %+v, want mean 15 count 2", c)
	}
	other := cellKey{ctx: env.Context(1), action: 0}
	if c := a.cells[other]; c == nil || c.mean != -5 || c.count != 1 {
		t.Fatalf("cell (1, 0) = %+v, want mean -5 count 1", c)
	}
	if got := a.value(0); got != 15 {
		t.Fatalf("value(0) = %v, want 15 with the inconsistent cell excluded", got)
	}
}

func TestInfraOnPlainBanditContext(t *testing.T) {
	a := newInfra(t, 3, 0)

	// Only the fixed context ever appears, so worst-case collapses to the
	// per-action mean and unobserved actions stay unconstrained.
	if err := a.Update(env.ContextNone, 0, 2); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := a.Update(env.ContextNone, 1, 8); err != nil {
		t.Fatalf("update: %v", err)
	}

	if got := a.value(0); got != 2 {
		t.Fatalf("value(0) = %v, want 2", got)
	}
	if got := a.value(1); got != 8 {
		t.Fatalf("value(1) = %v, want 8", got)
	}
	if got := a.value(2); !math.IsInf(got, 1) {
		t.Fatalf("value(2) = %v, want +Inf for the untried arm", got)
	}
	if got := a.Policy(); got != 2 {
		t.Fatalf("policy = %d, want the untried arm 2", got)
	}
}

func TestInfraUpdateAcceptsArbitraryCells(t *testing.T) {
	a := newInfra(t, 2, 0)

	// Contexts nothing ever selected, far outside the action range, must
	// still be accepted without a crash.
	if err := a.Update(env.Context(17), 1, 3); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := a.Update(env.ContextNone, 0, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := a.Update(env.ContextNone, 9, 1); err == nil {
		t.Fatal("expected error for out-of-range action")
	}
}

func TestInfraDegeneracyNamesTheCell(t *testing.T) {
	a := newInfra(t, 2, 0)

	err := a.Update(env.Context(1), 0, math.NaN())
	if err == nil {
		t.Fatal("expected degeneracy error for NaN reward")
	}
	msg := err.Error()
	if !strings.Contains(msg, "context 1") {
		t.Fatalf("error %q does not name the context", msg)
	}
	if !strings.Contains(msg, "action 0") {
		t.Fatalf("error %q does not name the action", msg)
	}
}
