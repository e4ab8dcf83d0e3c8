package sim_test

import (
	"fmt"
	"testing"

	"github.com/attrflow/reactor/internal/sim"
	"github.com/attrflow/reactor/pkg/attribute"
	"github.com/attrflow/reactor/pkg/reactor"
	"github.com/stretchr/testify/require"
)

type chainNode struct{ index int }

// buildRandomChain constructs a linear dependency chain of n rules, each
// either passing its predecessor's value through or originating a root
// error, in an order randomized by rnd, and returns the reactor and the
// last node in the chain.
func buildRandomChain(rnd *sim.DeterministicRand, n int) (*reactor.Reactor, attribute.Attribute) {
	r := reactor.New()
	nodes := make([]*chainNode, n)
	for i := range nodes {
		nodes[i] = &chainNode{index: i}
	}

	first := attribute.New(nodes[0], "v")
	r.Set(first, "seed")

	order := rnd.Shuffle
	indices := make([]int, n-1)
	for i := range indices {
		indices[i] = i + 1
	}
	order(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })

	errorAt := -1
	if n > 2 && rnd.Chance(0.3) {
		errorAt = indices[rnd.Intn(len(indices))]
	}

	for _, i := range indices {
		i := i
		dep := attribute.New(nodes[i-1], "v")
		exp := attribute.New(nodes[i], "v")
		if i == errorAt {
			r.Rule(exp).Using(dep).By(func(rl *reactor.Rule) {
				rl.Error(fmt.Sprintf("fault injected at node %d", i), nodes[i])
			})
			continue
		}
		r.Rule(exp).Using(dep).By(reactor.CopyFirst)
	}

	return r, attribute.New(nodes[n-1], "v")
}

func TestInvariants_HoldAcrossRandomChains(t *testing.T) {
	checker := sim.NewInvariantChecker()

	const trials = 200
	for trial := 0; trial < trials; trial++ {
		seed := int64(trial)
		rnd := sim.NewDeterministicRand(seed)
		n := 2 + rnd.Intn(20)

		r, _ := buildRandomChain(rnd, n)
		require.NoError(t, r.Run())

		checker.CheckAll(&sim.Harness{R: r}, seed)
	}

	violations := checker.Violations()
	require.Empty(t, violations, "invariant violations: %+v", violations)
}

func TestInvariants_DeterministicAcrossAttributeSetOrder(t *testing.T) {
	const seed = int64(42)

	build := func() (*reactor.Reactor, attribute.Attribute) {
		rnd := sim.NewDeterministicRand(seed)
		return buildRandomChain(rnd, 10)
	}

	r1, last1 := build()
	require.NoError(t, r1.Run())
	v1, ok1 := r1.Get(last1)
	require.True(t, ok1)

	r2, last2 := build()
	require.NoError(t, r2.Run())
	v2, ok2 := r2.Get(last2)
	require.True(t, ok2)

	require.Equal(t, fmt.Sprintf("%v", v1), fmt.Sprintf("%v", v2))
}
