package semerr_test

import (
	"testing"

	"github.com/attrflow/reactor/pkg/semerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsRoot(t *testing.T) {
	err := semerr.New("bad", nil)
	assert.True(t, err.IsRoot())
	assert.Nil(t, err.Cause())
}

func TestWrap_IsNotRoot(t *testing.T) {
	root := semerr.New("bad", "A")
	derived := semerr.Wrap("missing dependency (A :: t)", root, nil)

	require.False(t, derived.IsRoot())
	assert.Same(t, root, derived.Cause())
}

func TestEffectiveLocation_OwnLocationWins(t *testing.T) {
	root := semerr.New("bad", "A")
	derived := semerr.Wrap("derived", root, "B")

	assert.Equal(t, "B", derived.EffectiveLocation())
}

func TestEffectiveLocation_WalksCauseChain(t *testing.T) {
	root := semerr.New("bad", "A")
	derived := semerr.Wrap("derived", root, nil)
	doublyDerived := semerr.Wrap("derived again", derived, nil)

	assert.Equal(t, "A", doublyDerived.EffectiveLocation())
}

func TestEffectiveLocation_NoneFound(t *testing.T) {
	root := semerr.New("bad", nil)
	derived := semerr.Wrap("derived", root, nil)

	assert.Nil(t, derived.EffectiveLocation())
}

func TestSemanticError_DistinctIdentityEvenWithEqualText(t *testing.T) {
	a := semerr.New("bad", nil)
	b := semerr.New("bad", nil)
	assert.NotSame(t, a, b)
}

func TestSemanticError_Error(t *testing.T) {
	root := semerr.New("bad", nil)
	derived := semerr.Wrap("missing dependency (A :: t)", root, nil)
	assert.Equal(t, "missing dependency (A :: t): bad", derived.Error())
}
