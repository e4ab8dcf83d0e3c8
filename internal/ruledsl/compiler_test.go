package ruledsl_test

import (
	"testing"

	"github.com/attrflow/reactor/internal/ruledsl"
	"github.com/attrflow/reactor/pkg/reactor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNode struct{ name string }

func TestCompile_ParsesAndRegistersCopyRule(t *testing.T) {
	src := `
		rule InferType {
			export B.t
			using A.t
			copy
		}
	`
	a, b := &stubNode{"A"}, &stubNode{"B"}
	r := reactor.New()
	r.SetNode(a, "t", "int")

	n, err := ruledsl.Compile(src, ruledsl.Bindings{"A": a, "B": b}, r)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, r.Run())
	v, ok := r.GetNode(b, "t")
	require.True(t, ok)
	assert.Equal(t, "int", v)
}

func TestCompile_MultipleRules(t *testing.T) {
	src := `
		rule R1 {
			export B.t
			using A.t
			copy
		}
		rule R2 {
			export C.t
			using B.t
			copy
		}
	`
	a, b, c := &stubNode{"A"}, &stubNode{"B"}, &stubNode{"C"}
	r := reactor.New()
	r.SetNode(a, "t", "str")

	n, err := ruledsl.Compile(src, ruledsl.Bindings{"A": a, "B": b, "C": c}, r)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, r.Run())
	v, ok := r.GetNode(c, "t")
	require.True(t, ok)
	assert.Equal(t, "str", v)
}

func TestCompile_UnboundNodeIsError(t *testing.T) {
	src := `
		rule R1 {
			export B.t
			using A.t
			copy
		}
	`
	r := reactor.New()
	_, err := ruledsl.Compile(src, ruledsl.Bindings{"A": &stubNode{"A"}}, r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbound node name")
}

func TestCompile_SyntaxErrorIsReported(t *testing.T) {
	r := reactor.New()
	_, err := ruledsl.Compile("rule {}", ruledsl.Bindings{}, r)
	require.Error(t, err)
}
