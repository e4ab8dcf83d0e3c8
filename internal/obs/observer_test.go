package obs_test

import (
	"testing"
	"time"

	"github.com/attrflow/reactor/internal/obs"
	"github.com/attrflow/reactor/pkg/attribute"
	"github.com/attrflow/reactor/pkg/reactor"
	"github.com/stretchr/testify/require"
)

type obsNode struct{ label string }

func TestTelemetryObserver_SurvivesFullRun(t *testing.T) {
	o := obs.NewTelemetryObserver(8)
	o.Start()
	defer o.Stop()

	r := reactor.New(reactor.WithObserver(o))
	at := attribute.New(&obsNode{"A"}, "t")
	bt := attribute.New(&obsNode{"B"}, "t")

	r.Set(at, "x")
	r.Rule(bt).Using(at).By(reactor.CopyFirst)

	require.NoError(t, r.Run())

	v, ok := r.Get(bt)
	require.True(t, ok)
	require.Equal(t, "x", v)

	// give the drain goroutine a moment to process queued span events
	// before Stop forces a final synchronous drain.
	time.Sleep(10 * time.Millisecond)
}

func TestTelemetryObserver_RecordsErrors(t *testing.T) {
	o := obs.NewTelemetryObserver(8)
	o.Start()
	defer o.Stop()

	r := reactor.New(reactor.WithObserver(o))
	r.Rule().By(func(rl *reactor.Rule) {
		rl.Error("boom", nil)
	})

	require.NoError(t, r.Run())
	require.Len(t, r.Errors(), 1)
}
