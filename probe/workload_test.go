package probe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpec_Validate(t *testing.T) {
	require.NoError(t, Delay(1).Validate())
	require.NoError(t, Delay(100).Validate())
	require.NoError(t, Busy(1).Validate())
	require.NoError(t, Busy(5_000_000).Validate())

	require.Error(t, Delay(0).Validate())
	require.Error(t, Delay(-7).Validate())
	require.Error(t, Busy(0).Validate())
	require.Error(t, Busy(-1).Validate())

	// A wrapped-around negative parameter is rejected by the positivity
	// check, never allowed to reach an unsigned loop bound.
	require.Error(t, Busy(math.MinInt64).Validate())
	require.Error(t, Delay(math.MinInt64).Validate())

	require.Error(t, Spec{}.Validate())
	require.Error(t, Spec{Kind: Kind(42), Iterations: 5}.Validate())
}

func TestSpec_Param(t *testing.T) {
	require.Equal(t, int64(250), Delay(250).Param())
	require.Equal(t, int64(9000), Busy(9000).Param())
}

func TestSpec_Label(t *testing.T) {
	require.Equal(t, "Delay", Delay(250).Label())
	require.Equal(t, "Iterations", Busy(9000).Label())
	require.Empty(t, Spec{}.Label())
}

func TestKind_Strings(t *testing.T) {
	require.Equal(t, "delay", KindDelay.String())
	require.Equal(t, "busy", KindBusy.String())

	kind, err := KindString("busy")
	require.NoError(t, err)
	require.Equal(t, KindBusy, kind)

	_, err = KindString("bogus")
	require.Error(t, err)

	require.True(t, KindDelay.IsAKind())
	require.False(t, Kind(42).IsAKind())
}
