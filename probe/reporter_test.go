package probe

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReporter_Lines(t *testing.T) {
	dev := testDevice(t)

	var buf strings.Builder
	r := NewReporter(&buf, 4242)
	r.Device(dev)
	r.Workload(Delay(100))
	r.LaunchMarker()
	r.Elapsed(103_218 * time.Microsecond)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		require.True(t, strings.HasPrefix(line, "[4242] "), "line %q misses the pid tag", line)
	}
	require.Equal(t, "[4242] Device: "+dev.Name(), lines[0])
	require.Contains(t, lines[1], "Clock rate:")
	require.Contains(t, lines[1], "kHz")
	require.Equal(t, "[4242] Delay: 100 ms", lines[2])
	require.Equal(t, "[4242] Launching kernel", lines[3])
	require.Equal(t, "[4242] Elapsed: 103.218 ms", lines[4])
}

func TestReporter_BusyLabel(t *testing.T) {
	var buf strings.Builder
	NewReporter(&buf, 7).Workload(Busy(9000))
	require.Equal(t, "[7] Iterations: 9000\n", buf.String())
}
