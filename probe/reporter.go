package probe

import (
	"fmt"
	"io"
	"time"

	"github.com/gomlx/mpsprobe/simt"
)

// Reporter formats the probe's diagnostic lines, each tagged with the process
// identity so an external orchestrator can tell concurrent instances apart.
// It is a pure sink over the injected writer.
type Reporter struct {
	out io.Writer
	pid int
}

// NewReporter returns a Reporter writing to out, tagging every line with pid.
func NewReporter(out io.Writer, pid int) *Reporter {
	return &Reporter{out: out, pid: pid}
}

func (r *Reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.out, "[%d] "+format+"\n", append([]any{r.pid}, args...)...)
}

// Device reports the device identity and clock rate.
func (r *Reporter) Device(dev *simt.Device) {
	r.printf("Device: %s", dev.Name())
	r.printf("Clock rate: %d kHz", dev.ClockRateKHz())
}

// Workload reports the active parameter under its mode-specific label.
func (r *Reporter) Workload(spec Spec) {
	if spec.Kind == KindDelay {
		r.printf("%s: %d ms", spec.Label(), spec.Param())
		return
	}
	r.printf("%s: %d", spec.Label(), spec.Param())
}

// LaunchMarker reports that the kernel is about to be launched.
func (r *Reporter) LaunchMarker() {
	r.printf("Launching kernel")
}

// Elapsed reports the measured host-observed wall time in milliseconds.
func (r *Reporter) Elapsed(d time.Duration) {
	r.printf("Elapsed: %.3f ms", float64(d)/float64(time.Millisecond))
}
