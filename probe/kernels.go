package probe

import (
	"github.com/chewxy/math32"

	"github.com/gomlx/mpsprobe/simt"
)

// churn is the per-lane transform both kernels apply to their accumulator.
// It must be cheap, nonlinear and impossible for a compiler to fold away:
// the result feeds the lane's final write, and since
// sqrt(v²+1.5) > |v| ≥ v the transform has no fixpoint, so a single
// application already changes every input value.
func churn(v float32) float32 {
	return math32.Sqrt(v*v+1.5) + math32.Abs(math32.Sin(v))
}

// CycleThreshold converts a wall-clock duration to the device cycle count the
// Delay kernel spins for. Deriving it from the actual clock rate makes the
// nominal duration independent of device speed.
func CycleThreshold(durationMS, clockRateKHz int64) uint64 {
	return uint64(durationMS) * uint64(clockRateKHz)
}

// DelayKernel builds the duration-controlled kernel: each lane samples the
// device cycle counter on entry and churns its accumulator until the cycle
// threshold has elapsed, then writes once.
//
// The host-observed wall time of a launch is at least durationMS; under
// device time-slicing it may be longer, which is the externally observable
// signal this kernel exists to produce.
func DelayKernel(dev *simt.Device, durationMS int64, in, out []float32) simt.KernelFunc {
	threshold := CycleThreshold(durationMS, dev.ClockRateKHz())
	return func(tid simt.ThreadID) {
		idx := tid.Global()
		if idx >= len(in) {
			return
		}
		t0 := dev.Cycles()
		acc := in[idx]
		for dev.Cycles()-t0 < threshold {
			acc = churn(acc)
		}
		out[idx] = acc
	}
}

// BusyKernel builds the work-controlled kernel: each lane churns its
// accumulator exactly iterations times and writes once. The output is a pure
// function of (input value, iterations); wall time is a dependent
// observation.
func BusyKernel(iterations int64, in, out []float32) simt.KernelFunc {
	return func(tid simt.ThreadID) {
		idx := tid.Global()
		if idx >= len(in) {
			return
		}
		acc := in[idx]
		for i := int64(0); i < iterations; i++ {
			acc = churn(acc)
		}
		out[idx] = acc
	}
}
