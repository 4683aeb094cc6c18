package probe

import (
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/mpsprobe/simt"
)

// blockSize is the lane count per block of the launch geometry.
const blockSize = 256

// Result is the timing measurement of one run, produced exactly once and
// read-only thereafter.
type Result struct {
	Start, End time.Time
	Elapsed    time.Duration

	// Output holds the per-lane results transferred back from the device.
	Output []float32
}

// Geometry returns a grid×block launch geometry covering at least n lanes.
// The last block may extend past n; those lanes no-op inside the kernels.
func Geometry(n int) (grid, block simt.Dim3) {
	block = simt.Dim3{X: blockSize, Y: 1, Z: 1}
	grid = simt.Dim3{X: (n + blockSize - 1) / blockSize, Y: 1, Z: 1}
	return
}

// Run executes one workload end to end on the device: allocate and seed the
// host arrays, mirror them on the device, launch the kernel selected by spec,
// block until completion, and transfer the outputs back. The launch and the
// synchronizing wait are wrapped in a monotonic clock measurement.
//
// Host input lanes are seeded deterministically with input[i] = i. Device
// buffers are released on the success path only: any device failure is
// returned to the caller, which is expected to terminate the process.
func Run(dev *simt.Device, spec Spec, n int) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, errors.Errorf("lane count must be positive, got %d", n)
	}

	input := make([]float32, n)
	for i := range input {
		input[i] = float32(i)
	}
	output := make([]float32, n)

	devIn, err := simt.BufferFromHost(dev, input)
	if err != nil {
		return nil, errors.WithMessagef(err, "transferring %d input lanes to device", n)
	}
	devOut, err := simt.NewBuffer(dev, n)
	if err != nil {
		return nil, errors.WithMessage(err, "allocating device output buffer")
	}

	var kernel simt.KernelFunc
	switch spec.Kind {
	case KindDelay:
		kernel = DelayKernel(dev, spec.DurationMS, devIn.Float32s(), devOut.Float32s())
	case KindBusy:
		kernel = BusyKernel(spec.Iterations, devIn.Float32s(), devOut.Float32s())
	default:
		return nil, errors.Errorf("unsupported workload kind %s", spec.Kind)
	}

	grid, block := Geometry(n)
	klog.V(1).Infof("dispatching %s workload: n=%d grid=%+v block=%+v", spec.Kind, n, grid, block)

	start := time.Now()
	if err := dev.Launch(grid, block, kernel); err != nil {
		return nil, errors.WithMessagef(err, "launching %s kernel", spec.Kind)
	}
	if err := dev.Synchronize(); err != nil {
		return nil, errors.WithMessagef(err, "waiting for %s kernel", spec.Kind)
	}
	end := time.Now()

	if err := devOut.ToHost(output); err != nil {
		return nil, errors.WithMessage(err, "transferring output lanes to host")
	}
	if err := devIn.Destroy(); err != nil {
		return nil, errors.WithMessage(err, "releasing device input buffer")
	}
	if err := devOut.Destroy(); err != nil {
		return nil, errors.WithMessage(err, "releasing device output buffer")
	}

	return &Result{Start: start, End: end, Elapsed: end.Sub(start), Output: output}, nil
}
