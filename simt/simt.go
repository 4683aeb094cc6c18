// Package simt implements a small SIMT-style accelerator runtime in pure Go:
// a Client enumerates emulated devices, a Device owns buffers and executes
// kernels over a grid×block geometry of independent lanes, with host↔device
// transfers and a blocking synchronize, mirroring the host-side protocol of a
// vendor GPU runtime.
//
// One lane corresponds to one logical data element index. Lanes of a launch
// share no mutable state: each lane is expected to read only its own input
// slot and write only its own output slot, so execution order across lanes is
// unconstrained. Lanes of one block run concurrently as goroutines; blocks
// are fanned out over a worker pool sized to the host core count, and when
// the geometry carries more blocks than workers the extra blocks run in later
// waves, which lengthens wall time exactly the way an oversubscribed device
// does.
package simt

// Dim3 is a 3D extent used for grid and block launch geometry.
type Dim3 struct {
	X, Y, Z int
}

// Size returns the total number of elements covered by the extent.
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}

// ThreadID identifies one lane within the launch geometry.
type ThreadID struct {
	BlockIdx  Dim3
	ThreadIdx Dim3
	BlockDim  Dim3
	GridDim   Dim3
}

// Global returns the flat lane index over the X dimension. Lanes whose global
// index falls beyond the data length are expected to return without writing.
func (tid ThreadID) Global() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// KernelFunc is the body of a kernel, invoked once per lane.
type KernelFunc func(tid ThreadID)
