package simt

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// nominalClockRateKHz is the advertised device clock. The cycle counter is
// derived from the host monotonic clock at this rate, so a cycle threshold of
// duration_ms * clock_rate_khz elapses in no less than duration_ms of wall
// time whatever the host speed.
const nominalClockRateKHz int64 = 1_410_000

// Device is one emulated accelerator: an immutable identity (index, name,
// clock rate) plus a single in-order execution stream. All launches on a
// device are serialized on that stream; blocks within one launch run
// concurrently over the device's workers.
type Device struct {
	index        int
	name         string
	clockRateKHz int64
	workers      int
	epoch        time.Time

	tasks chan func()

	// mu guards inflight, closed and errState. inflight counts launches not
	// yet completed; drained waits for it to reach zero. A plain WaitGroup
	// cannot serve here: several host goroutines may Launch and Synchronize
	// on one device concurrently, and WaitGroup forbids Add while a Wait is
	// in flight.
	mu       sync.Mutex
	drained  *sync.Cond
	inflight int
	closed   bool
	errState error
}

// newDevice is called by NewClient during enumeration.
func newDevice(index, workers int) *Device {
	d := &Device{
		index:        index,
		name:         fmt.Sprintf("SIMT emulated accelerator (%d cores)", workers),
		clockRateKHz: nominalClockRateKHz,
		workers:      workers,
		epoch:        time.Now(),
		tasks:        make(chan func(), 16),
	}
	d.drained = sync.NewCond(&d.mu)
	go d.streamWorker()
	return d
}

// Index returns the enumeration index of the device.
func (d *Device) Index() int { return d.index }

// Name returns the display name of the device.
func (d *Device) Name() string { return d.name }

// ClockRateKHz returns the device clock rate in kHz, the unit used to convert
// wall-clock durations to cycle counts.
func (d *Device) ClockRateKHz() int64 { return d.clockRateKHz }

// Cycles returns the device's monotonic cycle counter. Kernels sample it to
// measure elapsed device cycles; it never decreases.
func (d *Device) Cycles() uint64 {
	ns := time.Since(d.epoch).Nanoseconds()
	return uint64(ns) * uint64(d.clockRateKHz) / 1e6
}

// streamWorker drains the device's execution stream in order.
func (d *Device) streamWorker() {
	for task := range d.tasks {
		task()
	}
}

// Launch enqueues a kernel over the given geometry on the device stream and
// returns without waiting for completion. The geometry may cover more lanes
// than the kernel's data; excess lanes are expected to no-op. A previously
// latched device error fails the launch.
func (d *Device) Launch(grid, block Dim3, kernel KernelFunc) error {
	if kernel == nil {
		return errors.Errorf("Launch on device #%d: nil kernel", d.index)
	}
	if grid.Size() <= 0 || block.Size() <= 0 {
		return errors.Errorf("Launch on device #%d: invalid geometry grid=%+v block=%+v", d.index, grid, block)
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return errors.Errorf("Launch on device #%d: device destroyed", d.index)
	}
	if d.errState != nil {
		err := d.errState
		d.mu.Unlock()
		return err
	}
	d.inflight++
	d.mu.Unlock()

	klog.V(2).Infof("device #%d: launching kernel, grid=%+v block=%+v (%d lanes)",
		d.index, grid, block, grid.Size()*block.Size())
	d.tasks <- func() {
		d.runKernel(grid, block, kernel)
		d.mu.Lock()
		d.inflight--
		d.drained.Broadcast()
		d.mu.Unlock()
	}
	return nil
}

// Synchronize blocks until every launched kernel has completed, then reports
// the device error state. The error state is sticky: once a kernel has
// failed, Synchronize keeps returning that first failure. Safe to call from
// several host goroutines concurrently with Launch.
func (d *Device) Synchronize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.inflight > 0 {
		d.drained.Wait()
	}
	return d.errState
}

// runKernel executes one launch: blocks are claimed from a shared counter by
// the device workers.
func (d *Device) runKernel(grid, block Dim3, kernel KernelFunc) {
	numBlocks := grid.Size()
	workers := d.workers
	if workers > numBlocks {
		workers = numBlocks
	}
	var nextBlock atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				b := int(nextBlock.Add(1)) - 1
				if b >= numBlocks {
					return
				}
				d.runBlock(b, grid, block, kernel)
			}
		}()
	}
	wg.Wait()
}

// runBlock runs one block, every lane on its own goroutine so that lanes of a
// block execute concurrently the way hardware threads do. This matters for
// wall-clock-bounded kernels: time-sliced lanes that spin on the cycle
// counter all finish about one threshold after they start, instead of
// serializing. A panicking lane latches a device error instead of crashing
// the host process.
func (d *Device) runBlock(flatBlock int, grid, block Dim3, kernel KernelFunc) {
	blockIdx := Dim3{
		X: flatBlock % grid.X,
		Y: (flatBlock / grid.X) % grid.Y,
		Z: flatBlock / (grid.X * grid.Y),
	}
	var lanes sync.WaitGroup
	lanes.Add(block.Size())
	for z := 0; z < block.Z; z++ {
		for y := 0; y < block.Y; y++ {
			for x := 0; x < block.X; x++ {
				tid := ThreadID{
					BlockIdx:  blockIdx,
					ThreadIdx: Dim3{X: x, Y: y, Z: z},
					BlockDim:  block,
					GridDim:   grid,
				}
				go func() {
					defer lanes.Done()
					defer func() {
						if r := recover(); r != nil {
							d.setError(errors.Errorf("kernel fault in lane %d of block %+v on device #%d: %v",
								tid.Global(), blockIdx, d.index, r))
						}
					}()
					kernel(tid)
				}()
			}
		}
	}
	lanes.Wait()
}

// setError latches the first device error.
func (d *Device) setError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.errState == nil {
		d.errState = err
		klog.Errorf("device #%d latched error: %v", d.index, err)
	}
}

// shutdown drains the stream and closes it. Called by Client.Destroy.
// Setting closed first rejects any later Launch, so inflight can only fall.
func (d *Device) shutdown() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for d.inflight > 0 {
		d.drained.Wait()
	}
	err := d.errState
	d.mu.Unlock()
	close(d.tasks)
	return err
}
