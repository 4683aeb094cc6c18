package probe

// Common initialization and testing tools for all test files.

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/mpsprobe/simt"
)

func init() {
	klog.InitFlags(nil)
}

func panicf(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}

func must(err error) {
	if err != nil {
		panicf("Failed: %+v", errors.WithStack(err))
	}
}

func must1[T any](t T, err error) T {
	must(err)
	return t
}

// testDevice creates a client for the test and returns its device #0.
func testDevice(t *testing.T) *simt.Device {
	client := must1(simt.NewClient())
	t.Cleanup(func() { must(client.Destroy()) })
	return must1(client.Device(0))
}

// churnRef applies the lane transform k times on the host, the reference the
// busy kernel output is compared against.
func churnRef(v float32, k int64) float32 {
	for i := int64(0); i < k; i++ {
		v = churn(v)
	}
	return v
}
