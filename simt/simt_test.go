package simt

// Common initialization and testing tools for all test files.

import (
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
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
