// mpsprobe generates a parametrized compute load on an accelerator device and
// reports the wall time it observed. It is meant to be launched several times
// concurrently by an external orchestrator to probe the device's
// multi-process scheduler from the outside.
//
// Usage:
//
//	mpsprobe --delay <duration_ms>
//	mpsprobe --busy <iteration_count>
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/mpsprobe/probe"
	"github.com/gomlx/mpsprobe/simt"
)

const (
	// laneCount is the width of the generated load. The orchestrator controls
	// only the mode and its parameter.
	laneCount = 1024

	// deviceIndex is the device every instance contends for.
	deviceIndex = 0
)

const usage = `Usage: mpsprobe --delay <duration_ms> | --busy <iteration_count>
  --delay  spin every lane until duration_ms of wall time has elapsed
  --busy   apply the lane transform exactly iteration_count times
`

// parseArgs validates the argument vector (without the program name) into a
// workload spec. It touches no device state, so a rejected invocation exits
// before any device interaction.
func parseArgs(args []string) (probe.Spec, error) {
	if len(args) != 2 {
		return probe.Spec{}, errors.Errorf("expected exactly 2 arguments, got %d", len(args))
	}
	value, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return probe.Spec{}, errors.Errorf("parameter %q is not an integer", args[1])
	}
	var spec probe.Spec
	switch args[0] {
	case "--delay":
		spec = probe.Delay(value)
	case "--busy":
		spec = probe.Busy(value)
	default:
		return probe.Spec{}, errors.Errorf("unknown mode %q", args[0])
	}
	if err := spec.Validate(); err != nil {
		return probe.Spec{}, err
	}
	return spec, nil
}

// run performs the device-facing part of an invocation. Every error it
// returns is fatal to the process.
func run(spec probe.Spec) error {
	client, err := simt.NewClient()
	if err != nil {
		return errors.WithMessage(err, "initializing accelerator client")
	}
	defer func() { _ = client.Destroy() }()

	dev, err := client.Device(deviceIndex)
	if err != nil {
		return errors.WithMessagef(err, "selecting device #%d", deviceIndex)
	}

	reporter := probe.NewReporter(os.Stdout, os.Getpid())
	reporter.Device(dev)
	reporter.Workload(spec)
	reporter.LaunchMarker()

	result, err := probe.Run(dev, spec, laneCount)
	if err != nil {
		return err
	}
	reporter.Elapsed(result.Elapsed)
	return nil
}

func main() {
	spec, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "mpsprobe: %v\n", err)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err := run(spec); err != nil {
		klog.Errorf("mpsprobe: %+v", err)
		klog.Flush()
		os.Exit(1)
	}
}
