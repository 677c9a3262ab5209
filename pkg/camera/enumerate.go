package camera

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/talantvacheslav/ascii-converter/internal/log"
)

const (
	// listTimeout bounds the native listing tool. This is the only
	// enumeration step with an explicit timeout; per-device probes
	// rely on the capture backend's own limits.
	listTimeout = 5 * time.Second

	// fullScanLimit is the index range probed on platforms with a
	// known device numbering convention.
	fullScanLimit = 10

	// safeScanLimit is the conservative range for unknown platforms.
	safeScanLimit = 5
)

// ListFunc produces device candidates from a platform listing tool.
// Candidates are unverified; the enumerator probes each one.
type ListFunc func(ctx context.Context) ([]Device, error)

// Enumerator discovers usable capture devices with a per-platform
// strategy. It never reports an empty device set: when every strategy
// comes up dry it falls back to index 0 and defers the real failure
// to session open.
type Enumerator struct {
	goos       string
	probe      ProbeFunc
	list       ListFunc
	strategies map[string]func(context.Context) []Device
}

// NewEnumerator creates an enumerator for the current platform,
// probing through OpenCV.
func NewEnumerator() *Enumerator {
	return NewEnumeratorFor(runtime.GOOS, ProbeDevice, listV4L2)
}

// NewEnumeratorFor creates an enumerator with an explicit platform
// tag, probe, and native lister. Tests use it to exercise strategies
// without hardware.
func NewEnumeratorFor(goos string, probe ProbeFunc, list ListFunc) *Enumerator {
	e := &Enumerator{goos: goos, probe: probe, list: list}
	e.strategies = map[string]func(context.Context) []Device{
		"linux":   e.nativeThenScan,
		"darwin":  e.fullScan,
		"windows": e.fullScan,
	}
	return e
}

// Devices discovers capture devices. The result is never empty and
// absence of cameras is never an error: a last-resort descriptor for
// index 0 stands in when nothing probes successfully, and its failure
// surfaces at open time instead.
func (e *Enumerator) Devices(ctx context.Context) []Device {
	strategy, ok := e.strategies[e.goos]
	if !ok {
		strategy = e.safeScan
	}

	devices := strategy(ctx)
	if len(devices) == 0 {
		log.Warn("no working capture device found, defaulting to index 0", "platform", e.goos)
		return []Device{{Index: 0}}
	}

	log.Debug("capture devices enumerated", "platform", e.goos, "count", len(devices))
	return devices
}

// nativeThenScan asks the platform listing tool for device nodes and
// keeps the candidates that survive a probe. Tool missing, erroring,
// timing out, or yielding zero working devices all fall back to the
// index scan.
func (e *Enumerator) nativeThenScan(ctx context.Context) []Device {
	candidates, err := e.list(ctx)
	if err != nil {
		log.Debug("native device listing unavailable", "error", err)
		return e.fullScan(ctx)
	}

	var devices []Device
	for _, dev := range candidates {
		if ctx.Err() != nil {
			break
		}
		if e.probe(dev) {
			devices = append(devices, dev)
		}
	}
	if len(devices) == 0 {
		log.Debug("native candidates failed probing, scanning indices",
			"candidates", len(candidates))
		return e.fullScan(ctx)
	}
	return devices
}

func (e *Enumerator) fullScan(ctx context.Context) []Device {
	return e.scanIndices(ctx, fullScanLimit)
}

func (e *Enumerator) safeScan(ctx context.Context) []Device {
	return e.scanIndices(ctx, safeScanLimit)
}

// scanIndices probes device indices 0..limit-1 and keeps the ones
// that open and yield a frame.
func (e *Enumerator) scanIndices(ctx context.Context, limit int) []Device {
	var devices []Device
	for i := 0; i < limit; i++ {
		if ctx.Err() != nil {
			break
		}
		if e.probe(Device{Index: i}) {
			devices = append(devices, Device{Index: i})
		}
	}
	return devices
}

var videoNodeRe = regexp.MustCompile(`^/dev/video(\d+)$`)

// listV4L2 invokes v4l2-ctl to list video device nodes.
func listV4L2(ctx context.Context) ([]Device, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "v4l2-ctl", "--list-devices").Output()
	if err != nil {
		return nil, fmt.Errorf("v4l2-ctl: %w", err)
	}
	return parseV4L2Devices(string(out)), nil
}

// parseV4L2Devices reads `v4l2-ctl --list-devices` output: an
// unindented device name line followed by indented /dev/* nodes.
func parseV4L2Devices(out string) []Device {
	var devices []Device
	label := ""
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(line, "\t") && !strings.HasPrefix(line, " ") {
			label = strings.TrimSuffix(trimmed, ":")
			continue
		}
		m := videoNodeRe.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		idx, _ := strconv.Atoi(m[1])
		devices = append(devices, Device{Index: idx, Path: trimmed, Label: label})
	}
	return devices
}
