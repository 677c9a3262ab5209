package camera

import (
	"context"
	"errors"
	"testing"
)

// fakeProbe approves a fixed set of device indices and records every
// probe attempt.
type fakeProbe struct {
	working map[int]bool
	probed  []Device
}

func (p *fakeProbe) probe(dev Device) bool {
	p.probed = append(p.probed, dev)
	return p.working[dev.Index]
}

func listFixed(devices []Device, err error) ListFunc {
	return func(ctx context.Context) ([]Device, error) {
		return devices, err
	}
}

func TestEnumerateNativeList(t *testing.T) {
	probe := &fakeProbe{working: map[int]bool{0: true, 2: true}}
	candidates := []Device{
		{Index: 0, Path: "/dev/video0", Label: "Integrated Camera"},
		{Index: 1, Path: "/dev/video1", Label: "Integrated Camera"},
		{Index: 2, Path: "/dev/video2", Label: "USB Camera"},
	}
	e := NewEnumeratorFor("linux", probe.probe, listFixed(candidates, nil))

	devices := e.Devices(context.Background())

	if len(devices) != 2 {
		t.Fatalf("expected 2 working devices, got %d: %v", len(devices), devices)
	}
	if devices[0].Path != "/dev/video0" || devices[1].Path != "/dev/video2" {
		t.Errorf("expected /dev/video0 and /dev/video2, got %v", devices)
	}
	if len(probe.probed) != 3 {
		t.Errorf("expected every candidate probed, got %d probes", len(probe.probed))
	}
}

func TestEnumerateListerErrorFallsBackToScan(t *testing.T) {
	probe := &fakeProbe{working: map[int]bool{1: true}}
	e := NewEnumeratorFor("linux", probe.probe, listFixed(nil, errors.New("v4l2-ctl: not found")))

	devices := e.Devices(context.Background())

	if len(devices) != 1 || devices[0].Index != 1 {
		t.Fatalf("expected index scan to find device 1, got %v", devices)
	}
	// The scan covers indices 0..9.
	if len(probe.probed) != fullScanLimit {
		t.Errorf("expected %d scan probes, got %d", fullScanLimit, len(probe.probed))
	}
}

func TestEnumerateDeadCandidatesFallBackToScan(t *testing.T) {
	probe := &fakeProbe{working: map[int]bool{3: true}}
	candidates := []Device{{Index: 7, Path: "/dev/video7", Label: "Ghost"}}
	e := NewEnumeratorFor("linux", probe.probe, listFixed(candidates, nil))

	devices := e.Devices(context.Background())

	// /dev/video7 fails its probe, so the index scan runs and finds
	// device 3.
	if len(devices) != 1 || devices[0].Index != 3 {
		t.Fatalf("expected scan fallback to find device 3, got %v", devices)
	}
}

func TestEnumerateNeverEmpty(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows", "plan9"} {
		probe := &fakeProbe{working: map[int]bool{}}
		e := NewEnumeratorFor(goos, probe.probe, listFixed(nil, errors.New("unavailable")))

		devices := e.Devices(context.Background())

		if len(devices) != 1 || devices[0].Index != 0 {
			t.Errorf("%s: expected last-resort [index 0], got %v", goos, devices)
		}
	}
}

func TestEnumerateScanPlatforms(t *testing.T) {
	tests := []struct {
		goos   string
		probes int
	}{
		{"darwin", fullScanLimit},
		{"windows", fullScanLimit},
		{"plan9", safeScanLimit},
	}

	for _, tt := range tests {
		probe := &fakeProbe{working: map[int]bool{0: true, 4: true}}
		e := NewEnumeratorFor(tt.goos, probe.probe, nil)

		devices := e.Devices(context.Background())

		if len(probe.probed) != tt.probes {
			t.Errorf("%s: expected %d probes, got %d", tt.goos, tt.probes, len(probe.probed))
		}
		if len(devices) != 2 {
			t.Errorf("%s: expected 2 devices, got %v", tt.goos, devices)
		}
	}
}

func TestEnumerateCancelled(t *testing.T) {
	probe := &fakeProbe{working: map[int]bool{5: true}}
	e := NewEnumeratorFor("darwin", probe.probe, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	devices := e.Devices(ctx)

	if len(probe.probed) != 0 {
		t.Errorf("expected no probes after cancellation, got %d", len(probe.probed))
	}
	// Even a cancelled enumeration keeps the never-empty contract.
	if len(devices) != 1 || devices[0].Index != 0 {
		t.Errorf("expected last-resort [index 0], got %v", devices)
	}
}

func TestParseV4L2Devices(t *testing.T) {
	out := "Integrated Camera: Integrated C (usb-0000:00:14.0-8):\n" +
		"\t/dev/video0\n" +
		"\t/dev/video1\n" +
		"\t/dev/media0\n" +
		"\n" +
		"USB 2.0 Camera (usb-0000:00:14.0-1):\n" +
		"\t/dev/video2\n"

	devices := parseV4L2Devices(out)

	if len(devices) != 3 {
		t.Fatalf("expected 3 video nodes, got %d: %v", len(devices), devices)
	}
	if devices[0].Index != 0 || devices[0].Path != "/dev/video0" {
		t.Errorf("device 0 = %+v, expected /dev/video0", devices[0])
	}
	if devices[0].Label != "Integrated Camera: Integrated C (usb-0000:00:14.0-8)" {
		t.Errorf("device 0 label = %q", devices[0].Label)
	}
	if devices[2].Index != 2 || devices[2].Label != "USB 2.0 Camera (usb-0000:00:14.0-1)" {
		t.Errorf("device 2 = %+v, expected /dev/video2 under the USB camera", devices[2])
	}
}

func TestParseV4L2DevicesEmpty(t *testing.T) {
	if devices := parseV4L2Devices(""); len(devices) != 0 {
		t.Errorf("expected no devices from empty output, got %v", devices)
	}
}

func TestDeviceString(t *testing.T) {
	tests := []struct {
		dev  Device
		want string
	}{
		{Device{Index: 3}, "index 3"},
		{Device{Index: 0, Path: "/dev/video0"}, "/dev/video0"},
		{Device{Index: 0, Path: "/dev/video0", Label: "Cam"}, "/dev/video0 (Cam)"},
	}
	for _, tt := range tests {
		if got := tt.dev.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
