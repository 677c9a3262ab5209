package video

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestBatchStrideAndBudget(t *testing.T) {
	f := &fakeFactory{frames: 1000}
	batch := NewBatchConverterWith(f.open)

	var progress [][2]int
	result, err := batch.Process(context.Background(), "clip.mp4", testConfig(), BatchOptions{
		Stride:    5,
		MaxFrames: 10,
		OnProgress: func(processed, target int) {
			progress = append(progress, [2]int{processed, target})
		},
	})
	if err != nil {
		t.Fatalf("failed to process: %v", err)
	}

	if result.EffectiveTotal != 50 {
		t.Errorf("expected effective total 50, got %d", result.EffectiveTotal)
	}
	if result.Processed != 10 {
		t.Errorf("expected 10 processed frames, got %d", result.Processed)
	}
	if result.Stopped {
		t.Error("expected no early stop")
	}

	want := []int{0, 5, 10, 15, 20, 25, 30, 35, 40, 45}
	reads := f.opened[0].reads
	if len(reads) != len(want) {
		t.Fatalf("expected %d reads, got %d", len(want), len(reads))
	}
	for i, idx := range want {
		if reads[i] != idx {
			t.Errorf("read %d = frame %d, expected %d", i, reads[i], idx)
		}
	}

	if len(progress) != 10 {
		t.Fatalf("expected 10 progress reports, got %d", len(progress))
	}
	for i, p := range progress {
		if p[0] != i+1 || p[1] != 10 {
			t.Errorf("progress %d = (%d,%d), expected (%d,10)", i, p[0], p[1], i+1)
		}
	}
}

func TestBatchWholeFile(t *testing.T) {
	f := &fakeFactory{frames: 7}
	batch := NewBatchConverterWith(f.open)

	result, err := batch.Process(context.Background(), "clip.mp4", testConfig(), BatchOptions{
		Stride: 4,
	})
	if err != nil {
		t.Fatalf("failed to process: %v", err)
	}

	// Indices 0 and 4 fall inside the 7-frame range.
	if result.Processed != 2 {
		t.Errorf("expected 2 processed frames, got %d", result.Processed)
	}
	if result.EffectiveTotal != 7 {
		t.Errorf("expected effective total 7, got %d", result.EffectiveTotal)
	}
}

func TestBatchStrideClamped(t *testing.T) {
	f := &fakeFactory{frames: 3}
	batch := NewBatchConverterWith(f.open)

	result, err := batch.Process(context.Background(), "clip.mp4", testConfig(), BatchOptions{
		Stride: 0,
	})
	if err != nil {
		t.Fatalf("failed to process: %v", err)
	}
	if result.Processed != 3 {
		t.Errorf("expected stride 0 to process every frame, got %d", result.Processed)
	}
}

func TestBatchEarlyStopPartial(t *testing.T) {
	f := &fakeFactory{frames: 100, failAt: 12}
	batch := NewBatchConverterWith(f.open)

	result, err := batch.Process(context.Background(), "clip.mp4", testConfig(), BatchOptions{
		Stride: 5,
	})
	if err != nil {
		t.Fatalf("expected early stop without error, got %v", err)
	}

	if !result.Stopped {
		t.Error("expected result to be marked stopped")
	}
	if got := len(result.Blocks); got != 3 {
		t.Errorf("expected 3 rendered blocks before the failure, got %d", got)
	}
	if result.Processed != 3 {
		t.Errorf("expected processed count 3, got %d", result.Processed)
	}
}

func TestBatchCancel(t *testing.T) {
	f := &fakeFactory{frames: 1000}
	batch := NewBatchConverterWith(f.open)

	ctx, cancel := context.WithCancel(context.Background())
	result, err := batch.Process(ctx, "clip.mp4", testConfig(), BatchOptions{
		Stride: 1,
		OnProgress: func(processed, target int) {
			if processed == 1 {
				cancel()
			}
		},
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.Processed != 1 {
		t.Errorf("expected 1 frame processed before cancellation, got %+v", result)
	}
}

func TestBatchOpenError(t *testing.T) {
	f := &fakeFactory{openErr: errors.New("no such file")}
	batch := NewBatchConverterWith(f.open)

	_, err := batch.Process(context.Background(), "missing.mp4", testConfig(), BatchOptions{})
	if err == nil {
		t.Error("expected open error to propagate")
	}
}

func TestBatchDecoderReleased(t *testing.T) {
	f := &fakeFactory{frames: 10}
	batch := NewBatchConverterWith(f.open)

	if _, err := batch.Process(context.Background(), "clip.mp4", testConfig(), BatchOptions{Stride: 2}); err != nil {
		t.Fatalf("failed to process: %v", err)
	}
	if got := f.opened[0].closed; got != 1 {
		t.Errorf("expected decoder released after batch, got %d closes", got)
	}
}

func TestJoinBlocks(t *testing.T) {
	joined := JoinBlocks([]string{"@@\n@@", "..\n..", "##\n##"})

	if got := strings.Count(joined, "\n\n"); got != 2 {
		t.Errorf("expected 2 blank-line separators, got %d", got)
	}
	if !strings.HasPrefix(joined, "@@\n@@\n\n") {
		t.Errorf("unexpected join layout: %q", joined)
	}

	if got := JoinBlocks(nil); got != "" {
		t.Errorf("expected empty join for no blocks, got %q", got)
	}
}
