package video

import (
	"context"
	"strings"

	"github.com/talantvacheslav/ascii-converter/internal/log"
	"github.com/talantvacheslav/ascii-converter/pkg/ascii"
)

// BatchOptions control a full-pass video conversion.
type BatchOptions struct {
	// Stride is the sampling step; every Stride-th frame is rendered.
	// Values below 1 are treated as 1.
	Stride int

	// MaxFrames bounds how many frames are rendered. 0 means the
	// whole file.
	MaxFrames int

	// OnProgress, when set, is invoked after each rendered frame with
	// the running count and the target count.
	OnProgress func(processed, target int)
}

// BatchResult is the outcome of a full-pass conversion. A result with
// Stopped set is still valid: it holds everything rendered before the
// stream ended.
type BatchResult struct {
	Blocks         []string
	Processed      int
	EffectiveTotal int
	Stopped        bool
}

// BatchConverter walks a video file end-to-end at a fixed sampling
// stride, independent of the interactive cache.
type BatchConverter struct {
	open OpenFunc
}

// NewBatchConverter creates a batch converter decoding through
// OpenFile.
func NewBatchConverter() *BatchConverter {
	return &BatchConverter{open: OpenFile}
}

// NewBatchConverterWith creates a batch converter with a custom
// opener.
func NewBatchConverterWith(open OpenFunc) *BatchConverter {
	return &BatchConverter{open: open}
}

// Process renders every Stride-th frame of the file under cfg. The
// frame budget clamps the walked range to MaxFrames*Stride source
// frames, and the reported target is effectiveTotal/Stride. The first
// failed read stops the pass early without error. ctx is checked
// between frames for cooperative cancellation.
func (b *BatchConverter) Process(ctx context.Context, path string, cfg ascii.Config, opts BatchOptions) (*BatchResult, error) {
	stride := opts.Stride
	if stride < 1 {
		stride = 1
	}

	dec, err := b.open(path)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	total := dec.FrameCount()
	if opts.MaxFrames > 0 && total > opts.MaxFrames*stride {
		total = opts.MaxFrames * stride
	}
	target := total / stride

	log.Debug("batch conversion started", "path", path,
		"frames", dec.FrameCount(), "effective", total, "stride", stride)

	result := &BatchResult{EffectiveTotal: total}
	for idx := 0; idx < total; idx += stride {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		img, err := dec.ReadFrame(idx)
		if err != nil {
			log.Debug("batch stopped early", "frame", idx, "error", err)
			result.Stopped = true
			break
		}

		result.Blocks = append(result.Blocks, ascii.Render(img, cfg))
		result.Processed++
		if opts.OnProgress != nil {
			opts.OnProgress(result.Processed, target)
		}
	}

	log.Debug("batch conversion finished", "processed", result.Processed,
		"stopped", result.Stopped)
	return result, nil
}

// JoinBlocks concatenates rendered frames with a blank line between
// them, the on-disk artifact format for batch output.
func JoinBlocks(blocks []string) string {
	return strings.Join(blocks, "\n\n")
}
