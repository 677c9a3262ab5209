// asciiconv: one-shot image or video to ASCII conversion
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/talantvacheslav/ascii-converter/internal/log"
	"github.com/talantvacheslav/ascii-converter/pkg/ascii"
	"github.com/talantvacheslav/ascii-converter/pkg/video"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	width := flag.Int("width", 0, "Output columns (0 = terminal width when printing to one)")
	height := flag.Int("height", 0, "Output rows (0 derives from aspect ratio)")
	charset := flag.String("charset", "", "Glyph ramp, darkest first")
	brightness := flag.Float64("brightness", 0, "Brightness multiplier")
	contrast := flag.Float64("contrast", 0, "Contrast multiplier")
	invert := flag.Bool("invert", false, "Swap dark and bright")
	spacing := flag.Float64("spacing", 0, "Line spacing correction for derived height")
	videoMode := flag.Bool("video", false, "Treat the input as a video file")
	stride := flag.Int("stride", 1, "Video: render every Nth frame")
	maxFrames := flag.Int("max-frames", 0, "Video: stop after N rendered frames (0 = all)")
	out := flag.String("out", "", "Write output to this file instead of stdout")
	show := flag.Bool("show", false, "Also print to stdout when -out is set")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		return errors.New("usage: asciiconv [flags] <image-or-video>")
	}
	source := flag.Arg(0)

	if *debug {
		log.Init("debug")
	} else {
		log.Init("warn")
	}

	cfg := ascii.DefaultConfig()
	if *width > 0 {
		cfg.Width = *width
	} else if *out == "" && term.IsTerminal(int(os.Stdout.Fd())) {
		// Printing straight to a terminal: fill its width.
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			cfg.Width = w
		}
	}
	if *height > 0 {
		cfg.Height = *height
	}
	if *charset != "" {
		cfg.Charset = *charset
	}
	if *brightness > 0 {
		cfg.Brightness = *brightness
	}
	if *contrast > 0 {
		cfg.Contrast = *contrast
	}
	if *spacing > 0 {
		cfg.LineSpacing = *spacing
	}
	cfg.Invert = *invert
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	if *videoMode {
		return runVideo(source, cfg, *stride, *maxFrames, *out, *show)
	}
	return runImage(source, cfg, *out, *show)
}

func runImage(source string, cfg ascii.Config, out string, show bool) error {
	conv := ascii.NewConverter(nil)
	if err := conv.SetConfig(cfg); err != nil {
		return err
	}
	if err := conv.Load(source); err != nil {
		return err
	}

	text, err := conv.Render()
	if err != nil {
		return err
	}

	if out == "" {
		fmt.Print(text)
		return nil
	}
	path, err := conv.SaveRendered(out)
	if err != nil {
		return err
	}
	fmt.Printf("💾 Saved: %s\n", path)
	if show {
		fmt.Print(text)
	}
	return nil
}

func runVideo(source string, cfg ascii.Config, stride, maxFrames int, out string, show bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Fprintln(os.Stderr, "\nStopping...")
		cancel()
	}()

	batch := video.NewBatchConverter()
	result, err := batch.Process(ctx, source, cfg, video.BatchOptions{
		Stride:    stride,
		MaxFrames: maxFrames,
		OnProgress: func(processed, target int) {
			fmt.Fprintf(os.Stderr, "\r🎞  Frames: %d/%d", processed, target)
		},
	})
	if err != nil {
		// A cancelled pass still carries everything rendered so far.
		if !errors.Is(err, context.Canceled) || result == nil || result.Processed == 0 {
			return err
		}
	}
	fmt.Fprintln(os.Stderr)

	if result.Stopped {
		fmt.Fprintf(os.Stderr, "⚠️  Stream ended early after %d frames\n", result.Processed)
	}

	text := video.JoinBlocks(result.Blocks)
	if out == "" {
		fmt.Print(text)
		return nil
	}
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("💾 Saved %d frames: %s\n", result.Processed, out)
	if show {
		fmt.Print(text)
	}
	return nil
}
