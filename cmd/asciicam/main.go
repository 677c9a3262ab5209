// asciicam: live camera to ASCII in the terminal, either from a local
// capture device or from a running asciiserv feed
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/talantvacheslav/ascii-converter/internal/log"
	"github.com/talantvacheslav/ascii-converter/pkg/ascii"
	"github.com/talantvacheslav/ascii-converter/pkg/camera"
	"github.com/talantvacheslav/ascii-converter/pkg/web"
)

func main() {
	// graceful shutdown on SIGINT, SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	connect := flag.String("connect", "", "Consume a server feed (host:port) instead of opening a camera")
	device := flag.Int("device", 0, "Camera index")
	list := flag.Bool("list", false, "List capture devices and exit")
	mirror := flag.Bool("mirror", false, "Mirror frames horizontally")
	skip := flag.Int("skip", 1, "Render every Nth captured frame")
	width := flag.Int("width", 0, "Output columns (0 = terminal width)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		log.Init("debug")
	} else {
		log.Init("error")
	}

	if *list {
		for _, d := range camera.NewEnumerator().Devices(ctx) {
			fmt.Println(" •", d.String())
		}
		return nil
	}

	if *connect != "" {
		return runRemote(ctx, *connect)
	}
	return runLocal(ctx, *device, *mirror, *skip, *width)
}

// terminalConfig sizes the render to the terminal, keeping one row
// for the status line.
func terminalConfig(width int) ascii.Config {
	cfg := ascii.DefaultConfig()
	if width > 0 {
		cfg.Width = width
		return cfg
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 1 {
			cfg.Width = w
			cfg.Height = h - 1
		}
	}
	return cfg
}

func runLocal(ctx context.Context, device int, mirror bool, skip, width int) error {
	cfg := terminalConfig(width)

	frames := make(chan string, 1)
	stopErr := make(chan error, 1)

	var statsMu sync.Mutex
	var last camera.Stats

	mgr := camera.NewManager()
	session, err := mgr.Start(camera.Device{Index: device}, cfg, camera.Options{
		Mirror:    mirror,
		FrameSkip: skip,
		OnFrame: func(block string) {
			// Painting lags capture; keep only the newest frame.
			select {
			case frames <- block:
			default:
			}
		},
		OnStats: func(st camera.Stats) {
			statsMu.Lock()
			last = st
			statsMu.Unlock()
		},
		OnStop: func(cause error) {
			stopErr <- cause
		},
	})
	if err != nil {
		return err
	}
	defer mgr.Stop()

	termenv.HideCursor()
	defer termenv.ShowCursor()
	termenv.AltScreen()
	defer termenv.ExitAltScreen()

	label := session.Device().String()
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-session.Done():
			if cause := <-stopErr; cause != nil {
				return cause
			}
			return nil

		case block := <-frames:
			statsMu.Lock()
			st := last
			statsMu.Unlock()

			termenv.MoveCursor(0, 0)
			fmt.Fprint(os.Stdout, block)
			fmt.Fprintf(os.Stdout, "\n📷 %s | %.1f fps | render %.1f ms | Ctrl+C quits",
				label, st.FPS, st.RenderMS)
		}
	}
}

func runRemote(ctx context.Context, addr string) error {
	frames := make(chan string, 1)

	var statsMu sync.Mutex
	var last camera.Stats
	status := "live"

	fc := web.NewFeedClient(addr)
	fc.OnFrame = func(block string) {
		select {
		case frames <- block:
		default:
		}
	}
	fc.OnEvent = func(ev web.FeedEvent) {
		statsMu.Lock()
		defer statsMu.Unlock()
		switch ev.Type {
		case "stats":
			if ev.Stats != nil {
				last = *ev.Stats
			}
		case "status":
			status = ev.Status
		}
	}
	if err := fc.Connect(); err != nil {
		return err
	}
	defer fc.Close()

	termenv.HideCursor()
	defer termenv.ShowCursor()
	termenv.AltScreen()
	defer termenv.ExitAltScreen()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-fc.Done():
			return fmt.Errorf("feed connection to %s closed", addr)

		case block := <-frames:
			statsMu.Lock()
			st := last
			state := status
			statsMu.Unlock()

			termenv.MoveCursor(0, 0)
			fmt.Fprint(os.Stdout, block)
			fmt.Fprintf(os.Stdout, "\n🌐 %s (%s) | %.1f fps | render %.1f ms | Ctrl+C quits",
				addr, state, st.FPS, st.RenderMS)
		}
	}
}
