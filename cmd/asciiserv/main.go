// asciiserv: HTTP and websocket server exposing the converter to
// front-end shells
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/talantvacheslav/ascii-converter/internal/log"
	"github.com/talantvacheslav/ascii-converter/pkg/ascii"
	"github.com/talantvacheslav/ascii-converter/pkg/camera"
	"github.com/talantvacheslav/ascii-converter/pkg/settings"
	"github.com/talantvacheslav/ascii-converter/pkg/video"
	"github.com/talantvacheslav/ascii-converter/pkg/web"
)

func main() {
	defaultConfig := settings.DefaultPath
	if env := os.Getenv("ASCII_CONVERTER_CONFIG"); env != "" {
		defaultConfig = env
	}

	addr := flag.String("addr", ":8080", "Listen address")
	configPath := flag.String("config", defaultConfig, "Config file path")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		log.Init("debug")
	} else {
		log.Init("info")
	}

	store, err := settings.NewStore(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	converter := ascii.NewConverter(store)
	cache := video.NewFrameCache()
	cameras := camera.NewManager()

	server := web.NewServer(*addr, converter, cache, cameras)

	fmt.Println()
	fmt.Println("🎨 ascii-converter server")
	fmt.Printf("   Config: %s\n", store.Path())
	fmt.Printf("   API:    http://localhost%s/api\n", *addr)
	fmt.Printf("   Feed:   ws://localhost%s/ws/feed\n", *addr)
	fmt.Println()

	server.StartAsync()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n👋 Shutting down...")

	if err := server.Shutdown(); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	cache.Close()

	fmt.Println("✅ Goodbye!")
}
