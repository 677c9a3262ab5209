// Package web exposes the converter over HTTP and websocket: a JSON
// API for configuration, image, video, and camera operations, plus a
// single feed socket that streams rendered frames and events to every
// connected front end.
package web

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/talantvacheslav/ascii-converter/internal/log"
	"github.com/talantvacheslav/ascii-converter/pkg/ascii"
	"github.com/talantvacheslav/ascii-converter/pkg/camera"
	"github.com/talantvacheslav/ascii-converter/pkg/hub"
	"github.com/talantvacheslav/ascii-converter/pkg/video"
)

// Server wires the conversion core to its network surface. One
// converter, one video cache, and one camera manager serve all
// clients; rendered output fans out through the feed hub.
type Server struct {
	app  *fiber.App
	addr string

	converter *ascii.Converter
	cache     *video.FrameCache
	batch     *video.BatchConverter
	cameras   *camera.Manager

	feed *hub.Hub

	// liveHandle names the current capture session. Stop requests
	// must present it, so a stale client cannot kill a session it
	// did not start.
	liveMu     sync.Mutex
	liveHandle string
}

// NewServer creates a server around the given collaborators.
func NewServer(addr string, conv *ascii.Converter, cache *video.FrameCache, cams *camera.Manager) *Server {
	s := &Server{
		addr:      addr,
		converter: conv,
		cache:     cache,
		batch:     video.NewBatchConverter(),
		cameras:   cams,
		feed:      hub.New("feed"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "ascii-converter",
		DisableStartupMessage: true,
	})

	// CORS for local front ends
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/config", s.handleGetConfig)
	api.Patch("/config", s.handleUpdateConfig)
	api.Post("/config/reset", s.handleResetConfig)
	api.Post("/load", s.handleLoad)
	api.Get("/image", s.handleImageInfo)
	api.Post("/render", s.handleRender)
	api.Post("/save", s.handleSave)
	api.Post("/video/open", s.handleVideoOpen)
	api.Get("/video", s.handleVideoInfo)
	api.Get("/video/frame/:idx", s.handleVideoFrame)
	api.Post("/video/process", s.handleVideoProcess)
	api.Get("/cameras", s.handleListCameras)
	api.Post("/live/start", s.handleLiveStart)
	api.Post("/live/stop", s.handleLiveStop)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/feed", websocket.New(s.handleFeedWS))

	s.app = app
	return s
}

// Start runs the feed hub and serves until Shutdown. It blocks.
func (s *Server) Start() error {
	go s.feed.Run()
	log.Info("server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("server stopped", "error", err)
		}
	}()
}

// Feed returns the broadcast hub carrying rendered frames and events.
func (s *Server) Feed() *hub.Hub {
	return s.feed
}

// Shutdown stops any live capture session and then the HTTP server.
func (s *Server) Shutdown() error {
	s.cameras.Stop()
	return s.app.Shutdown()
}
