package web

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/talantvacheslav/ascii-converter/pkg/ascii"
	"github.com/talantvacheslav/ascii-converter/pkg/camera"
	"github.com/talantvacheslav/ascii-converter/pkg/hub"
	"github.com/talantvacheslav/ascii-converter/pkg/video"
)

// FeedEvent is the JSON side of the websocket feed. Type is one of
// "stats", "status", or "progress"; the other fields are populated
// per type.
type FeedEvent struct {
	Type      string        `json:"type"`
	Status    string        `json:"status,omitempty"`
	Stats     *camera.Stats `json:"stats,omitempty"`
	Processed int           `json:"processed,omitempty"`
	Target    int           `json:"target,omitempty"`
}

// statusFor maps core errors onto HTTP status codes. Unknown errors
// stay 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ascii.ErrNotFound), errors.Is(err, video.ErrNotFound):
		return 404
	case errors.Is(err, ascii.ErrNoImage), errors.Is(err, ascii.ErrNoRender), errors.Is(err, video.ErrClosed):
		return 409
	case errors.Is(err, ascii.ErrDecode), errors.Is(err, video.ErrOpen), errors.Is(err, video.ErrNoFrame):
		return 422
	case errors.Is(err, ascii.ErrFetch), errors.Is(err, camera.ErrDeviceOpen), errors.Is(err, camera.ErrDisconnected):
		return 502
	default:
		return 500
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(400).JSON(fiber.Map{"error": msg})
}

// handleGetConfig returns the active configuration.
func (s *Server) handleGetConfig(c *fiber.Ctx) error {
	return c.JSON(s.converter.Config())
}

// handleUpdateConfig applies a partial configuration update and
// returns the resulting config.
func (s *Server) handleUpdateConfig(c *fiber.Ctx) error {
	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if err := s.converter.UpdateConfig(params); err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(s.converter.Config())
}

// handleResetConfig restores defaults.
func (s *Server) handleResetConfig(c *fiber.Ctx) error {
	s.converter.ResetConfig()
	return c.JSON(s.converter.Config())
}

// handleLoad loads an image from a local path or URL.
func (s *Server) handleLoad(c *fiber.Ctx) error {
	var req struct {
		Source string `json:"source"`
	}
	if err := c.BodyParser(&req); err != nil || req.Source == "" {
		return badRequest(c, "source required")
	}
	if err := s.converter.Load(req.Source); err != nil {
		return fail(c, err)
	}
	info, _ := s.converter.ImageInfo()
	return c.JSON(info)
}

// handleImageInfo describes the currently loaded image.
func (s *Server) handleImageInfo(c *fiber.Ctx) error {
	info, ok := s.converter.ImageInfo()
	if !ok {
		return fail(c, ascii.ErrNoImage)
	}
	return c.JSON(info)
}

// handleRender renders the loaded image, optionally with one-off
// config overrides that leave the active config untouched.
func (s *Server) handleRender(c *fiber.Ctx) error {
	var req struct {
		Overrides map[string]interface{} `json:"overrides"`
	}
	if err := c.BodyParser(&req); err != nil {
		req.Overrides = nil
	}

	cfg := s.converter.Config()
	if len(req.Overrides) > 0 {
		cfg = cfg.Apply(req.Overrides)
	}
	block, err := s.converter.RenderWith(cfg)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"text": block})
}

// handleSave writes the last render to disk.
func (s *Server) handleSave(c *fiber.Ctx) error {
	var req struct {
		Path string `json:"path"`
	}
	if err := c.BodyParser(&req); err != nil {
		req.Path = ""
	}
	path, err := s.converter.SaveRendered(req.Path)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"path": path})
}

// handleVideoOpen opens a video file for interactive frame access.
func (s *Server) handleVideoOpen(c *fiber.Ctx) error {
	var req struct {
		Path string `json:"path"`
	}
	if err := c.BodyParser(&req); err != nil || req.Path == "" {
		return badRequest(c, "path required")
	}
	if err := s.cache.Open(req.Path); err != nil {
		return fail(c, err)
	}
	frames, err := s.cache.FrameCount()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"path": req.Path, "frames": frames})
}

// handleVideoInfo describes the open video and its cache.
func (s *Server) handleVideoInfo(c *fiber.Ctx) error {
	frames, err := s.cache.FrameCount()
	if err != nil {
		return fail(c, err)
	}
	hits, misses, entries := s.cache.Stats()
	return c.JSON(fiber.Map{
		"path":   s.cache.Path(),
		"frames": frames,
		"cache": fiber.Map{
			"hits":    hits,
			"misses":  misses,
			"entries": entries,
		},
	})
}

// handleVideoFrame renders a single frame through the cache using the
// active configuration.
func (s *Server) handleVideoFrame(c *fiber.Ctx) error {
	idx, err := c.ParamsInt("idx")
	if err != nil || idx < 0 {
		return badRequest(c, "frame index must be a non-negative integer")
	}
	block, err := s.cache.GetFrame(idx, s.converter.Config())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"index": idx, "text": block})
}

// handleVideoProcess converts a whole file in one pass, broadcasting
// progress on the feed. With "out" set the joined result is written
// to disk; the blocks themselves never travel over the API.
func (s *Server) handleVideoProcess(c *fiber.Ctx) error {
	var req struct {
		Path      string `json:"path"`
		Stride    int    `json:"stride"`
		MaxFrames int    `json:"max_frames"`
		Out       string `json:"out"`
	}
	if err := c.BodyParser(&req); err != nil || req.Path == "" {
		return badRequest(c, "path required")
	}

	result, err := s.batch.Process(c.UserContext(), req.Path, s.converter.Config(), video.BatchOptions{
		Stride:    req.Stride,
		MaxFrames: req.MaxFrames,
		OnProgress: func(processed, target int) {
			s.feed.BroadcastJSON(FeedEvent{Type: "progress", Processed: processed, Target: target})
		},
	})
	if err != nil {
		return fail(c, err)
	}

	resp := fiber.Map{
		"processed":       result.Processed,
		"effective_total": result.EffectiveTotal,
		"stopped":         result.Stopped,
	}
	if req.Out != "" {
		if err := os.WriteFile(req.Out, []byte(video.JoinBlocks(result.Blocks)), 0o644); err != nil {
			return fail(c, fmt.Errorf("write output: %w", err))
		}
		resp["out"] = req.Out
	}
	return c.JSON(resp)
}

// handleListCameras enumerates capture devices. Never empty: on a
// machine with nothing detected the default device is still offered.
func (s *Server) handleListCameras(c *fiber.Ctx) error {
	return c.JSON(s.cameras.Devices(c.UserContext()))
}

// LiveStartRequest selects a device and session options. All fields
// are optional; an empty body starts the default device with the
// active configuration.
type LiveStartRequest struct {
	Device    int                    `json:"device"`
	Path      string                 `json:"path"`
	Mirror    bool                   `json:"mirror"`
	FrameSkip int                    `json:"frame_skip"`
	Overrides map[string]interface{} `json:"overrides"`
}

// handleLiveStart opens a capture device and streams rendered frames
// to the feed until stopped or disconnected.
func (s *Server) handleLiveStart(c *fiber.Ctx) error {
	var req LiveStartRequest
	if err := c.BodyParser(&req); err != nil {
		req = LiveStartRequest{}
	}

	cfg := s.converter.Config()
	if len(req.Overrides) > 0 {
		cfg = cfg.Apply(req.Overrides)
	}

	handle := uuid.NewString()
	dev := camera.Device{Index: req.Device, Path: req.Path}

	_, err := s.cameras.Start(dev, cfg, camera.Options{
		Mirror:    req.Mirror,
		FrameSkip: req.FrameSkip,
		OnFrame:   s.feed.BroadcastFrame,
		OnStats: func(st camera.Stats) {
			s.feed.BroadcastJSON(FeedEvent{Type: "stats", Stats: &st})
		},
		OnStop: func(cause error) {
			status := "stopped"
			if cause != nil {
				status = "disconnected"
			}
			s.feed.BroadcastJSON(FeedEvent{Type: "status", Status: status})
			s.clearLive(handle)
		},
	})
	if err != nil {
		return fail(c, err)
	}

	s.liveMu.Lock()
	s.liveHandle = handle
	s.liveMu.Unlock()

	s.feed.BroadcastJSON(FeedEvent{Type: "status", Status: "started"})
	return c.JSON(fiber.Map{"handle": handle, "device": dev.String()})
}

// handleLiveStop ends the capture session named by the handle.
func (s *Server) handleLiveStop(c *fiber.Ctx) error {
	var req struct {
		Handle string `json:"handle"`
	}
	if err := c.BodyParser(&req); err != nil {
		req.Handle = ""
	}

	s.liveMu.Lock()
	current := s.liveHandle
	s.liveMu.Unlock()

	if current == "" || req.Handle != current {
		return c.Status(404).JSON(fiber.Map{"error": "no live session with that handle"})
	}

	s.cameras.Stop()
	return c.JSON(fiber.Map{"handle": req.Handle, "status": "stopped"})
}

// clearLive forgets the handle if it still names the current session.
// A replacement session registered after us must not be cleared.
func (s *Server) clearLive(handle string) {
	s.liveMu.Lock()
	if s.liveHandle == handle {
		s.liveHandle = ""
	}
	s.liveMu.Unlock()
}

// handleFeedWS attaches a websocket client to the feed hub.
func (s *Server) handleFeedWS(c *websocket.Conn) {
	client := hub.NewClient(s.feed, c)
	client.Run()
}
