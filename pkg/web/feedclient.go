package web

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// feedReadTimeout bounds how long the client waits between server
	// messages. The server pings well inside this window, so only a
	// dead connection trips it.
	feedReadTimeout = 120 * time.Second
)

// FeedClient consumes a server's feed socket from another process.
// Rendered frames arrive as binary messages, events as JSON text;
// both are delivered through callbacks set before Connect.
type FeedClient struct {
	addr string
	ws   *websocket.Conn
	wsMu sync.Mutex

	// OnFrame receives each rendered text block.
	OnFrame func(block string)

	// OnEvent receives stats, status, and progress events.
	OnEvent func(ev FeedEvent)

	// OnError is called when the connection fails mid-stream.
	OnError func(err error)

	closed bool
	done   chan struct{}
}

// NewFeedClient creates a client for the feed at addr (host:port).
func NewFeedClient(addr string) *FeedClient {
	return &FeedClient{
		addr: addr,
		done: make(chan struct{}),
	}
}

// Connect establishes the websocket connection and starts reading.
func (c *FeedClient) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.addr, Path: "/ws/feed"}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	ws, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("connect feed %s: %w", u.String(), err)
	}
	c.ws = ws

	// Answer server pings and treat them as liveness: an idle feed
	// only carries pings, and those must keep the read alive.
	c.ws.SetPingHandler(func(appData string) error {
		c.ws.SetReadDeadline(time.Now().Add(feedReadTimeout))
		c.wsMu.Lock()
		defer c.wsMu.Unlock()
		return c.ws.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})
	c.ws.SetReadDeadline(time.Now().Add(feedReadTimeout))

	go c.handleMessages()

	return nil
}

// Done is closed when the read loop ends, whether by Close or by a
// connection failure.
func (c *FeedClient) Done() <-chan struct{} {
	return c.done
}

// Close terminates the connection. Safe to call more than once.
func (c *FeedClient) Close() {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.ws != nil {
		c.ws.Close()
	}
}

func (c *FeedClient) isClosed() bool {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	return c.closed
}

// handleMessages dispatches incoming feed traffic until the
// connection ends.
func (c *FeedClient) handleMessages() {
	defer close(c.done)

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if !c.isClosed() && c.OnError != nil {
				c.OnError(err)
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(feedReadTimeout))

		switch msgType {
		case websocket.BinaryMessage:
			if c.OnFrame != nil {
				c.OnFrame(string(data))
			}

		case websocket.TextMessage:
			var ev FeedEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				continue
			}
			if c.OnEvent != nil {
				c.OnEvent(ev)
			}
		}
	}
}
