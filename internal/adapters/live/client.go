package live

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/ports"
	"github.com/lcalzada-xor/campaign-heatmap/internal/telemetry"
)

// DefaultPath is where the campaign API serves its push channel.
const DefaultPath = "/ws"

const writeWait = 5 * time.Second

var errSessionClosed = errors.New("server closed the socket.io session")

// Options configures the feed client.
type Options struct {
	// Path is appended to the base URL; it may carry a query string.
	Path string
	// Reconnect redials with exponential backoff after a dropped connection.
	Reconnect  bool
	MinBackoff time.Duration
	MaxBackoff time.Duration
	Logger     *slog.Logger
}

// Ensure compliance
var _ ports.LiveFeed = (*Client)(nil)

// Client subscribes to location_update events over a WebSocket.
type Client struct {
	url       string
	dialer    *websocket.Dialer
	reconnect bool
	minWait   time.Duration
	maxWait   time.Duration
	log       *slog.Logger
}

// NewClient derives the ws:// or wss:// endpoint from the API base URL.
func NewClient(baseURL string, opts Options) (*Client, error) {
	endpoint, err := feedURL(baseURL, opts.Path)
	if err != nil {
		return nil, err
	}
	if opts.MinBackoff <= 0 {
		opts.MinBackoff = time.Second
	}
	if opts.MaxBackoff < opts.MinBackoff {
		opts.MaxBackoff = opts.MinBackoff
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		url: endpoint,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
		reconnect: opts.Reconnect,
		minWait:   opts.MinBackoff,
		maxWait:   opts.MaxBackoff,
		log:       opts.Logger.With("component", "live-feed", "url", endpoint),
	}, nil
}

func feedURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid feed url %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid feed url %q: unsupported scheme %q", baseURL, u.Scheme)
	}
	if path == "" {
		path = DefaultPath
	}
	// socket.io endpoints carry their transport in the query, e.g. /socket.io/?EIO=4&transport=websocket
	if i := strings.IndexByte(path, '?'); i >= 0 {
		u.RawQuery = path[i+1:]
		path = path[:i]
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String(), nil
}

// Subscribe delivers location updates to handler until ctx ends. Without
// Reconnect the first dropped connection ends the subscription with its error.
func (c *Client) Subscribe(ctx context.Context, handler func(domain.LocationUpdate)) error {
	wait := c.minWait
	for {
		connected, err := c.session(ctx, handler)
		if ctx.Err() != nil {
			return nil
		}
		if !c.reconnect {
			return err
		}
		if connected {
			wait = c.minWait
		}

		c.log.Warn("Live feed disconnected, reconnecting", "error", err, "backoff", wait)
		telemetry.FeedReconnects.Inc()

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
		wait = nextBackoff(wait, c.maxWait)
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}

// session runs one connection. connected reports whether the dial succeeded.
func (c *Client) session(ctx context.Context, handler func(domain.LocationUpdate)) (connected bool, err error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer conn.Close()

	c.log.Info("Live feed connected")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("read: %w", err)
		}
		frame = bytes.TrimSpace(frame)

		if reply := engineReply(frame); reply != nil {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
				return true, fmt.Errorf("write %s: %w", reply, err)
			}
			continue
		}
		if engineClosed(frame) {
			return true, errSessionClosed
		}

		name, payload, ok := DecodeEvent(frame)
		if !ok || name != EventLocationUpdate {
			continue
		}

		var u domain.LocationUpdate
		if err := json.Unmarshal(payload, &u); err != nil {
			telemetry.LiveUpdates.WithLabelValues("malformed").Inc()
			c.log.Warn("Malformed location update", "error", err)
			continue
		}
		handler(u)
	}
}
