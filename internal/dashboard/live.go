package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"weatherdash/shared/types"
)

// ErrNotConnected is returned by RequestWeather on a closed connection.
var ErrNotConnected = errors.New("live connection is not open")

// LiveHandlers are optional callbacks run on the connection's read goroutine.
type LiveHandlers struct {
	OnReading func(types.IoTUpdate)
	OnWeather func(json.RawMessage)
	OnError   func(message string)
}

// LiveConn is a dashboard's persistent connection to the gateway. The owner
// opens it when the dashboard starts and closes it when it goes away.
type LiveConn struct {
	url      string
	dialer   *websocket.Dialer
	handlers LiveHandlers
	logger   *slog.Logger
	feed     Feed

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	welcome   *types.Welcome
	done      chan struct{}

	writeMu sync.Mutex
}

func NewLiveConn(url string, handlers LiveHandlers, logger *slog.Logger) *LiveConn {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveConn{
		url:      url,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		handlers: handlers,
		logger:   logger.With("component", "live"),
	}
}

// Open dials the gateway and starts reading events. The connection counts as
// connected once the handshake completes.
func (c *LiveConn) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return errors.New("live connection already open")
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}

	c.conn = conn
	c.connected = true
	c.welcome = nil
	c.done = make(chan struct{})
	go c.readLoop(conn, c.done)
	return nil
}

// Close ends the connection and waits for the reader to exit. Safe to call on
// a connection that is not open.
func (c *LiveConn) Close() error {
	c.mu.Lock()
	conn, done := c.conn, c.done
	c.conn = nil
	c.connected = false
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	err := conn.Close()
	<-done
	return err
}

// Done is closed when the current connection's reader exits.
func (c *LiveConn) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.done
}

func (c *LiveConn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Welcome returns the greeting received on the current connection.
func (c *LiveConn) Welcome() (types.Welcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.welcome == nil {
		return types.Welcome{}, false
	}
	return *c.welcome, true
}

// Readings returns the live feed, newest first.
func (c *LiveConn) Readings() []types.IoTUpdate {
	return c.feed.Items()
}

// Latest returns the newest live reading, if any arrived yet.
func (c *LiveConn) Latest() (types.IoTUpdate, bool) {
	return c.feed.Latest()
}

// RequestWeather asks the gateway for current weather at loc. The answer
// arrives through OnWeather or OnError.
func (c *LiveConn) RequestWeather(loc Location) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	msg, err := types.NewEnvelope(types.EventRequestWeather, types.WeatherRequest{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	})
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("send request-weather: %w", err)
	}
	return nil
}

func (c *LiveConn) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.connected = false
		}
		c.mu.Unlock()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("live connection closed", "error", err)
			}
			return
		}
		c.dispatch(data)
	}
}

func (c *LiveConn) dispatch(data []byte) {
	var env types.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("malformed event", "error", err)
		return
	}

	switch env.Event {
	case types.EventWelcome:
		var w types.Welcome
		if err := json.Unmarshal(env.Data, &w); err != nil {
			c.logger.Warn("malformed welcome", "error", err)
			return
		}
		c.mu.Lock()
		c.welcome = &w
		c.mu.Unlock()
		c.logger.Debug("welcome received", "connection_id", w.ConnectionID)

	case types.EventIoTUpdate:
		var u types.IoTUpdate
		if err := json.Unmarshal(env.Data, &u); err != nil {
			c.logger.Warn("malformed iot-update", "error", err)
			return
		}
		c.feed.Push(u)
		if c.handlers.OnReading != nil {
			c.handlers.OnReading(u)
		}

	case types.EventWeatherUpdate:
		if c.handlers.OnWeather != nil {
			c.handlers.OnWeather(env.Data)
		}

	case types.EventError:
		var e types.ErrorEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			c.logger.Warn("malformed error event", "error", err)
			return
		}
		if c.handlers.OnError != nil {
			c.handlers.OnError(e.Message)
		}

	default:
		c.logger.Debug("ignoring event", "event", env.Event)
	}
}
