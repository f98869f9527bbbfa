// Package realtime serves the dashboard's persistent connection: a welcome on
// open, every broker reading relayed as iot-update, and on-demand weather.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"weatherdash/internal/metrics"
	"weatherdash/internal/utils"
	"weatherdash/shared/types"
)

const (
	welcomeMessage      = "Connected to Weather Dashboard Server"
	weatherErrorMessage = "Failed to fetch weather data"
	weatherBusyMessage  = "Weather request already in progress"

	sendBuffer = 32
	readLimit  = 4096
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	writeWait  = 5 * time.Second
)

// WeatherFetcher answers request-weather with the provider's raw JSON.
type WeatherFetcher interface {
	CurrentWeather(ctx context.Context, latitude, longitude string) (json.RawMessage, error)
}

// Hub owns the set of open connections. Broker messages enter through
// HandleBrokerMessage and are fanned out to every connection's send queue;
// connections never touch the broker client.
type Hub struct {
	upgrader websocket.Upgrader
	origins  []string
	weather  WeatherFetcher
	logger   *slog.Logger
	newID    func() string
	now      func() time.Time

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	// weatherBusy is set while a request-weather is being answered.
	weatherBusy atomic.Bool
}

func NewHub(allowedOrigins []string, weather WeatherFetcher, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		origins: allowedOrigins,
		weather: weather,
		logger:  logger.With("component", "realtime"),
		newID:   uuid.NewString,
		now:     time.Now,
		clients: map[*client]struct{}{},
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin admits non-browser clients (no Origin), the configured
// allow-list, and pages served by the gateway itself.
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(h.origins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{id: h.newID(), conn: conn, send: make(chan []byte, sendBuffer)}

	// Queue the welcome before registering for broadcasts so it is always
	// the first frame on the connection.
	welcome, err := types.NewEnvelope(types.EventWelcome, types.Welcome{
		Message:      welcomeMessage,
		ConnectionID: c.id,
		Timestamp:    utils.Timestamp(h.now()),
	})
	if err != nil {
		h.logger.Error("build welcome failed", "error", err)
		_ = conn.Close()
		return
	}
	c.send <- welcome

	if !h.addClient(c) {
		_ = conn.Close()
		return
	}
	h.logger.Info("client connected", "connection_id", c.id, "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.writePump(c)
	h.readPump(ctx, c)

	h.logger.Info("client disconnected", "connection_id", c.id)
}

// HandleBrokerMessage decodes one broker message and relays it to every open
// connection. Messages that do not decode or validate are logged and skipped.
func (h *Hub) HandleBrokerMessage(topic string, payload []byte) {
	var r types.Reading
	if err := json.Unmarshal(payload, &r); err != nil {
		metrics.ReadingsDropped.Inc()
		h.logger.Warn("failed to parse broker message", "topic", topic, "error", err)
		return
	}
	if err := r.Validate(); err != nil {
		metrics.ReadingsDropped.Inc()
		h.logger.Warn("invalid reading", "topic", topic, "device_id", r.DeviceID, "error", err)
		return
	}

	h.Broadcast(types.IoTUpdate{Reading: r, Protocol: types.ProtocolMQTT, Topic: topic})
}

// Broadcast queues u on every connection. A connection whose queue is full is
// dropped rather than allowed to stall the others.
func (h *Hub) Broadcast(u types.IoTUpdate) {
	msg, err := types.NewEnvelope(types.EventIoTUpdate, u)
	if err != nil {
		h.logger.Error("build iot-update failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow client", "connection_id", c.id)
			h.dropLocked(c)
		}
	}
	metrics.ReadingsRelayed.Inc()
}

// Clients returns the number of open connections.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close drops every connection and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}

func (h *Hub) addClient(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	metrics.Connections.Inc()
	return true
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	_ = c.conn.Close()
	metrics.Connections.Dec()
}

// enqueue sends msg to one connection if it is still registered.
func (h *Hub) enqueue(c *client, msg []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		h.dropLocked(c)
		return false
	}
}

func (h *Hub) readPump(ctx context.Context, c *client) {
	defer h.removeClient(c)
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", "connection_id", c.id, "error", err)
			}
			return
		}
		h.handleClientMessage(ctx, c, data)
	}
}

func (h *Hub) handleClientMessage(ctx context.Context, c *client, data []byte) {
	var env types.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.logger.Debug("ignoring malformed client frame", "connection_id", c.id, "error", err)
		return
	}

	switch env.Event {
	case types.EventRequestWeather:
		var req struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		if err := json.Unmarshal(env.Data, &req); err != nil || req.Latitude == nil || req.Longitude == nil {
			h.sendError(c, weatherErrorMessage)
			return
		}
		if !c.weatherBusy.CompareAndSwap(false, true) {
			h.sendError(c, weatherBusyMessage)
			return
		}
		go h.answerWeather(ctx, c, *req.Latitude, *req.Longitude)
	default:
		h.logger.Debug("ignoring unknown client event", "connection_id", c.id, "event", env.Event)
	}
}

// answerWeather runs one upstream call for c. Only one runs per connection at
// a time; the slot frees once the upstream call returns.
func (h *Hub) answerWeather(ctx context.Context, c *client, lat, lon float64) {
	raw, err := h.weather.CurrentWeather(ctx,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64),
	)
	c.weatherBusy.Store(false)
	if err != nil {
		h.logger.Warn("request-weather failed", "connection_id", c.id, "error", err)
		h.sendError(c, weatherErrorMessage)
		return
	}

	msg, err := json.Marshal(types.Envelope{Event: types.EventWeatherUpdate, Data: raw})
	if err != nil {
		h.sendError(c, weatherErrorMessage)
		return
	}
	h.enqueue(c, msg)
}

func (h *Hub) sendError(c *client, message string) {
	msg, err := types.NewEnvelope(types.EventError, types.ErrorEvent{Message: message})
	if err != nil {
		return
	}
	h.enqueue(c, msg)
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.conn.Close()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
