package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"weatherdash/internal/config"
	"weatherdash/internal/metrics"
	"weatherdash/shared/types"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const qos = byte(1) // at least once

// MessageHandler receives every message on the subscribed topic.
type MessageHandler func(topic string, payload []byte)

// Client owns the single broker session of the gateway: it subscribes to the
// telemetry topic on every (re)connect and publishes generated readings to it.
type Client struct {
	client    mqtt.Client
	cfg       config.Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once

	hooksMu     sync.RWMutex
	onMessage   MessageHandler
	onConnected []func()
	onLost      []func()
}

func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	c := &Client{
		cfg:    cfg,
		logger: logger.With("component", "mqtt"),
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)

	// Session settings
	opts.SetCleanSession(true)

	// Fixed reconnect period: min == max, so paho never escalates the delay.
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(cfg.MQTTReconnectPeriod)
	opts.SetMaxReconnectInterval(cfg.MQTTReconnectPeriod)
	opts.SetConnectTimeout(cfg.MQTTConnectTimeout)

	// Keepalive / timeouts
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// paho runs OnConnect on its own goroutine, so blocking on the
	// subscribe token here is fine.
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		c.setConnected(true)
		c.logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
		if err := c.subscribe(); err != nil {
			c.logger.Error("mqtt subscribe failed", "topic", cfg.MQTTTopic, "error", err)
		}
		c.fire(c.connectedHooks())
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.setConnected(false)
		c.logger.Warn("mqtt connection lost", "error", err)
		c.fire(c.lostHooks())
	})

	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		c.logger.Debug("mqtt reconnecting", "period", cfg.MQTTReconnectPeriod)
	})

	c.client = mqtt.NewClient(opts)
	return c
}

// SetMessageHandler installs the handler for inbound messages. There is one
// handler per client; fan-out to consumers happens behind it.
func (c *Client) SetMessageHandler(h MessageHandler) {
	c.hooksMu.Lock()
	c.onMessage = h
	c.hooksMu.Unlock()
}

// OnStateChange registers callbacks for entering and leaving the connected
// state. connected runs after the topic subscription is in place; lost runs on
// connection loss and on Disconnect.
func (c *Client) OnStateChange(connected, lost func()) {
	c.hooksMu.Lock()
	if connected != nil {
		c.onConnected = append(c.onConnected, connected)
	}
	if lost != nil {
		c.onLost = append(c.onLost, lost)
	}
	c.hooksMu.Unlock()
}

// Connect starts the broker session and waits for the first CONNACK. When ctx
// expires first the client keeps retrying in the background on its fixed
// period and ctx.Err() is returned.
func (c *Client) Connect(ctx context.Context) error {
	// Fail fast if already stopped.
	select {
	case <-c.stopCh:
		return fmt.Errorf("client stopped")
	default:
	}

	// Fast path.
	if c.IsConnected() {
		return nil
	}

	token := c.client.Connect()

	// Wait in a ctx/stop-aware loop.
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			return fmt.Errorf("client stopped")
		default:
		}
	}
}

func (c *Client) subscribe() error {
	topic := c.cfg.MQTTTopic

	token := c.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		c.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, token.Error())
	}

	c.logger.Info("subscribed to mqtt topic", "topic", topic, "qos", qos)
	return nil
}

func (c *Client) handleMessage(topic string, payload []byte) {
	c.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	c.hooksMu.RLock()
	h := c.onMessage
	c.hooksMu.RUnlock()
	if h != nil {
		h(topic, payload)
	}
}

// PublishReading publishes r to the telemetry topic.
func (c *Client) PublishReading(r types.Reading) (err error) {
	defer func() {
		metrics.ReadingsPublished.WithLabelValues(metrics.Outcome(err)).Inc()
	}()

	if !c.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	topic := c.cfg.MQTTTopic
	token := c.client.Publish(topic, qos, false, data)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("publish reading: %w", token.Error())
	}

	c.logger.Debug("published reading", "topic", topic, "device_id", r.DeviceID)
	return nil
}

// IsConnected returns whether the client is connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.client.IsConnected()
}

// Disconnect stops the client and closes the broker session. Idempotent.
func (c *Client) Disconnect() {
	// Signal shutdown once (unblocks any Connect loops).
	c.stopOnce.Do(func() { close(c.stopCh) })

	wasConnected := c.IsConnected()
	if wasConnected {
		token := c.client.Unsubscribe(c.cfg.MQTTTopic)
		token.WaitTimeout(2 * time.Second)
	}

	// Disconnect without holding c.mu to avoid lock contention/deadlocks.
	c.client.Disconnect(250)

	c.setConnected(false)
	if wasConnected {
		c.fire(c.lostHooks())
	}
	c.logger.Info("mqtt disconnected")
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()

	if v {
		metrics.BrokerConnected.Set(1)
	} else {
		metrics.BrokerConnected.Set(0)
	}
}

func (c *Client) connectedHooks() []func() {
	c.hooksMu.RLock()
	defer c.hooksMu.RUnlock()
	return append([]func(){}, c.onConnected...)
}

func (c *Client) lostHooks() []func() {
	c.hooksMu.RLock()
	defer c.hooksMu.RUnlock()
	return append([]func(){}, c.onLost...)
}

func (c *Client) fire(hooks []func()) {
	for _, h := range hooks {
		h()
	}
}
