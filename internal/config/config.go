package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// AllowedOrigins is the browser origin allow-list for both CORS and the
	// WebSocket handshake.
	AllowedOrigins []string

	WeatherAPIURL string
	// WeatherAPITimeout bounds one upstream call; zero means no timeout.
	WeatherAPITimeout time.Duration

	MQTTBroker          string
	MQTTPort            int
	MQTTClientID        string
	MQTTTopic           string
	MQTTConnectTimeout  time.Duration
	MQTTReconnectPeriod time.Duration

	PublishInterval time.Duration
	DeviceID        string
}

// LoadFromEnv reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables win.
func LoadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5001"
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q", port)
	}
	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":" + port
	}

	allowedOrigins := splitList(os.Getenv("ALLOWED_ORIGINS"))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	}

	weatherAPIURL := strings.TrimSpace(os.Getenv("WEATHER_API_URL"))
	if weatherAPIURL == "" {
		weatherAPIURL = "https://api.open-meteo.com/v1/forecast"
	}
	weatherAPITimeout, err := durationFromEnv("WEATHER_API_TIMEOUT", "0s", true)
	if err != nil {
		return Config{}, err
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	if mqttBroker == "" {
		mqttBroker = "test.mosquitto.org"
	}

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}
	if mqttPort <= 0 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: out of range", mqttPortStr)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID, err = randomClientID()
		if err != nil {
			return Config{}, err
		}
	}

	mqttTopic := strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if mqttTopic == "" {
		mqttTopic = "weather/simulation"
	}

	mqttConnectTimeout, err := durationFromEnv("MQTT_CONNECT_TIMEOUT", "4s", false)
	if err != nil {
		return Config{}, err
	}
	mqttReconnectPeriod, err := durationFromEnv("MQTT_RECONNECT_PERIOD", "1s", false)
	if err != nil {
		return Config{}, err
	}
	publishInterval, err := durationFromEnv("PUBLISH_INTERVAL", "3s", false)
	if err != nil {
		return Config{}, err
	}

	deviceID := strings.TrimSpace(os.Getenv("DEVICE_ID"))
	if deviceID == "" {
		deviceID = "iot-weather-001"
	}

	return Config{
		AppEnv:              appEnv,
		LogLevel:            level,
		HTTPAddr:            httpAddr,
		AllowedOrigins:      allowedOrigins,
		WeatherAPIURL:       weatherAPIURL,
		WeatherAPITimeout:   weatherAPITimeout,
		MQTTBroker:          mqttBroker,
		MQTTPort:            mqttPort,
		MQTTClientID:        mqttClientID,
		MQTTTopic:           mqttTopic,
		MQTTConnectTimeout:  mqttConnectTimeout,
		MQTTReconnectPeriod: mqttReconnectPeriod,
		PublishInterval:     publishInterval,
		DeviceID:            deviceID,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

// durationFromEnv parses key as a time.Duration. Zero is accepted only when
// allowZero is set; negative values are always rejected.
func durationFromEnv(key, def string, allowZero bool) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func randomClientID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate mqtt client id: %w", err)
	}
	return "weather-dashboard-" + hex.EncodeToString(b), nil
}
