package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"weatherdash/internal/config"
	"weatherdash/internal/httpapi"
	weather "weatherdash/internal/modules/weather"
	weatherviews "weatherdash/internal/modules/weather/views"
	"weatherdash/internal/mqtt"
	"weatherdash/internal/openmeteo"
	"weatherdash/internal/realtime"
	"weatherdash/internal/telemetry"
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"allowedOrigins", cfg.AllowedOrigins,
		"weatherAPIURL", cfg.WeatherAPIURL,
		"weatherAPITimeout", cfg.WeatherAPITimeout,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
		"mqttClientID", cfg.MQTTClientID,
		"publishInterval", cfg.PublishInterval,
	)

	if err := weatherviews.LoadTemplates(); err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	provider := openmeteo.New(cfg.WeatherAPIURL, cfg.WeatherAPITimeout, logger)
	hub := realtime.NewHub(cfg.AllowedOrigins, provider, logger)

	// The relay handler and the generator hooks go in before Connect so the
	// first CONNACK already subscribes and starts publishing.
	broker := mqtt.NewClient(cfg, logger)
	broker.SetMessageHandler(hub.HandleBrokerMessage)

	generator := telemetry.NewGenerator(broker, telemetry.Options{
		DeviceID: cfg.DeviceID,
		Interval: cfg.PublishInterval,
		Logger:   logger,
	})
	broker.OnStateChange(generator.Start, generator.Stop)

	mux := httpapi.NewMux(hub)
	weather.RegisterFeature(mux, provider, logger)

	// Short initial connect so a missing broker doesn't hold up the HTTP
	// side; paho keeps retrying on its own.
	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	err := broker.Connect(connectCtx)
	connectCancel()
	if err != nil {
		logger.Warn("mqtt connection failed (continuing, will retry)", "error", err)
	}

	srv := httpapi.NewServer(cfg, mux, logger)

	errCh := make(chan error, 1)
	go func() {
		base := baseURL(cfg.HTTPAddr)
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		logger.Info("endpoints",
			"health", base+"/api/health",
			"weather", base+"/api/weather",
			"websocket", strings.Replace(base, "http://", "ws://", 1)+"/ws",
			"dashboard", base+"/",
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		generator.Stop()
		broker.Disconnect()
		hub.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("telemetry generator stopping")
	generator.Stop()

	logger.Info("mqtt disconnecting")
	broker.Disconnect()

	logger.Info("closing live connections", "clients", hub.Clients())
	hub.Close()

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// baseURL turns a listen address into a URL for the startup log.
func baseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
