package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/mkoopmans/tgtg-bridge/internal/coordinator"
	"github.com/mkoopmans/tgtg-bridge/internal/history"
	"github.com/mkoopmans/tgtg-bridge/internal/sensor"
)

// RefreshCoordinator is the subset of the coordinator the server reads
// status from and triggers refreshes on.
type RefreshCoordinator interface {
	Status() coordinator.Status
	Refresh(ctx context.Context) error
}

// HistorySink reports queue stats for the optional history writer.
type HistorySink interface {
	BufferStats() history.BufferStats
}

// Config holds the HTTP/WebSocket server settings.
type Config struct {
	Host         string
	Port         int
	WSSendBuffer int
}

// Server exposes sensor states over REST and pushes refresh updates to
// WebSocket clients.
type Server struct {
	cfg     Config
	coord   RefreshCoordinator
	sensors []*sensor.Sensor
	hist    HistorySink
	hub     *Hub
	echo    *echo.Echo
	logger  *slog.Logger
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// New creates the server. hist may be nil when the history sink is disabled.
func New(cfg Config, coord RefreshCoordinator, sensors []*sensor.Sensor, hist HistorySink, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WSSendBuffer <= 0 {
		cfg.WSSendBuffer = 16
	}

	s := &Server{
		cfg:     cfg,
		coord:   coord,
		sensors: sensors,
		hist:    hist,
		hub:     NewHub(logger),
		logger:  logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/health", s.handleHealth)
	e.GET("/api/sensors", s.handleSensors)
	e.GET("/api/sensors/:id", s.handleSensor)
	e.POST("/api/refresh", s.handleRefresh)
	e.GET("/ws", s.handleWS)
	s.echo = e

	return s
}

// Start begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", "err", err)
		}
	}()

	s.logger.Info("server started", "addr", addr, "sensors", len(s.sensors))
	return nil
}

// Stop shuts the listener down and drops all WebSocket clients.
func (s *Server) Stop(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.hub.closeAll()
	s.logger.Info("server stopped")
	return err
}

// Broadcast pushes the post-refresh sensor states to all connected clients.
func (s *Server) Broadcast(update coordinator.Update) {
	if s.hub.Count() == 0 {
		return
	}

	data, err := json.Marshal(updatePayload{
		Cycle:       update.Cycle.String(),
		RefreshedAt: update.At,
		Sensors:     s.sensorPayloads(),
	})
	if err != nil {
		s.logger.Error("broadcast marshal failed", "cycle", update.Cycle, "err", err)
		return
	}

	s.hub.Broadcast(data)
}

func (s *Server) handleWS(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := newClient(s.hub, conn, s.cfg.WSSendBuffer)
	s.hub.register(client)
	go client.writePump()
	go client.readPump()
	return nil
}
