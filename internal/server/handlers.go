package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkoopmans/tgtg-bridge/internal/sensor"
)

// refreshTimeout bounds a manually triggered refresh cycle.
const refreshTimeout = time.Minute

// sensorPayload is the JSON projection of one sensor. State is null while
// availability is unknown.
type sensorPayload struct {
	UniqueID   string         `json:"unique_id"`
	Name       string         `json:"name"`
	Icon       string         `json:"icon"`
	Unit       string         `json:"unit_of_measurement"`
	State      *int           `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// updatePayload wraps the sensor states broadcast after each refresh cycle.
type updatePayload struct {
	Cycle       string          `json:"cycle"`
	RefreshedAt time.Time       `json:"refreshed_at"`
	Sensors     []sensorPayload `json:"sensors"`
}

func buildPayload(sn *sensor.Sensor) sensorPayload {
	p := sensorPayload{
		UniqueID:   sn.UniqueID(),
		Name:       sn.Name(),
		Icon:       sn.Icon(),
		Unit:       sn.Unit(),
		Attributes: sn.Attributes(),
	}
	if state, ok := sn.State(); ok {
		p.State = &state
	}
	return p
}

func (s *Server) sensorPayloads() []sensorPayload {
	out := make([]sensorPayload, 0, len(s.sensors))
	for _, sn := range s.sensors {
		out = append(out, buildPayload(sn))
	}
	return out
}

func (s *Server) handleSensors(c echo.Context) error {
	return c.JSON(http.StatusOK, s.sensorPayloads())
}

func (s *Server) handleSensor(c echo.Context) error {
	id := c.Param("id")
	for _, sn := range s.sensors {
		if sn.UniqueID() == id || sn.ItemID() == id {
			return c.JSON(http.StatusOK, buildPayload(sn))
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "unknown sensor "+id)
}

func (s *Server) handleRefresh(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), refreshTimeout)
	defer cancel()

	if err := s.coord.Refresh(ctx); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	st := s.coord.Status()
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "refreshed",
		"listings": st.ListingCount,
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	st := s.coord.Status()

	health := struct {
		Status     string         `json:"status"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Components: make(map[string]any),
	}

	coord := map[string]any{
		"mode":                 st.Mode,
		"cycles":               st.Cycles,
		"listings":             st.ListingCount,
		"sensors":              len(s.sensors),
		"consecutive_failures": st.ConsecutiveFailures,
	}
	if !st.LastRefresh.IsZero() {
		coord["last_refresh"] = st.LastRefresh
	}
	if st.LastError != nil {
		coord["last_error"] = st.LastError.Error()
	}
	health.Components["coordinator"] = coord

	if s.hist != nil {
		stats := s.hist.BufferStats()
		health.Components["history"] = map[string]any{
			"queued":   stats.Count,
			"capacity": stats.Capacity,
		}
	}

	health.Components["websocket"] = map[string]any{
		"clients": s.hub.Count(),
	}

	switch {
	case st.LastRefresh.IsZero():
		health.Status = "unhealthy"
	case st.LastError != nil:
		health.Status = "degraded"
	}

	if health.Status == "unhealthy" {
		return c.JSON(http.StatusServiceUnavailable, health)
	}
	return c.JSON(http.StatusOK, health)
}
