package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"punogaria/internal/logger"
	"punogaria/internal/models"
)

const (
	// DefaultTimeout bounds every request to the field hardware.
	DefaultTimeout = 5 * time.Second

	maxSensorBody = 64 << 10
)

// sensorPayload is the microcontroller's JSON body.
type sensorPayload struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

// SensorGateway fetches the current soil temperature and humidity.
type SensorGateway struct {
	client *http.Client
	url    string
	log    *logger.Logger
}

// NewSensorGateway builds a gateway for url. A non-positive timeout falls back
// to DefaultTimeout.
func NewSensorGateway(url string, timeout time.Duration, log *logger.Logger) *SensorGateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SensorGateway{
		client: &http.Client{Timeout: timeout},
		url:    url,
		log:    logger.OrNop(log),
	}
}

// Fetch performs a single GET. Any failure is returned as a *FetchError and
// must be treated as "no reading"; there are no retries.
func (g *SensorGateway) Fetch(ctx context.Context) (models.SensorReading, error) {
	if g.url == "" {
		return models.SensorReading{}, networkErr(g.url, errors.New("sensor url not configured"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return models.SensorReading{}, networkErr(g.url, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warnw("sensor_fetch_failed", "url", g.url, "err", err)
		return models.SensorReading{}, networkErr(g.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.log.Warnw("sensor_bad_status", "url", g.url, "status", resp.StatusCode)
		return models.SensorReading{}, networkErr(g.url, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSensorBody))
	if err != nil {
		return models.SensorReading{}, networkErr(g.url, fmt.Errorf("read body: %w", err))
	}

	var p sensorPayload
	if err := json.Unmarshal(body, &p); err != nil {
		g.log.Warnw("sensor_bad_payload", "url", g.url, "sample", sample(body), "err", err)
		return models.SensorReading{}, decodeErr(g.url, fmt.Errorf("parse JSON: %w", err))
	}
	if p.Temperature == nil || p.Humidity == nil {
		return models.SensorReading{}, decodeErr(g.url, errors.New("payload lacks numeric temperature/humidity"))
	}

	return models.SensorReading{
		TemperatureC: *p.Temperature,
		HumidityPct:  *p.Humidity,
		Source:       models.SourceSensor,
		TakenAt:      time.Now().UTC(),
	}, nil
}

func sample(b []byte) string {
	s := string(b)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
