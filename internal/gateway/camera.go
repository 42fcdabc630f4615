package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"punogaria/internal/irrigation"
	"punogaria/internal/logger"
	"punogaria/internal/models"
)

const maxImageBytes = 8 << 20

// SkyClassifier captures a still from the camera and classifies the sky.
type SkyClassifier struct {
	client *http.Client
	url    string
	log    *logger.Logger
}

// NewSkyClassifier builds a classifier for the camera capture url.
func NewSkyClassifier(url string, timeout time.Duration, log *logger.Logger) *SkyClassifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SkyClassifier{
		client: &http.Client{Timeout: timeout},
		url:    url,
		log:    logger.OrNop(log),
	}
}

// Capture downloads one image. The payload is not validated here.
func (c *SkyClassifier) Capture(ctx context.Context) ([]byte, string, error) {
	if c.url == "" {
		return nil, "", networkErr(c.url, errors.New("camera url not configured"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, "", networkErr(c.url, fmt.Errorf("create request: %w", err))
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", networkErr(c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", networkErr(c.url, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", networkErr(c.url, fmt.Errorf("read body: %w", err))
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// Classify never fails: fetch or decode problems yield SkyUnknown with the
// error text, which the policy treats as bad weather.
func (c *SkyClassifier) Classify(ctx context.Context) models.SkyResult {
	payload, contentType, err := c.Capture(ctx)
	if err != nil {
		c.log.Warnw("camera_fetch_failed", "url", c.url, "err", err)
		return models.SkyResult{Condition: models.SkyUnknown, Error: err.Error()}
	}

	cond, st, err := irrigation.ClassifyImage(payload)
	if err != nil {
		ferr := decodeErr(c.url, err)
		c.log.Warnw("camera_decode_failed", "url", c.url, "bytes", len(payload), "err", err)
		return models.SkyResult{Condition: models.SkyUnknown, Error: ferr.Error()}
	}

	if contentType == "" {
		contentType = http.DetectContentType(payload)
	}
	c.log.Debugw("sky_classified", "condition", cond, "brightness", st.Brightness, "saturation", st.Saturation)
	return models.SkyResult{
		Condition:   cond,
		Stats:       &st,
		Image:       payload,
		ContentType: contentType,
	}
}
