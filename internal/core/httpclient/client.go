package httpclient

import (
	"context"
	"net/http"
	"time"

	"trip-stitcher/internal/core/logger"

	"go.uber.org/zap"
)

// RayIDHeader carries the request identifier across services.
const RayIDHeader = "X-Ray-ID"

type rayIDKey struct{}

// WithRayID returns a context whose outgoing requests carry id in RayIDHeader.
func WithRayID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, rayIDKey{}, id)
}

// RayID returns the request identifier stored by WithRayID.
func RayID(ctx context.Context) string {
	id, _ := ctx.Value(rayIDKey{}).(string)
	return id
}

// LoggingRoundTripper logs outgoing requests and forwards the ray id.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
	// Service names the remote side in log entries.
	Service string
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	rayID := RayID(req.Context())
	if rayID != "" && req.Header.Get(RayIDHeader) == "" {
		// RoundTrippers must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set(RayIDHeader, rayID)
	}

	log := logger.Named("httpclient").With(
		zap.String("service", lrt.Service),
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.String("ray_id", rayID),
	)
	log.Debug("HTTP Request Started")

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		log.Error("HTTP Request Failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	log.Debug("HTTP Request Completed",
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// NewClient returns an http.Client with logging middleware. service names
// the remote side in log entries.
func NewClient(service string, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: http.DefaultTransport,
			Service: service,
		},
		Timeout: timeout,
	}
}
