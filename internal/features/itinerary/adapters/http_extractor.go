package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"trip-stitcher/internal/core/config"
	"trip-stitcher/internal/core/httpclient"
	"trip-stitcher/internal/features/itinerary/domain"
)

// HTTPSegmentExtractor implements ports.SegmentExtractor by calling the
// document extraction service.
type HTTPSegmentExtractor struct {
	// client is the HTTP client used for extraction requests.
	client *http.Client
	// baseURL is the extraction service root, without trailing slash.
	baseURL string
}

// NewHTTPSegmentExtractor creates a new HTTPSegmentExtractor.
func NewHTTPSegmentExtractor(cfg config.ExtractorConfig) *HTTPSegmentExtractor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSegmentExtractor{
		client:  httpclient.NewClient("extractor", timeout),
		baseURL: strings.TrimRight(cfg.URL, "/"),
	}
}

type extractResponse struct {
	Segments []domain.Segment `json:"segments"`
}

// Extract posts the document reference to {baseURL}/extract.
func (e *HTTPSegmentExtractor) Extract(ctx context.Context, doc domain.SourceDocument) ([]domain.Segment, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("extractor returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Segments, nil
}
