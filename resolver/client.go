package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"museum-backend/models"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// absoluteURL resolves a bare path against the base URL and leaves full
// URLs untouched.
func (r *Resolver) absoluteURL(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}
	if !strings.HasPrefix(pathOrURL, "/") {
		pathOrURL = "/" + pathOrURL
	}
	return r.baseURL + pathOrURL
}

func (r *Resolver) get(ctx context.Context, url string) (*models.CheckinResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return r.do(req)
}

func (r *Resolver) post(ctx context.Context, path string, body any) (*models.CheckinResponse, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.absoluteURL(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return r.do(req)
}

// do sends the request and decodes the shared envelope. Error statuses are
// not failures by themselves: the API explains rejections in the body.
func (r *Resolver) do(req *http.Request) (*models.CheckinResponse, error) {
	req.Header.Set("Accept", "application/json")

	r.logger.Debug("check-in request", zap.String("method", req.Method), zap.String("url", req.URL.String()))

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var envelope models.CheckinResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	r.logger.Debug("check-in response",
		zap.Int("status_code", resp.StatusCode),
		zap.Bool("success", envelope.Success),
		zap.String("status", envelope.Status))

	return &envelope, nil
}

// lookup fetches visitor details for an already-checked-in response that
// did not include them. Any failure yields nil.
func (r *Resolver) lookup(ctx context.Context, path string) *models.Visitor {
	if path == "" {
		return nil
	}
	resp, err := r.get(ctx, r.absoluteURL(path))
	if err != nil {
		r.logger.Warn("visitor lookup failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	if !resp.Success {
		return nil
	}
	return resp.Person()
}
