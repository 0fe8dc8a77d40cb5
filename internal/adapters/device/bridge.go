// Package device implements services.CaptureDevice.
package device

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bioponto/internal/core/domain"
	"bioponto/internal/pkg/httpx"
)

// Bridge drives the vendor reader through the agent running on the kiosk.
// The agent exposes the SDK calls as JSON endpoints:
//
//	POST /device/open
//	POST /device/capture  {"purpose":"VERIFY"}  -> {"template":"<base64>"}
//	POST /device/compare  {"a":"<base64>","b":"<base64>"} -> {"match":true}
//	POST /device/close
//
// The agent answers 422 when no usable finger was read.
type Bridge struct {
	client  *http.Client
	baseURL string
	once    httpx.RetryConfig
}

// NewBridge creates a bridge to the agent at baseURL
func NewBridge(baseURL string) *Bridge {
	return &Bridge{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		once:    httpx.RetryConfig{MaxAttempts: 1},
	}
}

type captureRequest struct {
	Purpose domain.CapturePurpose `json:"purpose"`
}

type captureResponse struct {
	Template string `json:"template"`
}

type compareRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

type compareResponse struct {
	Match bool `json:"match"`
}

// Open claims the reader through the agent
func (b *Bridge) Open(ctx context.Context) error {
	if _, err := httpx.PostJSON(ctx, b.client, b.baseURL+"/device/open", struct{}{}, b.once); err != nil {
		return fmt.Errorf("%w: open: %w", domain.ErrDeviceUnavailable, err)
	}
	return nil
}

// Capture asks the agent for one finger read. A 422 from the agent means
// the finger was unreadable and maps to domain.ErrCaptureFailed.
func (b *Bridge) Capture(ctx context.Context, purpose domain.CapturePurpose) (domain.Template, error) {
	body, err := httpx.PostJSON(ctx, b.client, b.baseURL+"/device/capture", captureRequest{Purpose: purpose}, b.once)
	if err != nil {
		if httpx.StatusCode(err) == http.StatusUnprocessableEntity {
			return nil, fmt.Errorf("%w: no usable finger", domain.ErrCaptureFailed)
		}
		return nil, fmt.Errorf("%w: capture: %w", domain.ErrCaptureFailed, err)
	}

	var resp captureResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode capture: %w", domain.ErrCaptureFailed, err)
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Template)
	if err != nil {
		return nil, fmt.Errorf("%w: template is not base64: %w", domain.ErrCaptureFailed, err)
	}
	return raw, nil
}

// CompareOneToOne lets the vendor matcher behind the agent decide whether two
// templates belong to the same finger.
func (b *Bridge) CompareOneToOne(ctx context.Context, x, y domain.Template) (bool, error) {
	req := compareRequest{A: domain.EncodeTemplate(x), B: domain.EncodeTemplate(y)}
	body, err := httpx.PostJSON(ctx, b.client, b.baseURL+"/device/compare", req, b.once)
	if err != nil {
		return false, err
	}

	var resp compareResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, err
	}
	return resp.Match, nil
}

// Close releases the reader. It runs after the request context may be gone,
// so it uses its own short deadline.
func (b *Bridge) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := httpx.PostJSON(ctx, b.client, b.baseURL+"/device/close", struct{}{}, b.once)
	return err
}
