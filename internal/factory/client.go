// Package factory talks to the external pizza factory that fulfills orders.
package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hongminglow/pizza-be/internal/models"
)

// Diner identifies who placed the order.
type Diner struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Request is the fulfillment payload sent to the factory.
type Request struct {
	Diner Diner        `json:"diner"`
	Order models.Order `json:"order"`
}

// Fulfillment is the factory's acceptance: a signed confirmation and a report link.
type Fulfillment struct {
	JWT       string `json:"jwt"`
	ReportURL string `json:"reportUrl"`
}

// Client fulfills orders. Handlers depend on this interface so tests can
// substitute a stub.
type Client interface {
	Fulfill(ctx context.Context, req Request) (Fulfillment, error)
}

// RejectedError is returned when the factory answers but refuses the order.
type RejectedError struct {
	StatusCode int
	Message    string
	ReportURL  string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("factory rejected order (status %d): %s", e.StatusCode, e.Message)
}

// ReportURL extracts the factory report link from err, if it carries one.
func ReportURL(err error) string {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.ReportURL
	}
	return ""
}

// HTTPClient is the production Client.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewHTTPClient builds a client for the factory at baseURL. timeout bounds each
// fulfillment call end to end.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tracer: otel.Tracer("github.com/hongminglow/pizza-be/internal/factory"),
	}
}

// BaseURL reports the configured factory endpoint.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

type factoryResponse struct {
	JWT       string `json:"jwt"`
	ReportURL string `json:"reportUrl"`
	Message   string `json:"message"`
}

// Fulfill makes a single attempt to hand the order to the factory.
func (c *HTTPClient) Fulfill(ctx context.Context, req Request) (Fulfillment, error) {
	ctx, span := c.tracer.Start(ctx, "factory.Fulfill", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.id", req.Order.ID),
		attribute.Int64("diner.id", req.Diner.ID),
		attribute.Int("order.items", len(req.Order.Items)),
	)

	out, err := c.fulfill(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

func (c *HTTPClient) fulfill(ctx context.Context, req Request) (Fulfillment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Fulfillment{}, fmt.Errorf("marshal factory request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/order", bytes.NewReader(body))
	if err != nil {
		return Fulfillment{}, fmt.Errorf("build factory request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Fulfillment{}, fmt.Errorf("call factory: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Fulfillment{}, fmt.Errorf("read factory response: %w", err)
	}
	var decoded factoryResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	if !ok || decoded.JWT == "" {
		msg := decoded.Message
		switch {
		case decodeErr != nil:
			msg = fmt.Sprintf("decode response: %v", decodeErr)
		case msg == "" && ok:
			msg = "response carried no jwt"
		case msg == "":
			msg = http.StatusText(resp.StatusCode)
		}
		return Fulfillment{}, &RejectedError{StatusCode: resp.StatusCode, Message: msg, ReportURL: decoded.ReportURL}
	}
	return Fulfillment{JWT: decoded.JWT, ReportURL: decoded.ReportURL}, nil
}
