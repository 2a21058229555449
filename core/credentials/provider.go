// Package credentials acquires the short-lived tokens the realtime
// transport connects with.
package credentials

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/parley-ai/parley-core/core/transport"
)

// Provider hands out ephemeral connection credentials. Failure is fatal to
// the connect attempt that asked for one.
type Provider interface {
	EphemeralCredential(ctx context.Context) (transport.Credential, error)
}

// HTTPProvider exchanges a long-lived API key for an ephemeral token at a
// token endpoint.
type HTTPProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

type HTTPProviderOption func(*HTTPProvider)

// WithHTTPClient overrides the HTTP client, mostly for tests.
func WithHTTPClient(client *http.Client) HTTPProviderOption {
	return func(p *HTTPProvider) { p.client = client }
}

func NewHTTPProvider(endpoint, apiKey string, opts ...HTTPProviderOption) *HTTPProvider {
	p := &HTTPProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *HTTPProvider) EphemeralCredential(ctx context.Context) (transport.Credential, error) {
	ctx, span := tracer.Start(ctx, "fetch ephemeral credential")
	defer span.End()

	requestBody, err := json.Marshal(struct {
		GrantType string `json:"grant_type"`
	}{GrantType: "ephemeral"})
	if err != nil {
		return transport.Credential{}, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return transport.Credential{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return transport.Credential{}, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, readErr := io.ReadAll(resp.Body); readErr == nil {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return transport.Credential{}, err
	}

	var parsed struct {
		Token     string `json:"token"`
		ExpiresAt int64  `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		err = fmt.Errorf("error decoding token response: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return transport.Credential{}, err
	}
	if parsed.Token == "" {
		err := fmt.Errorf("token endpoint returned an empty token")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return transport.Credential{}, err
	}

	credential := transport.Credential{Token: parsed.Token}
	if parsed.ExpiresAt > 0 {
		credential.ExpiresAt = time.Unix(parsed.ExpiresAt, 0)
	}
	return credential, nil
}

// StaticProvider returns the same credential every time, for tests and
// local development.
type StaticProvider struct {
	Credential transport.Credential
}

func (p StaticProvider) EphemeralCredential(context.Context) (transport.Credential, error) {
	return p.Credential, nil
}
