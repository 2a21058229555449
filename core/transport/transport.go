// Package transport defines the contract between the session orchestrator
// and the bidirectional realtime link it runs over.
//
// Events are decoded into one Go struct per wire event type at the transport
// boundary, so everything downstream works with typed payloads instead of
// raw maps.
package transport

import (
	"context"
	"time"
)

// Credential is a short-lived token used to open a connection.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the credential is past its expiry. Credentials
// without an expiry never expire.
func (c Credential) Expired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// Transport is a bidirectional realtime link to the conversation peer.
//
// Connect must be called before any send. Events returns the stream of
// decoded peer events; the channel is closed when the link goes away.
// Approve and Reject consume the opaque approval handle delivered with an
// ApprovalRequested event.
type Transport interface {
	Connect(ctx context.Context, credential Credential) error
	Events() <-chan Event
	SendMessage(text string) error
	SendSilentContext(text string) error
	Interrupt() error
	Approve(item any) error
	Reject(item any) error
	Close() error
}
