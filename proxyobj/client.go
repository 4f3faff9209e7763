package proxyobj

import "github.com/google/uuid"

// SecurityContext carries the per-client policy a wp_security_context_v1
// attachment (or an operator's static config) assigns to a downstream
// client. It is deliberately minimal: this proxy does not implement
// sandboxing decisions itself, only exposes the hook a consumer's
// global mapper can read.
type SecurityContext struct {
	Sandboxed bool
	AppID     string
}

// Client is one downstream peer: its Endpoint plus the policy that
// travels with it. Objects destroyed on one side linger until the
// other side confirms (see ObjectCore's two-sided destruction state in
// core.go).
type Client struct {
	// TraceID disambiguates this client's log lines from any other
	// concurrently connected client, independent of its small reused
	// Endpoint.ID (a uuid avoids any confusion if ids are ever reused
	// across a reconnect within the same trace window).
	TraceID uuid.UUID

	Endpoint *Endpoint
	Security *SecurityContext
}

// NewClient wraps endpoint as a downstream client peer.
func NewClient(endpoint *Endpoint) *Client {
	return &Client{
		TraceID:  uuid.New(),
		Endpoint: endpoint,
	}
}
