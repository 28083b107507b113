package provider

import "context"

// ImagePayload is one image attached to a chat request, as a data URI.
type ImagePayload struct {
	DataURI     string
	Description string
}

// ChatPayload is a single reasoning-service request: a system instruction
// plus ordered user content parts (text first, then images).
type ChatPayload struct {
	System     string
	User       []string
	Images     []ImagePayload
	ExpectJSON bool
	MaxTokens  int
}

// ModelProvider abstracts the external reasoning service. Call returns the
// raw reply text; parsing it is the caller's concern.
type ModelProvider interface {
	ID() string
	SupportsVision() bool
	Call(ctx context.Context, payload ChatPayload) (string, error)
}
