// Package genai abstracts the generative-model providers. A Client
// turns a prompt plus an output schema into text expected to parse as
// that schema, optionally grounded by the provider's search or maps
// capability, and can generate illustrative images.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geosick/geosick/internal/model"
	"github.com/geosick/geosick/internal/schema"
)

// Grounding selects a provider-side retrieval capability for a call.
type Grounding int

const (
	// GroundingNone requests plain schema-constrained generation.
	GroundingNone Grounding = iota
	// GroundingSearch grounds the response in web search results and
	// attaches citation metadata.
	GroundingSearch
	// GroundingMaps grounds the response in maps data, biased toward
	// the request's focus coordinate.
	GroundingMaps
)

// Attachment is a binary input accompanying a prompt, e.g. a photo of
// an area or a prescription.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// ContentRequest is one generation call.
type ContentRequest struct {
	// Model overrides the client's configured model when non-empty.
	Model string

	Prompt     string
	Attachment *Attachment

	// Schema constrains the response shape. Must be nil when a
	// grounding mode is set: grounded calls return prose that a second
	// structuring call reformats. Clients reject the combination.
	Schema *schema.Schema

	Grounding Grounding

	// Focus biases maps grounding toward a coordinate.
	Focus *model.Coordinate

	MaxTokens int
}

// ContentResponse is the provider's reply.
type ContentResponse struct {
	// Text is the raw response body: schema-conformant JSON for
	// constrained calls, prose for grounded calls.
	Text string

	// Citations carries the grounding sources, empty for ungrounded
	// calls. Passed through verbatim, never synthesized.
	Citations []model.Citation

	Model      string
	TokensUsed int
}

// ImageRequest asks for a single generated image.
type ImageRequest struct {
	Model       string
	Prompt      string
	AspectRatio string
	MIMEType    string
}

// ImageResponse carries zero or one generated image.
type ImageResponse struct {
	Data     []byte
	MIMEType string
}

// Client is a generative-model provider.
type Client interface {
	// Name returns the provider name.
	Name() string

	// GenerateContent issues one generation call.
	GenerateContent(ctx context.Context, req ContentRequest) (*ContentResponse, error)

	// GenerateImage generates a single image. Providers without an
	// image model return an error; callers treat image generation as
	// optional enrichment.
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)

	// IsAvailable checks if the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// ErrGroundingUnsupported is returned by providers that have no
// search/maps grounding capability.
var ErrGroundingUnsupported = errors.New("provider does not support grounded generation")

// RateLimitError marks an upstream rate-limit or resource-exhaustion
// failure. Only these are worth retrying; everything else propagates
// immediately.
type RateLimitError struct {
	StatusCode int
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (%d): %s", e.StatusCode, e.Message)
}

// IsRateLimit classifies an error as retriable. Typed classification
// first; the string check is a fallback for errors wrapped by SDKs
// that only surface message text.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
