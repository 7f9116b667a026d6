package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/geosick/geosick/internal/model"
	"github.com/geosick/geosick/internal/schema"
)

// GeminiClient implements the Client interface against the Gemini
// REST API. It is the only provider with search/maps grounding.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	config     model.GenAIConfig
	log        zerolog.Logger
}

// Gemini API structures

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	Tools            []geminiTool      `json:"tools,omitempty"`
	ToolConfig       *geminiToolConfig `json:"toolConfig,omitempty"`
	GenerationConfig *geminiGenConfig  `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
	GoogleMaps   *struct{} `json:"googleMaps,omitempty"`
}

type geminiToolConfig struct {
	RetrievalConfig *geminiRetrievalConfig `json:"retrievalConfig,omitempty"`
}

type geminiRetrievalConfig struct {
	LatLng *geminiLatLng `json:"latLng,omitempty"`
}

type geminiLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type geminiGenConfig struct {
	ResponseMIMEType string      `json:"responseMimeType,omitempty"`
	ResponseSchema   interface{} `json:"responseSchema,omitempty"`
	MaxOutputTokens  int         `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

type geminiPredictRequest struct {
	Instances  []geminiPredictInstance `json:"instances"`
	Parameters geminiPredictParameters `json:"parameters"`
}

type geminiPredictInstance struct {
	Prompt string `json:"prompt"`
}

type geminiPredictParameters struct {
	SampleCount    int    `json:"sampleCount"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
	OutputMIMEType string `json:"outputMimeType,omitempty"`
}

type geminiPredictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MIMEType           string `json:"mimeType"`
	} `json:"predictions"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(config model.GenAIConfig, log zerolog.Logger) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	return &GeminiClient{
		apiKey:  config.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
		config:  config,
		log:     log,
	}, nil
}

// Name returns the provider name.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// IsAvailable checks if the provider is configured and reachable.
func (c *GeminiClient) IsAvailable(ctx context.Context) bool {
	_, err := c.GenerateContent(ctx, ContentRequest{Prompt: "ping", MaxTokens: 10})
	if err != nil {
		c.log.Debug().Err(err).Msg("gemini availability check failed")
		return false
	}
	return true
}

// GenerateContent issues one generateContent call.
func (c *GeminiClient) GenerateContent(ctx context.Context, req ContentRequest) (*ContentResponse, error) {
	if req.Schema != nil && req.Grounding != GroundingNone {
		// The API rejects responseSchema alongside retrieval tools;
		// grounded calls return prose for a separate structuring call.
		return nil, fmt.Errorf("schema constraint cannot be combined with grounding")
	}

	modelName := req.Model
	if modelName == "" {
		modelName = c.config.Model
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	parts := []geminiPart{}
	if req.Attachment != nil {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MIMEType: req.Attachment.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(req.Attachment.Data),
			},
		})
	}
	parts = append(parts, geminiPart{Text: req.Prompt})

	body := geminiRequest{
		Contents: []geminiContent{{Parts: parts}},
	}

	switch req.Grounding {
	case GroundingSearch:
		body.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	case GroundingMaps:
		body.Tools = []geminiTool{{GoogleMaps: &struct{}{}}}
		if req.Focus != nil {
			body.ToolConfig = &geminiToolConfig{
				RetrievalConfig: &geminiRetrievalConfig{
					LatLng: &geminiLatLng{Latitude: req.Focus.Lat, Longitude: req.Focus.Lng},
				},
			}
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.config.MaxTokens
	}
	if req.Schema != nil || maxTokens > 0 {
		body.GenerationConfig = &geminiGenConfig{MaxOutputTokens: maxTokens}
		if req.Schema != nil {
			body.GenerationConfig.ResponseMIMEType = "application/json"
			body.GenerationConfig.ResponseSchema = schemaToGemini(req.Schema)
		}
	}

	var resp geminiResponse
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, modelName)
	if err := c.post(ctx, url, body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no candidates in Gemini response")
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}

	var citations []model.Citation
	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Web.URI == "" || chunk.Web.Title == "" {
				continue
			}
			citations = append(citations, model.Citation{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}

	respModel := resp.ModelVersion
	if respModel == "" {
		respModel = modelName
	}

	return &ContentResponse{
		Text:       strings.TrimSpace(text.String()),
		Citations:  citations,
		Model:      respModel,
		TokensUsed: resp.UsageMetadata.TotalTokenCount,
	}, nil
}

// GenerateImage generates a single image through the predict endpoint.
func (c *GeminiClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = c.config.ImageModel
	}
	if modelName == "" {
		return nil, fmt.Errorf("no image model configured")
	}

	body := geminiPredictRequest{
		Instances: []geminiPredictInstance{{Prompt: req.Prompt}},
		Parameters: geminiPredictParameters{
			SampleCount:    1,
			AspectRatio:    req.AspectRatio,
			OutputMIMEType: req.MIMEType,
		},
	}

	var resp geminiPredictResponse
	url := fmt.Sprintf("%s/v1beta/models/%s:predict", c.baseURL, modelName)
	if err := c.post(ctx, url, body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Predictions) == 0 {
		return nil, fmt.Errorf("image generation returned no images")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}

	mimeType := resp.Predictions[0].MIMEType
	if mimeType == "" {
		mimeType = req.MIMEType
	}

	return &ImageResponse{Data: data, MIMEType: mimeType}, nil
}

func (c *GeminiClient) post(ctx context.Context, url string, body interface{}, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	c.log.Debug().Str("url", url).Msg("gemini request")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("Gemini API request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr geminiError
		message := strings.TrimSpace(string(respBody))
		status := ""
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
			status = apiErr.Error.Status
		}
		if httpResp.StatusCode == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED" {
			return &RateLimitError{StatusCode: httpResp.StatusCode, Message: message}
		}
		return fmt.Errorf("Gemini API error (%d): %s", httpResp.StatusCode, message)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// schemaToGemini renders a schema descriptor in the uppercase-typed
// OpenAPI dialect the Gemini API expects.
func schemaToGemini(s *schema.Schema) map[string]interface{} {
	m := map[string]interface{}{"type": strings.ToUpper(string(s.Kind))}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		m["enum"] = s.Enum
	}
	if s.Items != nil {
		m["items"] = schemaToGemini(s.Items)
	}
	if len(s.Properties) > 0 {
		props := make(map[string]interface{}, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = schemaToGemini(prop)
		}
		m["properties"] = props
	}
	if len(s.Required) > 0 {
		m["required"] = s.Required
	}
	return m
}
