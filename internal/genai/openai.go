package genai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/geosick/geosick/internal/model"
)

// OpenAIClient implements the Client interface for OpenAI models.
// It supports schema-constrained generation and image generation but
// has no search/maps grounding: grounded orchestrators require the
// Gemini provider.
type OpenAIClient struct {
	client *openai.Client
	config model.GenAIConfig
	log    zerolog.Logger
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(config model.GenAIConfig, log zerolog.Logger) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		log:    log,
	}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured.
func (c *OpenAIClient) IsAvailable(ctx context.Context) bool {
	_, err := c.client.ListModels(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("openai availability check failed")
		return false
	}
	return true
}

// GenerateContent issues one chat completion call.
func (c *OpenAIClient) GenerateContent(ctx context.Context, req ContentRequest) (*ContentResponse, error) {
	if req.Grounding != GroundingNone {
		return nil, ErrGroundingUnsupported
	}

	modelName := req.Model
	if modelName == "" {
		modelName = c.config.Model
	}
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	message := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if req.Attachment != nil {
		dataURL := fmt.Sprintf("data:%s;base64,%s",
			req.Attachment.MIMEType,
			base64.StdEncoding.EncodeToString(req.Attachment.Data))
		message.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
			{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
		}
	} else {
		message.Content = req.Prompt
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       modelName,
		Messages:    []openai.ChatCompletionMessage{message},
		MaxTokens:   req.MaxTokens,
		Temperature: 0.3,
	}
	if req.Schema != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "response",
				Schema: req.Schema,
			},
		}
	}

	timeout := time.Duration(c.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return &ContentResponse{
		Text:       resp.Choices[0].Message.Content,
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// GenerateImage generates a single image.
func (c *OpenAIClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = c.config.ImageModel
	}
	if modelName == "" {
		modelName = openai.CreateImageModelDallE3
	}

	size := openai.CreateImageSize1024x1024
	if req.AspectRatio == "16:9" {
		size = openai.CreateImageSize1792x1024
	}

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          modelName,
		N:              1,
		Size:           size,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image generation returned no images")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}

	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}

	return &ImageResponse{Data: data, MIMEType: mimeType}, nil
}

// classifyOpenAIError maps SDK errors onto the retry taxonomy.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return &RateLimitError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	return fmt.Errorf("OpenAI API error: %w", err)
}
