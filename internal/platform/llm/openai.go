package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const answerSystemPrompt = `You are a medical consultation assistant. Answer the
patient's question in plain language. Recommend seeing a doctor for anything
that cannot be assessed remotely.`

const recordSystemPrompt = `You are a clinical documentation service. Given a
patient name, respond with a JSON object of the form
{"patient_name": string, "summary": string, "encounters": [{"diagnosis": string, "date": string, "summary": string}]}
summarizing the patient's consultation history. Respond with JSON only.`

// DefaultTimeout bounds every reasoning service call. The service can take
// seconds to respond; a hung call must not hold a request forever.
const DefaultTimeout = 30 * time.Second

// OpenAIClient implements Client against an OpenAI-compatible API.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIClient constructs a reasoning service client. baseURL may be empty
// for the default endpoint; model falls back to gpt-4o-mini.
func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

func (c *OpenAIClient) Answer(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: answerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", classifyErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformed)
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) GenerateRecord(ctx context.Context, patientName string) (*StructuredRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: recordSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(`{"patient_name": %q}`, patientName)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, classifyErr(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformed)
	}

	return ParseStructuredRecord(resp.Choices[0].Message.Content)
}

// ParseStructuredRecord decodes and validates a structured record payload.
func ParseStructuredRecord(raw string) (*StructuredRecord, error) {
	var record StructuredRecord
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if record.PatientName == "" {
		return nil, fmt.Errorf("%w: missing patient_name", ErrMalformed)
	}
	if record.Summary == "" {
		return nil, fmt.Errorf("%w: missing summary", ErrMalformed)
	}
	return &record, nil
}

// classifyErr maps transport errors into the package's error taxonomy. An
// application-level error payload from the service counts as malformed; a
// failure to reach the service at all counts as unavailable.
func classifyErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
