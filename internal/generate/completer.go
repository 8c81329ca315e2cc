package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NYCU-SDC/formbricks-challenge/internal"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"google.golang.org/genai"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
	ProviderFaker  = "faker"

	systemPrompt = "You are a data generation assistant. Always return valid JSON only, no markdown formatting, no explanations."
	temperature  = 0.8
)

var defaultModels = map[string]string{
	ProviderOpenAI: "gpt-4o-mini",
	ProviderOllama: "llama2",
	ProviderGemini: "gemini-1.5-flash",
	ProviderFaker:  "gofakeit",
}

// DefaultModel returns the model used for provider when none is given.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// Completer sends one prompt to a language model and returns its raw text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type OpenAICompleter struct {
	client openai.Client
	model  string
}

func NewOpenAICompleter(apiKey, baseURL, model string) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY", internal.ErrMissingCredential)
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAICompleter{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai: %w", internal.ErrProviderFailed, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", internal.ErrProviderFailed)
	}

	return completion.Choices[0].Message.Content, nil
}

type OllamaCompleter struct {
	baseURL string
	model   string
	client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func NewOllamaCompleter(baseURL, model string, client *http.Client) *OllamaCompleter {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &OllamaCompleter{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  client,
	}
}

func (c *OllamaCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: ollama: %w", internal.ErrProviderFailed, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read ollama response: %w", internal.ErrProviderFailed, err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: ollama returned status %d: %s", internal.ErrProviderFailed, res.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded ollamaResponse
	err = json.Unmarshal(raw, &decoded)
	if err != nil {
		return "", fmt.Errorf("%w: decode ollama response: %w", internal.ErrProviderFailed, err)
	}
	if decoded.Response == "" {
		return "{}", nil
	}

	return decoded.Response, nil
}

type GeminiCompleter struct {
	client *genai.Client
	model  string
}

func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY", internal.ErrMissingCredential)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create gemini client: %w", internal.ErrProviderFailed, err)
	}

	return &GeminiCompleter{client: client, model: model}, nil
}

func (c *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.model,
		genai.Text(systemPrompt+"\n\n"+prompt),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](temperature),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", internal.ErrProviderFailed, err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned no text", internal.ErrProviderFailed)
	}

	return text, nil
}
