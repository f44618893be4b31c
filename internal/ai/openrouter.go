package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Solorzano97/LaCazuelaChapina/pkg/config"
)

var _ Assistant = (*OpenRouter)(nil)

// OpenRouter talks to the OpenRouter chat-completions gateway over plain
// HTTP. Gateway errors come back as a descriptive message in the reply
// body, not as a handler error.
type OpenRouter struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

func NewOpenRouter(cfg *config.Config) *OpenRouter {
	return &OpenRouter{
		apiKey:      cfg.OpenRouter.APIKey,
		baseURL:     cfg.OpenRouter.BaseURL,
		model:       cfg.OpenRouter.Model,
		maxTokens:   cfg.OpenRouter.MaxTokens,
		temperature: cfg.OpenRouter.Temperature,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *OpenRouter) Ask(ctx context.Context, prompt, extraContext string) (string, error) {
	system := systemPrompt
	if extraContext != "" {
		system += "\n\nContexto adicional: " + extraContext
	}

	payload := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", "https://lacazuelachapina.com")
	req.Header.Set("X-Title", "La Cazuela Chapina")

	log.Info().Str("model", o.model).Msg("calling OpenRouter")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: gateway call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return "", fmt.Errorf("ai: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Msg("OpenRouter returned non-200")
		detail := string(raw)
		if len(detail) > 200 {
			detail = detail[:200]
		}
		return fmt.Sprintf("Error al conectar con OpenRouter (Status: %d). Por favor verifica tu API Key. Detalles: %s",
			resp.StatusCode, detail), nil
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		detail := string(raw)
		if len(detail) > 500 {
			detail = detail[:500]
		}
		return "Error: la respuesta de OpenRouter no es JSON válido. Response: " + detail, nil
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "No se pudo generar una respuesta.", nil
	}

	return parsed.Choices[0].Message.Content, nil
}

func (o *OpenRouter) SuggestCombo(ctx context.Context, preferences string) (string, error) {
	return o.Ask(ctx, comboPrompt(preferences), "")
}

func (o *OpenRouter) AnalyzeSales(ctx context.Context, salesData string) (string, error) {
	return o.Ask(ctx, salesPrompt(salesData), "")
}

func (o *OpenRouter) RecommendProducts(ctx context.Context, purchaseHistory string) (string, error) {
	return o.Ask(ctx, recommendPrompt(purchaseHistory), "")
}

func (o *OpenRouter) OptimizeInventory(ctx context.Context, inventoryData string) (string, error) {
	return o.Ask(ctx, inventoryPrompt(inventoryData), inventoryContext)
}
