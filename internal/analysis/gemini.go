package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shenikar/binalert/internal/config"
	"github.com/shenikar/binalert/pkg/imagedata"
	"google.golang.org/genai"
)

// responseSchema описывает JSON, который должна вернуть модель
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"overflowLevel": {Type: genai.TypeNumber, Description: "Percentage full from 0 to 100"},
		"wasteTypes": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "List of waste types detected",
		},
		"urgency":     {Type: genai.TypeString, Enum: []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}},
		"description": {Type: genai.TypeString, Description: "Short summary of the situation"},
		"isHazardous": {Type: genai.TypeBoolean},
	},
	Required: []string{"overflowLevel", "wasteTypes", "urgency", "description", "isHazardous"},
}

// GeminiClassifier обращается к модели Gemini через официальный SDK
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

// NewGeminiClassifier создает классификатор на основе конфигурации.
// Без ключа клиент не создается, и Classify сразу возвращает ErrMissingCredential.
func NewGeminiClassifier(ctx context.Context, cfg *config.Config) (*GeminiClassifier, error) {
	g := &GeminiClassifier{model: cfg.GeminiModel}
	if cfg.GoogleAPIKey == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.GoogleAPIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: cfg.AnalyzeTimeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.GeminiBaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

// Classify отправляет изображение и инструкцию, возвращает текст ответа модели
func (g *GeminiClassifier) Classify(ctx context.Context, req Request) (string, error) {
	if g.client == nil {
		return "", ErrMissingCredential
	}

	_, data, err := imagedata.Decode(req.Data)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, req.MIMEType),
			genai.NewPartFromText(req.Prompt),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	})
	if err != nil {
		return "", classifyError(ctx, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}

// classifyError приводит ошибку SDK к ошибкам пакета, сохраняя причину в цепочке
func classifyError(ctx context.Context, err error) error {
	if code, ok := apiErrorCode(err); ok && (code == http.StatusUnauthorized || code == http.StatusForbidden) {
		return fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}
