package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shenikar/binalert/internal/models"
	"github.com/shenikar/binalert/pkg/imagedata"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=analyzer.go -destination=mocks/classifier.go -package=mocks

// Prompt - фиксированная инструкция для сервиса классификации
const Prompt = `Analyze this image of a garbage bin.
Determine if it is overflowing and estimate the fill percentage (0-100).
Identify visible waste types using only these categories: plastic, organic, paper, metal, hazardous, general.
Assess urgency as one of LOW, MEDIUM, HIGH, CRITICAL.
If you see fire, smoke, or leaking chemicals, urgency MUST be CRITICAL and isHazardous MUST be true.`

// FallbackDescription - текст анализа, когда сервис классификации недоступен
const FallbackDescription = "AI analysis unavailable (Check API Key). Defaulting to medium urgency."

// Fallback возвращает фиксированный консервативный результат анализа
func Fallback() models.AnalysisResult {
	return models.AnalysisResult{
		OverflowLevel: 85,
		WasteTypes:    []string{"General Waste", "Plastic"},
		Urgency:       models.UrgencyMedium,
		Description:   FallbackDescription,
		IsHazardous:   false,
	}
}

// Request - изображение, подготовленное к отправке
type Request struct {
	MIMEType string
	Data     string // base64 без заголовка data URI
	Prompt   string
}

// Classifier - внешний сервис классификации изображений.
// Возвращает сырой JSON-текст ответа модели.
type Classifier interface {
	Classify(ctx context.Context, req Request) (string, error)
}

// Outcome - результат анализа: успешный или деградированный (fallback).
// Result всегда пригоден к использованию.
type Outcome struct {
	Result   models.AnalysisResult
	Degraded bool
	Reason   string
}

// Success оборачивает настоящий результат анализа
func Success(result models.AnalysisResult) Outcome {
	return Outcome{Result: result}
}

// Degraded оборачивает fallback-результат с причиной деградации
func Degraded(result models.AnalysisResult, reason string) Outcome {
	return Outcome{Result: result, Degraded: true, Reason: reason}
}

// Analyzer готовит изображение, вызывает классификатор и нормализует ответ
type Analyzer struct {
	classifier Classifier
	logger     *logrus.Logger
	timeout    time.Duration
}

func NewAnalyzer(classifier Classifier, logger *logrus.Logger, timeout time.Duration) *Analyzer {
	return &Analyzer{
		classifier: classifier,
		logger:     logger,
		timeout:    timeout,
	}
}

// rawResult - ответ модели в том виде, как она его сформулировала
type rawResult struct {
	OverflowLevel *float64 `json:"overflowLevel"`
	WasteTypes    []string `json:"wasteTypes"`
	Urgency       string   `json:"urgency"`
	Description   string   `json:"description"`
	IsHazardous   bool     `json:"isHazardous"`
}

// Classify выполняет одну попытку анализа и возвращает типизированные ошибки
func (a *Analyzer) Classify(ctx context.Context, image string) (*models.AnalysisResult, error) {
	mimeType, payload := imagedata.Split(image)
	if payload == "" {
		return nil, ErrMissingImage
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := a.classifier.Classify(ctx, Request{
		MIMEType: mimeType,
		Data:     payload,
		Prompt:   Prompt,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}

	result := normalize(raw)
	return &result, nil
}

// Analyze никогда не возвращает ошибку: при любой неудаче отдается Fallback
func (a *Analyzer) Analyze(ctx context.Context, image string) Outcome {
	log := a.logger.WithFields(logrus.Fields{
		"service": "analysis",
		"method":  "Analyze",
	})

	result, err := a.Classify(ctx, image)
	if err != nil {
		log.WithError(err).Warn("Bin analysis failed, using fallback result")
		return Degraded(Fallback(), reason(err))
	}

	log.WithFields(logrus.Fields{
		"overflow": result.OverflowLevel,
		"urgency":  result.Urgency,
	}).Debug("Bin analysis completed")
	return Success(*result)
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingImage):
		return ErrMissingImage.Error()
	case errors.Is(err, ErrMissingCredential):
		return ErrMissingCredential.Error()
	case errors.Is(err, ErrInvalidCredential):
		return ErrInvalidCredential.Error()
	case errors.Is(err, ErrEmptyResponse):
		return ErrEmptyResponse.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "classification timed out"
	default:
		return err.Error()
	}
}

func normalize(raw rawResult) models.AnalysisResult {
	result := models.AnalysisResult{
		Urgency:     models.ParseUrgency(raw.Urgency),
		Description: strings.TrimSpace(raw.Description),
		IsHazardous: raw.IsHazardous,
		WasteTypes:  make([]string, 0, len(raw.WasteTypes)),
	}

	if raw.OverflowLevel != nil && !math.IsNaN(*raw.OverflowLevel) {
		result.OverflowLevel = int(clamp(math.Round(*raw.OverflowLevel), 0, 100))
	}

	for _, wt := range raw.WasteTypes {
		if wt = strings.TrimSpace(wt); wt != "" {
			result.WasteTypes = append(result.WasteTypes, wt)
		}
	}

	// опасность всегда означает CRITICAL
	if result.IsHazardous {
		result.Urgency = models.UrgencyCritical
	}
	return result
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
