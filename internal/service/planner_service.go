package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/studere/studere-api/internal/models"
	appErrors "github.com/studere/studere-api/pkg/errors"
)

// PlannerConfig tunes the AI plan drafting behaviour.
type PlannerConfig struct {
	Model          string
	PromptTemplate string
	RequestTimeout time.Duration
}

type textGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// PlannerService drafts study plans from a subject description using a
// generative model. The upstream response is expected to be a single JSON
// object with a title and a list of topics.
type PlannerService struct {
	client textGenerator
	logger *zap.Logger
	cfg    PlannerConfig
}

// NewPlannerService constructs a PlannerService on top of a text generator.
func NewPlannerService(client textGenerator, cfg PlannerConfig, logger *zap.Logger) *PlannerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &PlannerService{client: client, logger: logger, cfg: cfg}
}

type draftedPlan struct {
	Title  string `json:"title"`
	Topics []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"topics"`
}

// Draft asks the model for a plan and parses its JSON reply.
func (s *PlannerService) Draft(ctx context.Context, subject string) (string, []models.TopicInput, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	prompt := fmt.Sprintf(s.cfg.PromptTemplate, subject)
	raw, err := s.client.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Warn("plan generation request failed", zap.Error(err))
		return "", nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "plan generation failed")
	}

	plan, err := parseDraftedPlan(raw)
	if err != nil {
		s.logger.Warn("plan generation returned malformed payload",
			zap.Error(err),
			zap.Int("payload_len", len(raw)))
		return "", nil, appErrors.Wrap(err, appErrors.ErrUpstreamFormat.Code, appErrors.ErrUpstreamFormat.Status, "plan generation returned an unusable response")
	}

	topics := make([]models.TopicInput, 0, len(plan.Topics))
	for _, topic := range plan.Topics {
		if strings.TrimSpace(topic.Title) == "" {
			continue
		}
		topics = append(topics, models.TopicInput{
			Title:       topic.Title,
			Description: topic.Description,
		})
	}
	if plan.Title == "" || len(topics) == 0 {
		return "", nil, appErrors.Clone(appErrors.ErrUpstreamFormat, "plan generation returned an empty plan")
	}
	return plan.Title, topics, nil
}

// parseDraftedPlan decodes the model reply, tolerating markdown code fences
// and a single-element array wrapper around the object.
func parseDraftedPlan(raw string) (*draftedPlan, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var plan draftedPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err == nil {
		return &plan, nil
	}

	var wrapped []draftedPlan
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err == nil && len(wrapped) > 0 {
		return &wrapped[0], nil
	}

	return nil, fmt.Errorf("decode drafted plan: not a plan object")
}

// GeminiGenerator adapts the Gemini SDK to the textGenerator interface.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator dials the Gemini API.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// GenerateText submits the prompt and concatenates the text parts of the
// first candidate.
func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("generate content: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// Close releases the underlying client connection.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}
