package intelligence

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/llm"
)

// PlanRequest is everything the model needs to draft a plan.
type PlanRequest struct {
	Goals          string
	Months         float64
	HoursPerWeek   float64
	ProjectRelated bool
	ProjectName    string
	TechStacks     []domain.TechStack
	Profile        domain.LearnerProfile
}

// PlanRequestFor builds a PlanRequest from a stored plan.
func PlanRequestFor(p *domain.LearningPlan, profile domain.LearnerProfile) PlanRequest {
	return PlanRequest{
		Goals:          p.Goals,
		Months:         p.Months,
		HoursPerWeek:   p.HoursPerWeek,
		ProjectRelated: p.ProjectRelated,
		ProjectName:    p.ProjectName,
		TechStacks:     p.TechStacks,
		Profile:        profile,
	}
}

// PlanWriter produces plan text in the module format planparse reads.
type PlanWriter interface {
	Draft(ctx context.Context, req PlanRequest) (string, error)
	// Improve rewrites currentPlan according to a free-text request.
	Improve(ctx context.Context, currentPlan, request string) (string, error)
}

type planWriter struct {
	client llm.LLMClient
}

func NewPlanWriter(client llm.LLMClient) PlanWriter {
	return &planWriter{client: client}
}

func (w *planWriter) Draft(ctx context.Context, req PlanRequest) (string, error) {
	resp, err := w.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskPlanGenerate,
		SystemPrompt: planSystemPrompt,
		UserPrompt:   buildPlanPrompt(req),
	})
	if err != nil {
		return "", fmt.Errorf("llm plan draft failed: %w", err)
	}
	return nonEmpty(resp.Text, "plan draft")
}

func (w *planWriter) Improve(ctx context.Context, currentPlan, request string) (string, error) {
	if strings.TrimSpace(request) == "" {
		return "", fmt.Errorf("improvement request is empty")
	}
	resp, err := w.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskPlanImprove,
		SystemPrompt: improveSystemPrompt,
		UserPrompt:   buildImprovePrompt(currentPlan, request),
	})
	if err != nil {
		return "", fmt.Errorf("llm plan improvement failed: %w", err)
	}
	return nonEmpty(resp.Text, "improved plan")
}

func nonEmpty(text, what string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s is empty", llm.ErrInvalidOutput, what)
	}
	return text, nil
}
