package intelligence

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/llm"
)

// LearnerContext tunes generated material to the learner.
type LearnerContext struct {
	Proficiency     domain.Proficiency
	ExperienceLevel string
	Strengths       string
	TechStack       string
}

func (lc LearnerContext) proficiency() domain.Proficiency {
	if lc.Proficiency == "" {
		return domain.ProficiencyBeginner
	}
	return lc.Proficiency
}

// LearnerContextFor picks the proficiency of the plan's first tech stack,
// which is the learner's primary one.
func LearnerContextFor(p *domain.LearningPlan, profile domain.LearnerProfile) LearnerContext {
	lc := LearnerContext{Strengths: profile.Strengths, ExperienceLevel: profile.Role}
	if len(p.TechStacks) > 0 {
		lc.Proficiency = p.TechStacks[0].Proficiency
		names := make([]string, 0, len(p.TechStacks))
		for _, ts := range p.TechStacks {
			names = append(names, ts.Name)
		}
		lc.TechStack = strings.Join(names, ", ")
	}
	return lc
}

// ContentWriter produces markdown study material for one module.
type ContentWriter interface {
	Write(ctx context.Context, item *domain.LearningItem, lc LearnerContext) (string, error)
}

type contentWriter struct {
	client llm.LLMClient
}

func NewContentWriter(client llm.LLMClient) ContentWriter {
	return &contentWriter{client: client}
}

func (w *contentWriter) Write(ctx context.Context, item *domain.LearningItem, lc LearnerContext) (string, error) {
	resp, err := w.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskContent,
		SystemPrompt: contentSystemPrompt,
		UserPrompt:   buildContentPrompt(item, lc),
	})
	if err != nil {
		return "", fmt.Errorf("llm content generation failed: %w", err)
	}
	return nonEmpty(resp.Text, "module content")
}
