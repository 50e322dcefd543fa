package intelligence

import (
	"context"
	"fmt"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/llm"
)

const (
	minQuestions = 5
	maxQuestions = 10

	minFinalQuestions = 15
	maxFinalQuestions = 20
)

type quizResponse struct {
	Questions []domain.Question `json:"questions"`
}

func validateQuizResponse(r quizResponse) error {
	if len(r.Questions) == 0 {
		return fmt.Errorf("questions array is empty")
	}
	return nil
}

// QuizWriter produces validated multiple-choice questions for a module, or
// for a whole plan once its modules are done.
type QuizWriter interface {
	Write(ctx context.Context, item *domain.LearningItem, content string, p domain.Proficiency) ([]domain.Question, error)
	WriteFinal(ctx context.Context, plan *domain.LearningPlan, completed []*domain.LearningItem) ([]domain.Question, error)
}

type quizWriter struct {
	client llm.LLMClient
}

func NewQuizWriter(client llm.LLMClient) QuizWriter {
	return &quizWriter{client: client}
}

// Write keeps every question that normalizes cleanly, up to maxQuestions.
// A response with no usable question is llm.ErrInvalidOutput.
func (w *quizWriter) Write(ctx context.Context, item *domain.LearningItem, content string, p domain.Proficiency) ([]domain.Question, error) {
	return w.questions(ctx, buildQuizPrompt(item, content, p), maxQuestions)
}

// WriteFinal asks for a course-wide quiz over the completed modules.
func (w *quizWriter) WriteFinal(ctx context.Context, plan *domain.LearningPlan, completed []*domain.LearningItem) ([]domain.Question, error) {
	if len(completed) == 0 {
		return nil, fmt.Errorf("final quiz needs at least one completed module")
	}
	return w.questions(ctx, buildFinalQuizPrompt(plan, completed), maxFinalQuestions)
}

func (w *quizWriter) questions(ctx context.Context, prompt string, limit int) ([]domain.Question, error) {
	resp, err := w.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskAssessment,
		SystemPrompt: assessmentSystemPrompt,
		UserPrompt:   prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("llm quiz generation failed: %w", err)
	}

	parsed, err := llm.ExtractJSON[quizResponse](resp.Text, validateQuizResponse)
	if err != nil {
		return nil, fmt.Errorf("failed to extract quiz: %w", err)
	}

	valid := make([]domain.Question, 0, len(parsed.Questions))
	for _, q := range parsed.Questions {
		if err := q.Normalize(); err != nil {
			continue
		}
		valid = append(valid, q)
		if len(valid) == limit {
			break
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: no valid multiple-choice question in response", llm.ErrInvalidOutput)
	}
	return valid, nil
}
