package intelligence

import (
	"context"
	"strings"
	"testing"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient returns a fixed response and records the last request.
type scriptedClient struct {
	response string
	err      error
	lastReq  llm.GenerateRequest
	calls    int
}

func (c *scriptedClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	c.calls++
	c.lastReq = req
	if c.err != nil {
		return nil, c.err
	}
	return &llm.GenerateResponse{Text: c.response, Model: "llama3.2"}, nil
}

func (c *scriptedClient) Available(_ context.Context) bool { return c.err == nil }

func sampleRequest() PlanRequest {
	return PlanRequest{
		Goals:        "Become productive with Go microservices",
		Months:       1.5,
		HoursPerWeek: 6,
		TechStacks: []domain.TechStack{
			{Name: "Go", Proficiency: domain.ProficiencyAdvanced, YearsOfExperience: 3},
		},
		Profile: domain.LearnerProfile{Role: "Backend Engineer", Strengths: "SQL"},
	}
}

func TestPlanWriter_DraftBuildsPrompt(t *testing.T) {
	client := &scriptedClient{response: "\n**Module 1: gRPC**\nEstimated Time: 6 hours\n"}
	text, err := NewPlanWriter(client).Draft(context.Background(), sampleRequest())

	require.NoError(t, err)
	assert.Equal(t, "**Module 1: gRPC**\nEstimated Time: 6 hours", text)
	assert.Equal(t, llm.TaskPlanGenerate, client.lastReq.Task)

	prompt := client.lastReq.UserPrompt
	assert.Contains(t, prompt, "Duration: 1.5 months")
	assert.Contains(t, prompt, "approximately 6 modules")
	assert.Contains(t, prompt, "Total available hours: 36 hours")
	assert.Contains(t, prompt, "Average hours per module: 6 hours")
	assert.Contains(t, prompt, "- Go: Advanced level (3 years of experience)")
	assert.Contains(t, prompt, "Role: Backend Engineer")
	assert.Contains(t, prompt, "Related to existing project: No")
	assert.Contains(t, prompt, "Estimated Time: [X] hours")
}

func TestPlanWriter_DraftProjectRelated(t *testing.T) {
	client := &scriptedClient{response: "Module 1: x"}
	req := sampleRequest()
	req.ProjectRelated = true
	req.ProjectName = "Billing"
	req.TechStacks = nil

	_, err := NewPlanWriter(client).Draft(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, client.lastReq.UserPrompt, "Related to existing project: Yes - Billing")
	assert.Contains(t, client.lastReq.UserPrompt, "No tech stacks specified")
	assert.Contains(t, client.lastReq.UserPrompt, "Assume beginner level")
}

func TestPlanWriter_DraftErrors(t *testing.T) {
	_, err := NewPlanWriter(&scriptedClient{err: llm.ErrTimeout}).Draft(context.Background(), sampleRequest())
	require.ErrorIs(t, err, llm.ErrTimeout)

	_, err = NewPlanWriter(&scriptedClient{response: "  \n"}).Draft(context.Background(), sampleRequest())
	require.ErrorIs(t, err, llm.ErrInvalidOutput)
}

func TestPlanWriter_Improve(t *testing.T) {
	client := &scriptedClient{response: "**Module 1: Shorter**"}
	text, err := NewPlanWriter(client).Improve(context.Background(), "**Module 1: Long**", "make it shorter")

	require.NoError(t, err)
	assert.Equal(t, "**Module 1: Shorter**", text)
	assert.Equal(t, llm.TaskPlanImprove, client.lastReq.Task)
	assert.Equal(t, improveSystemPrompt, client.lastReq.SystemPrompt)
	assert.Contains(t, client.lastReq.UserPrompt, "**Module 1: Long**")
	assert.Contains(t, client.lastReq.UserPrompt, "make it shorter")
}

func TestPlanWriter_ImproveEmptyRequest(t *testing.T) {
	client := &scriptedClient{response: "x"}
	_, err := NewPlanWriter(client).Improve(context.Background(), "plan", "   ")
	require.Error(t, err)
	assert.Zero(t, client.calls)
}

func TestContentWriter_ProficiencyInstructions(t *testing.T) {
	item := &domain.LearningItem{Title: "Module 1: Channels", Objectives: "Use select", EstimatedHours: 4}

	tests := []struct {
		level domain.Proficiency
		want  string
	}{
		{domain.ProficiencyExpert, "DO NOT include basic concepts"},
		{domain.ProficiencyAdvanced, "DO NOT include basic concepts"},
		{domain.ProficiencyIntermediate, "Skip basic syntax"},
		{domain.ProficiencyBeginner, "Start with fundamentals"},
		{"", "Start with fundamentals"},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			client := &scriptedClient{response: "## Channels"}
			text, err := NewContentWriter(client).Write(context.Background(), item, LearnerContext{Proficiency: tt.level})
			require.NoError(t, err)
			assert.Equal(t, "## Channels", text)
			assert.Equal(t, llm.TaskContent, client.lastReq.Task)
			assert.Contains(t, client.lastReq.UserPrompt, tt.want)
			assert.Contains(t, client.lastReq.UserPrompt, "Learning Item: Module 1: Channels")
		})
	}
}

func TestLearnerContextFor(t *testing.T) {
	plan := &domain.LearningPlan{TechStacks: []domain.TechStack{
		{Name: "Go", Proficiency: domain.ProficiencyExpert},
		{Name: "Postgres", Proficiency: domain.ProficiencyBeginner},
	}}
	lc := LearnerContextFor(plan, domain.LearnerProfile{Strengths: "debugging"})

	assert.Equal(t, domain.ProficiencyExpert, lc.Proficiency)
	assert.Equal(t, "Go, Postgres", lc.TechStack)
	assert.Equal(t, "debugging", lc.Strengths)

	assert.Equal(t, domain.ProficiencyBeginner, LearnerContextFor(&domain.LearningPlan{}, domain.LearnerProfile{}).proficiency())
}

const quizFixture = "Here is your quiz:\n```json\n" + `{
  "questions": [
    {"question": "What does select do?", "options": ["Waits on channels", "Sorts", "Locks", "Loops"], "correctAnswer": "Waits on channels", "explanation": "multiplexing"},
    {"question": "Closing a nil channel?", "options": ["Panics", "No-op", "Blocks", "Returns error"], "correctAnswer": "A"},
    {"question": "Only three options", "options": ["a", "b", "c"], "correctAnswer": "a"},
    {"question": "Wrong answer", "options": ["a", "b", "c", "d"], "correctAnswer": "z"},
  ]
}` + "\n```"

func TestQuizWriter_DropsInvalidQuestions(t *testing.T) {
	client := &scriptedClient{response: quizFixture}
	item := &domain.LearningItem{Title: "Module 2: Select"}

	qs, err := NewQuizWriter(client).Write(context.Background(), item, "content", domain.ProficiencyIntermediate)

	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "Waits on channels", qs[0].CorrectAnswer)
	assert.Equal(t, "Panics", qs[1].CorrectAnswer, "letter answers resolve to option text")
	assert.Equal(t, llm.TaskAssessment, client.lastReq.Task)
	assert.Contains(t, client.lastReq.UserPrompt, `questions specifically about "Module 2: Select"`)
}

func TestQuizWriter_NoValidQuestions(t *testing.T) {
	client := &scriptedClient{response: `{"questions":[{"question":"q","options":["a"],"correctAnswer":"a"}]}`}
	_, err := NewQuizWriter(client).Write(context.Background(), &domain.LearningItem{Title: "t"}, "", "")
	require.ErrorIs(t, err, llm.ErrInvalidOutput)

	client = &scriptedClient{response: `{"questions":[]}`}
	_, err = NewQuizWriter(client).Write(context.Background(), &domain.LearningItem{Title: "t"}, "", "")
	require.ErrorIs(t, err, llm.ErrInvalidOutput)

	client = &scriptedClient{response: "I cannot help with that."}
	_, err = NewQuizWriter(client).Write(context.Background(), &domain.LearningItem{Title: "t"}, "", "")
	require.ErrorIs(t, err, llm.ErrInvalidOutput)
}

func TestQuizWriter_CapsQuestionCount(t *testing.T) {
	body := `{"questions":[`
	for i := 0; i < 14; i++ {
		if i > 0 {
			body += ","
		}
		body += `{"question":"q` + string(rune('a'+i)) + `","options":["w","x","y","z"],"correctAnswer":"w"}`
	}
	body += `]}`

	qs, err := NewQuizWriter(&scriptedClient{response: body}).Write(context.Background(), &domain.LearningItem{Title: "t"}, "", "")
	require.NoError(t, err)
	assert.Len(t, qs, maxQuestions)
}

func TestBuildQuizPrompt_TruncatesContent(t *testing.T) {
	long := make([]rune, quizContentLimit+50)
	for i := range long {
		long[i] = 'é'
	}
	prompt := buildQuizPrompt(&domain.LearningItem{Title: "t"}, string(long), "")

	assert.Contains(t, prompt, string(long[:quizContentLimit])+"...")
	assert.NotContains(t, prompt, string(long))
	assert.Contains(t, prompt, "Learner Proficiency Level: Beginner")
}

func finalPlan() (*domain.LearningPlan, []*domain.LearningItem) {
	plan := &domain.LearningPlan{
		Goals:          "Ship a Go service",
		Months:         1,
		HoursPerWeek:   5,
		ProjectRelated: true,
		ProjectName:    "Billing",
		TechStacks:     []domain.TechStack{{Name: "Go"}, {Name: "PostgreSQL"}},
	}
	items := []*domain.LearningItem{
		{Title: "Module 1: Goroutines", Objectives: "Start and stop goroutines safely"},
		{Title: "Module 2: Channels"},
	}
	return plan, items
}

func TestQuizWriter_WriteFinalCoversCompletedModules(t *testing.T) {
	client := &scriptedClient{response: quizFixture}
	plan, items := finalPlan()

	qs, err := NewQuizWriter(client).WriteFinal(context.Background(), plan, items)
	require.NoError(t, err)
	assert.Len(t, qs, 2)
	assert.Equal(t, llm.TaskAssessment, client.lastReq.Task)

	prompt := client.lastReq.UserPrompt
	assert.Contains(t, prompt, "Completed Learning Items (2 items):")
	assert.Contains(t, prompt, "1. Module 1: Goroutines - Start and stop goroutines safely")
	assert.Contains(t, prompt, "2. Module 2: Channels\n")
	assert.Contains(t, prompt, "- Tech Stacks: Go, PostgreSQL")
	assert.Contains(t, prompt, "- Project Related: Yes - Billing")
	assert.Contains(t, prompt, "- Total learning hours: 20 hours")
}

func TestQuizWriter_WriteFinalNeedsCompletedModules(t *testing.T) {
	client := &scriptedClient{response: quizFixture}
	plan, _ := finalPlan()

	_, err := NewQuizWriter(client).WriteFinal(context.Background(), plan, nil)
	require.Error(t, err)
	assert.Zero(t, client.calls)
}

func TestBuildFinalQuizPrompt_ClipsObjectives(t *testing.T) {
	plan, items := finalPlan()
	items[0].Objectives = strings.Repeat("x", finalObjectivesLimit+30)

	prompt := buildFinalQuizPrompt(plan, items)
	assert.Contains(t, prompt, " - "+strings.Repeat("x", finalObjectivesLimit)+"\n")
	assert.NotContains(t, prompt, strings.Repeat("x", finalObjectivesLimit+1))
}
