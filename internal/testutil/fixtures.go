package testutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/google/uuid"
)

// PlanOption customizes a fixture plan.
type PlanOption func(*domain.LearningPlan)

func WithPlanStatus(s domain.PlanStatus) PlanOption {
	return func(p *domain.LearningPlan) {
		p.Status = s
	}
}

func WithDuration(months, hoursPerWeek float64) PlanOption {
	return func(p *domain.LearningPlan) {
		p.Months = months
		p.HoursPerWeek = hoursPerWeek
	}
}

func WithGeneratedText(text string) PlanOption {
	return func(p *domain.LearningPlan) {
		p.GeneratedText = text
	}
}

func WithLearner(id string) PlanOption {
	return func(p *domain.LearningPlan) {
		p.LearnerID = id
	}
}

func WithTechStacks(stacks ...domain.TechStack) PlanOption {
	return func(p *domain.LearningPlan) {
		p.TechStacks = stacks
	}
}

func WithCreatedAt(t time.Time) PlanOption {
	return func(p *domain.LearningPlan) {
		p.CreatedAt = t
		p.UpdatedAt = t
	}
}

// NewTestPlan returns a pending two-month plan at 10 hours a week.
func NewTestPlan(goals string, opts ...PlanOption) *domain.LearningPlan {
	now := time.Now().UTC()
	p := &domain.LearningPlan{
		ID:           uuid.New().String(),
		LearnerID:    "learner-1",
		Goals:        goals,
		Months:       2,
		HoursPerWeek: 10,
		TechStacks: []domain.TechStack{
			{Name: "Go", Proficiency: domain.ProficiencyIntermediate, YearsOfExperience: 2},
		},
		Status:    domain.PlanPendingApproval,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ItemOption customizes a fixture item.
type ItemOption func(*domain.LearningItem)

func WithItemStatus(s domain.ItemStatus) ItemOption {
	return func(it *domain.LearningItem) {
		it.Status = s
	}
}

func WithHours(h float64) ItemOption {
	return func(it *domain.LearningItem) {
		it.EstimatedHours = h
	}
}

func NewTestItem(planID string, order int, opts ...ItemOption) *domain.LearningItem {
	now := time.Now().UTC()
	it := &domain.LearningItem{
		ID:             uuid.New().String(),
		PlanID:         planID,
		Title:          fmt.Sprintf("Module %d: Topic %d", order, order),
		Objectives:     "Understand topic " + fmt.Sprint(order),
		EstimatedHours: 5,
		Prerequisites:  "None",
		OrderIndex:     order,
		Status:         domain.ItemNotStarted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// NewTestItems returns n not-started items ordered 1..n.
func NewTestItems(planID string, n int) []*domain.LearningItem {
	items := make([]*domain.LearningItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, NewTestItem(planID, i))
	}
	return items
}

// PlanText renders a well-formed plan with n modules of hours each.
func PlanText(n int, hours int) string {
	var b strings.Builder
	b.WriteString("Here is your personalised learning plan.\n\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "Module %d: Topic %d\n", i, i)
		fmt.Fprintf(&b, "Objectives: Build working knowledge of topic %d\n", i)
		fmt.Fprintf(&b, "Estimated Time: %d hours\n", hours)
		if i == 1 {
			b.WriteString("Prerequisites: None\n\n")
		} else {
			fmt.Fprintf(&b, "Prerequisites: Module %d\n\n", i-1)
		}
	}
	return b.String()
}

func NewTestQuestion(n int) domain.Question {
	return domain.Question{
		Question:      fmt.Sprintf("Question %d?", n),
		Options:       []string{"alpha", "beta", "gamma", "delta"},
		CorrectAnswer: "alpha",
		Explanation:   "alpha is first",
	}
}
