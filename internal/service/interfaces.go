package service

import (
	"context"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/pace"
	"github.com/alexanderramin/learnpath/internal/planparse"
	"github.com/alexanderramin/learnpath/internal/repository"
)

// SubmitPlanRequest is a learner's plan request. A non-empty PlanText is
// used as-is and no model is called.
type SubmitPlanRequest struct {
	LearnerID      string
	Goals          string
	Months         float64
	HoursPerWeek   float64
	ProjectRelated bool
	ProjectName    string
	TechStacks     []domain.TechStack
	Profile        domain.LearnerProfile
	PlanText       string
}

// PlanDetail is a plan with its current module set.
type PlanDetail struct {
	Plan  *domain.LearningPlan
	Items []*domain.LearningItem
}

// Progress summarizes how far a learner is through a plan.
type Progress struct {
	Plan           *domain.LearningPlan
	Items          []*domain.LearningItem
	Completed      int
	Total          int
	Pct            int
	HoursTotal     float64
	HoursCompleted float64
	// Next is the first item not yet completed, nil when all are done.
	Next *domain.LearningItem
	// FinalQuizDue is true once every module is done and the plan still
	// waits for a passed final quiz.
	FinalQuizDue bool
	// Pace rates the remaining hours against the time left since approval.
	Pace pace.Result
}

// SubmitResult is a graded quiz attempt.
type SubmitResult struct {
	Assessment *domain.Assessment
	Score      int
	Passed     bool
	// PassPct is the mark the attempt was graded against.
	PassPct int
	// ItemCompleted is true when this pass completed the module.
	ItemCompleted bool
	// PlanCompleted is true when this final-quiz pass completed the plan.
	PlanCompleted bool
}

// Plan references accepted by the services below are full ids or unique id
// prefixes.

type PlanService interface {
	Submit(ctx context.Context, req SubmitPlanRequest) (*PlanDetail, error)
	Improve(ctx context.Context, planRef string, sender domain.SenderRole, senderID, request string) (*PlanDetail, error)
	Approve(ctx context.Context, planRef, adminID string, points int, adjustedText string) (*PlanDetail, error)
	Reject(ctx context.Context, planRef, notes string) (*domain.LearningPlan, error)
	Get(ctx context.Context, planRef string) (*PlanDetail, error)
	List(ctx context.Context, filter repository.PlanFilter) ([]*domain.LearningPlan, error)
	Items(ctx context.Context, planRef string) ([]*domain.LearningItem, error)
	Messages(ctx context.Context, planRef string) ([]*domain.ChatMessage, error)
	// Preview parses text with the configured policy without persisting.
	Preview(text string, months, hoursPerWeek float64) ([]planparse.Module, error)
}

type ProgressService interface {
	Start(ctx context.Context, planRef string, orderIndex int) (*domain.LearningItem, error)
	Complete(ctx context.Context, planRef string, orderIndex int) (*domain.LearningItem, error)
	CompleteItem(ctx context.Context, itemID string) (*domain.LearningItem, error)
	Summary(ctx context.Context, planRef string) (*Progress, error)
}

type ContentService interface {
	Generate(ctx context.Context, planRef string, orderIndex int, profile domain.LearnerProfile) (*domain.LearningItem, error)
	// GenerateAll fills content for every item that has none, at most
	// concurrency model calls at a time.
	GenerateAll(ctx context.Context, planRef string, profile domain.LearnerProfile, concurrency int) (int, error)
}

type AssessmentService interface {
	Generate(ctx context.Context, planRef string, orderIndex int) (*domain.Assessment, error)
	// Submit grades answers against the latest quiz of the item.
	Submit(ctx context.Context, planRef string, orderIndex int, answers []string) (*SubmitResult, error)
	// GenerateFinal writes a quiz over every module; all must be completed.
	GenerateFinal(ctx context.Context, planRef string) (*domain.Assessment, error)
	// SubmitFinal grades the latest final quiz. A pass completes the plan.
	SubmitFinal(ctx context.Context, planRef string, answers []string) (*SubmitResult, error)
}
