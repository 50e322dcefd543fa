package repository

import (
	"context"

	"github.com/alexanderramin/learnpath/internal/domain"
)

// PlanFilter narrows List results. Zero values match everything.
type PlanFilter struct {
	Status    domain.PlanStatus
	LearnerID string
}

type LearningPlanRepo interface {
	Create(ctx context.Context, p *domain.LearningPlan) error
	GetByID(ctx context.Context, id string) (*domain.LearningPlan, error)
	// FindByIDPrefix returns every plan whose id starts with prefix.
	FindByIDPrefix(ctx context.Context, prefix string) ([]*domain.LearningPlan, error)
	List(ctx context.Context, filter PlanFilter) ([]*domain.LearningPlan, error)
	Update(ctx context.Context, p *domain.LearningPlan) error
}

type LearningItemRepo interface {
	// ReplaceForPlan deletes the plan's current items and inserts items.
	// Callers run it inside a transaction.
	ReplaceForPlan(ctx context.Context, planID string, items []*domain.LearningItem) error
	GetByID(ctx context.Context, id string) (*domain.LearningItem, error)
	GetByOrder(ctx context.Context, planID string, orderIndex int) (*domain.LearningItem, error)
	ListByPlan(ctx context.Context, planID string) ([]*domain.LearningItem, error)
	Update(ctx context.Context, it *domain.LearningItem) error
}

type ChatMessageRepo interface {
	Create(ctx context.Context, m *domain.ChatMessage) error
	ListByPlan(ctx context.Context, planID string) ([]*domain.ChatMessage, error)
}

type AssessmentRepo interface {
	Create(ctx context.Context, a *domain.Assessment) error
	GetByID(ctx context.Context, id string) (*domain.Assessment, error)
	LatestForItem(ctx context.Context, itemID string) (*domain.Assessment, error)
	LatestFinalForPlan(ctx context.Context, planID string) (*domain.Assessment, error)
	Update(ctx context.Context, a *domain.Assessment) error
}
