package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/intelligence"
	"github.com/alexanderramin/learnpath/internal/llm"
	"github.com/alexanderramin/learnpath/internal/repository"
	"golang.org/x/sync/errgroup"
)

// DefaultContentConcurrency bounds parallel model calls in GenerateAll.
const DefaultContentConcurrency = 3

type contentService struct {
	plans    repository.LearningPlanRepo
	items    repository.LearningItemRepo
	writer   intelligence.ContentWriter
	observer UseCaseObserver
}

func NewContentService(
	plans repository.LearningPlanRepo,
	items repository.LearningItemRepo,
	writer intelligence.ContentWriter,
	observers ...UseCaseObserver,
) ContentService {
	return &contentService{plans: plans, items: items, writer: writer, observer: useCaseObserverOrNoop(observers)}
}

func (s *contentService) learnablePlan(ctx context.Context, planRef string) (*domain.LearningPlan, error) {
	if s.writer == nil {
		return nil, fmt.Errorf("generating content: %w", llm.ErrDisabled)
	}
	plan, err := resolvePlan(ctx, s.plans, planRef)
	if err != nil {
		return nil, err
	}
	if !plan.Learnable() {
		return nil, fmt.Errorf("%w: plan %s is %s", ErrPlanNotLearnable, plan.DisplayID(), plan.Status)
	}
	return plan, nil
}

// Generate writes fresh content for one module, replacing any stored copy.
func (s *contentService) Generate(ctx context.Context, planRef string, orderIndex int, profile domain.LearnerProfile) (item *domain.LearningItem, err error) {
	fields := map[string]any{"plan": planRef, "module": orderIndex}
	defer track(ctx, s.observer, "content-generate", fields)(&err)

	plan, err := s.learnablePlan(ctx, planRef)
	if err != nil {
		return nil, err
	}
	item, err = s.items.GetByOrder(ctx, plan.ID, orderIndex)
	if err != nil {
		return nil, err
	}
	if err = s.fill(ctx, item, intelligence.LearnerContextFor(plan, profile)); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *contentService) GenerateAll(ctx context.Context, planRef string, profile domain.LearnerProfile, concurrency int) (n int, err error) {
	fields := map[string]any{"plan": planRef}
	defer track(ctx, s.observer, "content-generate-all", fields)(&err)

	plan, err := s.learnablePlan(ctx, planRef)
	if err != nil {
		return 0, err
	}
	items, err := s.items.ListByPlan(ctx, plan.ID)
	if err != nil {
		return 0, err
	}
	if concurrency <= 0 {
		concurrency = DefaultContentConcurrency
	}
	lc := intelligence.LearnerContextFor(plan, profile)

	var filled atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, it := range items {
		if strings.TrimSpace(it.Content) != "" {
			continue
		}
		it := it
		g.Go(func() error {
			if err := s.fill(gctx, it, lc); err != nil {
				return fmt.Errorf("module %d: %w", it.OrderIndex, err)
			}
			filled.Add(1)
			return nil
		})
	}
	err = g.Wait()
	n = int(filled.Load())
	fields["filled"] = n
	return n, err
}

func (s *contentService) fill(ctx context.Context, item *domain.LearningItem, lc intelligence.LearnerContext) error {
	content, err := s.writer.Write(ctx, item, lc)
	if err != nil {
		return err
	}
	item.Content = content
	item.UpdatedAt = time.Now().UTC()
	return s.items.Update(ctx, item)
}
