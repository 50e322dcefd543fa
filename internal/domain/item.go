package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/alexanderramin/learnpath/internal/planparse"
	"github.com/google/uuid"
)

// LearningItem is one persisted module of a learning plan.
type LearningItem struct {
	ID             string
	PlanID         string
	Title          string
	Objectives     string
	EstimatedHours float64
	Prerequisites  string
	OrderIndex     int
	Placeholder    bool

	Status  ItemStatus
	Content string

	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemsFromModules maps parser output onto new, not-started items.
func ItemsFromModules(planID string, modules []planparse.Module, now time.Time) []*LearningItem {
	items := make([]*LearningItem, 0, len(modules))
	for _, m := range modules {
		items = append(items, &LearningItem{
			ID:             uuid.New().String(),
			PlanID:         planID,
			Title:          m.Title,
			Objectives:     m.Objectives,
			EstimatedHours: m.EstimatedHours,
			Prerequisites:  m.Prerequisites,
			OrderIndex:     m.OrderIndex,
			Placeholder:    m.Placeholder,
			Status:         ItemNotStarted,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return items
}

func (i *LearningItem) Start(now time.Time) error {
	switch i.Status {
	case ItemInProgress:
		return nil
	case ItemNotStarted:
		i.Status = ItemInProgress
		i.StartedAt = &now
		i.UpdatedAt = now
		return nil
	default:
		return fmt.Errorf("%w: item %q is already %s", ErrInvalidTransition, i.Title, i.Status)
	}
}

// Complete marks the item completed. Completing twice keeps the first
// completion time.
func (i *LearningItem) Complete(now time.Time) error {
	if i.Status == ItemCompleted {
		return nil
	}
	if i.StartedAt == nil {
		i.StartedAt = &now
	}
	i.Status = ItemCompleted
	i.CompletedAt = &now
	i.UpdatedAt = now
	return nil
}

// sortedByOrder returns a copy of items in OrderIndex order.
func sortedByOrder(items []*LearningItem) []*LearningItem {
	out := append([]*LearningItem(nil), items...)
	sort.SliceStable(out, func(a, b int) bool { return out[a].OrderIndex < out[b].OrderIndex })
	return out
}

// CanStart reports whether the item with orderIndex is unlocked: the first
// item always is, any other needs its predecessor completed.
func CanStart(items []*LearningItem, orderIndex int) bool {
	sorted := sortedByOrder(items)
	for pos, it := range sorted {
		if it.OrderIndex != orderIndex {
			continue
		}
		if pos == 0 {
			return true
		}
		return sorted[pos-1].Status == ItemCompleted
	}
	return false
}

// ProgressPct is the rounded share of completed items, 0 for an empty plan.
func ProgressPct(items []*LearningItem) int {
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, it := range items {
		if it.Status == ItemCompleted {
			done++
		}
	}
	return int(math.Round(float64(done) * 100 / float64(len(items))))
}

// AllCompleted reports whether a non-empty item set is fully completed.
func AllCompleted(items []*LearningItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if it.Status != ItemCompleted {
			return false
		}
	}
	return true
}

// TotalHours sums the estimated hours of items.
func TotalHours(items []*LearningItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.EstimatedHours
	}
	return total
}
