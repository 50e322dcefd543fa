package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/repository"
)

// resolvePlan finds a plan by full id or unique id prefix.
func resolvePlan(ctx context.Context, plans repository.LearningPlanRepo, ref string) (*domain.LearningPlan, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("plan id is required")
	}
	p, err := plans.GetByID(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	matches, err := plans.FindByIDPrefix(ctx, ref)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("plan %q: %w", ref, repository.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q matches %d plans", ErrAmbiguousID, ref, len(matches))
	}
}

// clipText cuts s to at most limit bytes without splitting a rune.
// A limit of zero or less disables clipping.
func clipText(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func itemByOrder(items []*domain.LearningItem, orderIndex int) (*domain.LearningItem, error) {
	for _, it := range items {
		if it.OrderIndex == orderIndex {
			return it, nil
		}
	}
	return nil, fmt.Errorf("module %d: %w", orderIndex, repository.ErrNotFound)
}
