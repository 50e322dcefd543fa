package planparse

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidContext reports a caller-supplied Context that breaks the
// parser's preconditions.
var ErrInvalidContext = errors.New("invalid plan parse context")

// defaultFallbackHours is used when the plan carries no usable time budget.
const defaultFallbackHours = 2

// Context holds the numeric plan parameters that drive normalization.
type Context struct {
	ExpectedModules int     // target module count, usually ceil(months*4)
	HoursPerWeek    float64 // per-module upper clamp
	TotalHours      float64 // months*4*HoursPerWeek
}

// NewContext derives a Context from the learner's duration and weekly budget.
func NewContext(months, hoursPerWeek float64) Context {
	return Context{
		ExpectedModules: int(math.Ceil(months * 4)),
		HoursPerWeek:    hoursPerWeek,
		TotalHours:      months * 4 * hoursPerWeek,
	}
}

// Validate checks the preconditions Parse relies on.
func (c Context) Validate() error {
	if c.ExpectedModules < 1 {
		return fmt.Errorf("%w: expected module count must be at least 1, got %d", ErrInvalidContext, c.ExpectedModules)
	}
	if c.HoursPerWeek <= 0 || math.IsNaN(c.HoursPerWeek) || math.IsInf(c.HoursPerWeek, 0) {
		return fmt.Errorf("%w: hours per week must be positive, got %v", ErrInvalidContext, c.HoursPerWeek)
	}
	if c.TotalHours < 0 || math.IsNaN(c.TotalHours) {
		return fmt.Errorf("%w: total hours must not be negative, got %v", ErrInvalidContext, c.TotalHours)
	}
	return nil
}

// AverageHours returns the per-module estimate used when a block states no
// usable time. It is always positive and never above HoursPerWeek.
func (c Context) AverageHours() float64 {
	avg := 0.0
	if c.ExpectedModules > 0 && c.TotalHours > 0 {
		avg = math.Round(c.TotalHours / float64(c.ExpectedModules))
	}
	if avg <= 0 {
		avg = defaultFallbackHours
	}
	return c.clamp(avg)
}

func (c Context) clamp(hours float64) float64 {
	if c.HoursPerWeek > 0 && hours > c.HoursPerWeek {
		return c.HoursPerWeek
	}
	return hours
}

// workingSetCap bounds how many accepted blocks survive before truncation.
func (c Context) workingSetCap() int {
	return int(math.Floor(float64(c.ExpectedModules) * 1.5))
}
