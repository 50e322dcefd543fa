package service

import "errors"

var (
	// ErrPlanTextEmpty is returned when a plan has no text to derive modules from.
	ErrPlanTextEmpty = errors.New("plan text is empty")

	// ErrAmbiguousID is returned when an id prefix matches more than one plan.
	ErrAmbiguousID = errors.New("id prefix matches more than one plan")

	// ErrPlanNotLearnable is returned when progress is recorded on a plan
	// that has not been approved.
	ErrPlanNotLearnable = errors.New("plan is not approved for learning")

	// ErrModulesIncomplete is returned when the final quiz is requested
	// before every module is completed.
	ErrModulesIncomplete = errors.New("not every module is completed")
)
