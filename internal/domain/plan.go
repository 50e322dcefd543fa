package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/learnpath/internal/planparse"
)

// TechStack is one technology the learner wants to cover, with their
// self-reported level in it.
type TechStack struct {
	Name              string      `json:"name"`
	Proficiency       Proficiency `json:"proficiency"`
	YearsOfExperience float64     `json:"years_of_experience"`
}

// LearnerProfile is optional context that sharpens generated plans.
type LearnerProfile struct {
	Role             string
	TotalExperience  float64
	Strengths        string
	ImprovementAreas string
}

type LearningPlan struct {
	ID             string
	LearnerID      string
	Goals          string
	Months         float64
	HoursPerWeek   float64
	ProjectRelated bool
	ProjectName    string
	TechStacks     []TechStack

	GeneratedText string
	AdjustedText  string

	Status           PlanStatus
	AdminNotes       string
	ApprovedBy       string
	ApprovedAt       *time.Time
	RedeemablePoints int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the learner-supplied request fields.
func (p *LearningPlan) Validate() error {
	if strings.TrimSpace(p.LearnerID) == "" {
		return fmt.Errorf("learner id is required")
	}
	if strings.TrimSpace(p.Goals) == "" {
		return fmt.Errorf("learning goals are required")
	}
	if p.Months <= 0 || math.IsNaN(p.Months) || math.IsInf(p.Months, 0) {
		return fmt.Errorf("duration must be a positive number of months, got %v", p.Months)
	}
	if p.HoursPerWeek <= 0 || p.HoursPerWeek > 168 || math.IsNaN(p.HoursPerWeek) {
		return fmt.Errorf("hours per week must be within (0, 168], got %v", p.HoursPerWeek)
	}
	if p.ProjectRelated && strings.TrimSpace(p.ProjectName) == "" {
		return fmt.Errorf("project name is required for a project-related plan")
	}
	return nil
}

// PlanText is the text modules are derived from: the adjusted text when an
// admin or the learner revised it, otherwise the generated text.
func (p *LearningPlan) PlanText() string {
	return CoalesceStr(p.AdjustedText, p.GeneratedText)
}

// ParseContext derives the parser parameters from the plan's duration and
// weekly budget.
func (p *LearningPlan) ParseContext() planparse.Context {
	return planparse.NewContext(p.Months, p.HoursPerWeek)
}

// DisplayID returns the first 8 characters of the ID.
func (p *LearningPlan) DisplayID() string {
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}

// CanRevise reports whether the plan text may still be changed.
func (p *LearningPlan) CanRevise() bool {
	return p.Status == PlanPendingApproval
}

func (p *LearningPlan) Approve(adminID string, points int, now time.Time) error {
	if p.Status != PlanPendingApproval {
		return p.transitionErr(PlanApproved)
	}
	if points < 0 {
		return fmt.Errorf("redeemable points must not be negative, got %d", points)
	}
	p.Status = PlanApproved
	p.ApprovedBy = adminID
	p.ApprovedAt = &now
	p.RedeemablePoints = points
	p.UpdatedAt = now
	return nil
}

func (p *LearningPlan) Reject(notes string, now time.Time) error {
	if p.Status != PlanPendingApproval {
		return p.transitionErr(PlanRejected)
	}
	p.Status = PlanRejected
	p.AdminNotes = notes
	p.UpdatedAt = now
	return nil
}

// Begin marks the plan in progress. It is a no-op when already started.
func (p *LearningPlan) Begin(now time.Time) error {
	switch p.Status {
	case PlanInProgress:
		return nil
	case PlanApproved:
		p.Status = PlanInProgress
		p.UpdatedAt = now
		return nil
	default:
		return p.transitionErr(PlanInProgress)
	}
}

func (p *LearningPlan) Complete(now time.Time) error {
	switch p.Status {
	case PlanCompleted:
		return nil
	case PlanApproved, PlanInProgress:
		p.Status = PlanCompleted
		p.UpdatedAt = now
		return nil
	default:
		return p.transitionErr(PlanCompleted)
	}
}

// Learnable reports whether items of this plan may be worked on.
func (p *LearningPlan) Learnable() bool {
	return p.Status == PlanApproved || p.Status == PlanInProgress || p.Status == PlanCompleted
}

func (p *LearningPlan) transitionErr(to PlanStatus) error {
	return fmt.Errorf("%w: plan %s cannot move from %s to %s", ErrInvalidTransition, p.DisplayID(), p.Status, to)
}
