package domain

type PlanStatus string

const (
	PlanPendingApproval PlanStatus = "pending_approval"
	PlanApproved        PlanStatus = "approved"
	PlanInProgress      PlanStatus = "in_progress"
	PlanCompleted       PlanStatus = "completed"
	PlanRejected        PlanStatus = "rejected"
)

// ValidPlanStatuses is the canonical set of accepted plan status strings.
var ValidPlanStatuses = map[PlanStatus]bool{
	PlanPendingApproval: true,
	PlanApproved:        true,
	PlanInProgress:      true,
	PlanCompleted:       true,
	PlanRejected:        true,
}

type ItemStatus string

const (
	ItemNotStarted ItemStatus = "not_started"
	ItemInProgress ItemStatus = "in_progress"
	ItemCompleted  ItemStatus = "completed"
)

type SenderRole string

const (
	SenderLearner SenderRole = "learner"
	SenderAdmin   SenderRole = "admin"
	SenderAI      SenderRole = "ai"
)

// AssessmentKind says what an assessment covers: one module, or the whole
// plan once every module is done.
type AssessmentKind string

const (
	AssessmentModule AssessmentKind = "module"
	AssessmentFinal  AssessmentKind = "final"
)

type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "Beginner"
	ProficiencyIntermediate Proficiency = "Intermediate"
	ProficiencyAdvanced     Proficiency = "Advanced"
	ProficiencyExpert       Proficiency = "Expert"
)

// ParseProficiency matches s case-insensitively, defaulting to Beginner.
func ParseProficiency(s string) Proficiency {
	for _, p := range []Proficiency{ProficiencyBeginner, ProficiencyIntermediate, ProficiencyAdvanced, ProficiencyExpert} {
		if equalFold(string(p), s) {
			return p
		}
	}
	return ProficiencyBeginner
}

// Seasoned reports whether basics should be skipped for this level.
func (p Proficiency) Seasoned() bool {
	return p == ProficiencyAdvanced || p == ProficiencyExpert
}

// RiskLevel rates whether a learner will finish a plan within its duration.
type RiskLevel string

const (
	RiskOnTrack  RiskLevel = "on_track"
	RiskAtRisk   RiskLevel = "at_risk"
	RiskCritical RiskLevel = "critical"
)
