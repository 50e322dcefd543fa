// Package pace rates a learner's progress through an approved plan against
// the duration they asked for.
package pace

import (
	"math"
	"time"

	"github.com/alexanderramin/learnpath/internal/domain"
)

// daysPerMonth is the mean Gregorian month length.
const daysPerMonth = 30.4375

// behindThresholdPct is how far progress may trail elapsed time before an
// otherwise affordable plan is flagged.
const behindThresholdPct = 25

type Input struct {
	Now time.Time
	// StartedAt is the approval time. Nil means the clock has not started.
	StartedAt      *time.Time
	Months         float64
	HoursPerWeek   float64
	HoursTotal     float64
	HoursCompleted float64
}

type Result struct {
	Level               domain.RiskLevel
	Deadline            *time.Time
	DaysLeft            *int
	RemainingHours      float64
	RequiredWeeklyHours float64
	// ElapsedPct is the share of the plan duration already used, 0-100.
	ElapsedPct float64
	// ProgressPct is completed hours over total hours, 0-100.
	ProgressPct float64
}

func Compute(in Input) Result {
	remaining := math.Max(0, in.HoursTotal-in.HoursCompleted)
	res := Result{RemainingHours: remaining}
	if in.HoursTotal > 0 {
		res.ProgressPct = math.Min(100, in.HoursCompleted/in.HoursTotal*100)
	}

	// No clock or nothing left means there is no deadline to miss.
	if in.StartedAt == nil || in.Months <= 0 || remaining == 0 {
		res.Level = domain.RiskOnTrack
		return res
	}

	span := time.Duration(in.Months * daysPerMonth * float64(24*time.Hour))
	deadline := in.StartedAt.Add(span)
	daysLeft := int(math.Ceil(deadline.Sub(in.Now).Hours() / 24))
	res.Deadline = &deadline
	res.DaysLeft = &daysLeft
	res.ElapsedPct = math.Min(100, math.Max(0, float64(in.Now.Sub(*in.StartedAt))/float64(span)*100))

	// Past the deadline with work left.
	if daysLeft <= 0 {
		res.Level = domain.RiskCritical
		res.RequiredWeeklyHours = remaining
		return res
	}

	weeksLeft := float64(daysLeft) / 7
	res.RequiredWeeklyHours = remaining / weeksLeft
	onPace := res.ProgressPct >= res.ElapsedPct

	ratio := res.RequiredWeeklyHours / math.Max(in.HoursPerWeek, 1)
	switch {
	case ratio > 1.5:
		if onPace {
			res.Level = domain.RiskAtRisk
		} else {
			res.Level = domain.RiskCritical
		}
	case ratio > 1.0:
		res.Level = domain.RiskAtRisk
	case res.ElapsedPct-res.ProgressPct > behindThresholdPct:
		res.Level = domain.RiskAtRisk
	default:
		res.Level = domain.RiskOnTrack
	}
	return res
}
