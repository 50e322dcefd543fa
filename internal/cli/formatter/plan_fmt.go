package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/planparse"
	"github.com/alexanderramin/learnpath/internal/service"
	"github.com/charmbracelet/lipgloss"
)

const progressBarWidth = 20

// FormatPlanList renders plans newest first inside a bordered box.
func FormatPlanList(plans []*domain.LearningPlan, now time.Time) string {
	if len(plans) == 0 {
		return RenderBox("Learning Plans", Dim("No plans yet. Create one with: learnpath plan create"))
	}
	headers := []string{"ID", "LEARNER", "GOALS", "DURATION", "STATUS", "CREATED"}
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, []string{
			Dim(p.DisplayID()),
			p.LearnerID,
			Bold(Truncate(p.Goals, 40)),
			fmt.Sprintf("%gmo × %s/wk", p.Months, FormatHours(p.HoursPerWeek)),
			PlanStatusPill(p.Status),
			HumanTimestamp(p.CreatedAt, now),
		})
	}
	return RenderBox("Learning Plans", RenderTable(headers, rows))
}

// FormatPlanDetail renders plan metadata, progress and its module table.
func FormatPlanDetail(plan *domain.LearningPlan, items []*domain.LearningItem) string {
	var b strings.Builder
	b.WriteString(Header("Plan " + plan.DisplayID()))
	b.WriteString("\n")

	field := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", StyleDim.Render(fmt.Sprintf("%-10s", label)), value)
	}
	field("Learner", plan.LearnerID)
	field("Goals", plan.Goals)
	field("Duration", fmt.Sprintf("%g months at %s per week", plan.Months, FormatHours(plan.HoursPerWeek)))
	field("Status", PlanStatusPill(plan.Status))
	if plan.ProjectRelated {
		field("Project", plan.ProjectName)
	}
	if len(plan.TechStacks) > 0 {
		stacks := make([]string, 0, len(plan.TechStacks))
		for _, ts := range plan.TechStacks {
			stacks = append(stacks, fmt.Sprintf("%s (%s)", ts.Name, ts.Proficiency))
		}
		field("Stacks", strings.Join(stacks, ", "))
	}
	if plan.ApprovedAt != nil {
		field("Approved", fmt.Sprintf("by %s on %s, %d points", plan.ApprovedBy, plan.ApprovedAt.Format("Jan 2, 2006"), plan.RedeemablePoints))
	}
	if plan.AdminNotes != "" {
		field("Notes", plan.AdminNotes)
	}
	if len(items) > 0 {
		field("Progress", RenderProgress(domain.ProgressPct(items), progressBarWidth))
	}

	b.WriteString("\n")
	b.WriteString(FormatItems(items))
	return b.String()
}

// FormatItems renders the module table of a stored plan.
func FormatItems(items []*domain.LearningItem) string {
	if len(items) == 0 {
		return Dim("No modules.")
	}
	headers := []string{"#", "MODULE", "HOURS", "PREREQUISITES", "STATUS"}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		title := it.Title
		if it.Placeholder {
			title = Dim(title)
		}
		locked := !domain.CanStart(items, it.OrderIndex)
		rows = append(rows, []string{
			fmt.Sprint(it.OrderIndex),
			title,
			FormatHours(it.EstimatedHours),
			OrDash(Truncate(it.Prerequisites, 30)),
			ItemStatusPill(it.Status, locked),
		})
	}
	return RenderTable(headers, rows, 0, 2) +
		Dim(fmt.Sprintf("%d modules, %s total", len(items), FormatHours(domain.TotalHours(items))))
}

// FormatModules renders parser output for a preview, with the budget the
// parser worked against.
func FormatModules(mods []planparse.Module, ctx planparse.Context) string {
	headers := []string{"#", "MODULE", "HOURS", "PREREQUISITES", "OBJECTIVES"}
	rows := make([][]string, 0, len(mods))
	total := 0.0
	placeholders := 0
	for _, m := range mods {
		total += m.EstimatedHours
		title := m.Title
		if m.Placeholder {
			placeholders++
			title = Dim(title + " (placeholder)")
		}
		rows = append(rows, []string{
			fmt.Sprint(m.OrderIndex),
			title,
			FormatHours(m.EstimatedHours),
			OrDash(Truncate(m.Prerequisites, 24)),
			Truncate(m.Objectives, 48),
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable(headers, rows, 0, 2))
	fmt.Fprintf(&b, "%s\n", Dim(fmt.Sprintf(
		"%d of %d expected modules, %d placeholder, %s of %s budget",
		len(mods), ctx.ExpectedModules, placeholders, FormatHours(total), FormatHours(ctx.TotalHours))))
	return RenderBox("Plan Preview", strings.TrimRight(b.String(), "\n"))
}

// FormatMessages renders a plan's revision conversation oldest first.
func FormatMessages(msgs []*domain.ChatMessage, now time.Time) string {
	if len(msgs) == 0 {
		return Dim("No messages.")
	}
	var b strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&b, "%s %s\n", SenderBadge(m.Sender), Dim(HumanTimestamp(m.CreatedAt, now)))
		body := lipgloss.NewStyle().PaddingLeft(2).Render(m.Body)
		b.WriteString(body)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatProgress renders a learner's position in a plan.
func FormatProgress(p *service.Progress) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Bold(Truncate(p.Plan.Goals, 50)), PlanStatusPill(p.Plan.Status))
	fmt.Fprintf(&b, "%s  %d/%d modules, %s of %s\n",
		RenderProgress(p.Pct, progressBarWidth), p.Completed, p.Total,
		FormatHours(p.HoursCompleted), FormatHours(p.HoursTotal))
	if p.Pace.DaysLeft != nil && p.Completed < p.Total {
		fmt.Fprintf(&b, "%s  %s\n", PacePill(p.Pace.Level), Dim(paceDetail(p)))
	}
	if p.Next != nil {
		fmt.Fprintf(&b, "%s %s", Dim("Next:"), p.Next.Title)
	} else if p.Total > 0 {
		b.WriteString(StyleGreen.Render("All modules completed."))
		if p.FinalQuizDue {
			fmt.Fprintf(&b, "\n%s learnpath quiz final generate %s", Dim("Finish the plan with:"), p.Plan.DisplayID())
		}
	}
	return RenderBox("Progress", strings.TrimRight(b.String(), "\n"))
}

func paceDetail(p *service.Progress) string {
	days := *p.Pace.DaysLeft
	if days <= 0 {
		return fmt.Sprintf("%s left, %d days past the planned end", FormatHours(p.Pace.RemainingHours), -days)
	}
	return fmt.Sprintf("%d days left, %s/week needed of %s planned",
		days, FormatHours(math.Round(p.Pace.RequiredWeeklyHours*10)/10), FormatHours(p.Plan.HoursPerWeek))
}

// FormatItemContent renders a module heading followed by its material.
func FormatItemContent(it *domain.LearningItem) string {
	var b strings.Builder
	b.WriteString(Header(it.Title))
	b.WriteString("\n")
	if it.Objectives != "" {
		fmt.Fprintf(&b, "%s %s\n", Dim("Objectives:"), it.Objectives)
	}
	fmt.Fprintf(&b, "%s %s\n\n", Dim("Estimated time:"), FormatHours(it.EstimatedHours))
	if strings.TrimSpace(it.Content) == "" {
		b.WriteString(Dim("No content yet. Generate it with: learnpath item content"))
	} else {
		b.WriteString(it.Content)
	}
	return b.String()
}
