package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/learnpath/internal/cli/formatter"
	"github.com/alexanderramin/learnpath/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// learnpathHuhTheme matches huh forms to the formatter palette.
func learnpathHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// planRequestInput holds the raw strings a plan request form edits.
type planRequestInput struct {
	LearnerID    string
	Goals        string
	Months       string
	HoursPerWeek string
	Project      string
	Stacks       string
}

func newPlanRequestInput(req service.SubmitPlanRequest) *planRequestInput {
	in := &planRequestInput{
		LearnerID: req.LearnerID,
		Goals:     req.Goals,
		Project:   req.ProjectName,
	}
	if req.Months > 0 {
		in.Months = strconv.FormatFloat(req.Months, 'f', -1, 64)
	}
	if req.HoursPerWeek > 0 {
		in.HoursPerWeek = strconv.FormatFloat(req.HoursPerWeek, 'f', -1, 64)
	}
	sf := stackFlag{stacks: req.TechStacks}
	in.Stacks = sf.String()
	return in
}

// apply copies the edited values back onto req.
func (in *planRequestInput) apply(req *service.SubmitPlanRequest) error {
	req.LearnerID = strings.TrimSpace(in.LearnerID)
	req.Goals = strings.TrimSpace(in.Goals)

	months, err := strconv.ParseFloat(strings.TrimSpace(in.Months), 64)
	if err != nil {
		return fmt.Errorf("invalid months %q", in.Months)
	}
	hours, err := strconv.ParseFloat(strings.TrimSpace(in.HoursPerWeek), 64)
	if err != nil {
		return fmt.Errorf("invalid hours per week %q", in.HoursPerWeek)
	}
	req.Months, req.HoursPerWeek = months, hours

	req.ProjectName = strings.TrimSpace(in.Project)
	req.ProjectRelated = req.ProjectName != ""

	var sf stackFlag
	if err := sf.Set(in.Stacks); err != nil {
		return err
	}
	req.TechStacks = sf.stacks
	return nil
}

// planRequestForm collects a plan request interactively.
func planRequestForm(in *planRequestInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Learner ID").
				Value(&in.LearnerID).
				Validate(validateRequired("learner id")),
			huh.NewText().
				Title("Learning goals").
				Description("What should the learner be able to do at the end?").
				Value(&in.Goals).
				Validate(validateRequired("goals")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Duration (months)").
				Placeholder("3").
				Value(&in.Months).
				Validate(validatePositiveNumber),
			huh.NewInput().
				Title("Hours per week").
				Placeholder("10").
				Value(&in.HoursPerWeek).
				Validate(validatePositiveNumber),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Related project (blank for none)").
				Value(&in.Project),
			huh.NewInput().
				Title("Tech stacks").
				Description("NAME:LEVEL:YEARS, comma separated").
				Placeholder("Go:Intermediate:2, SQL:Beginner").
				Value(&in.Stacks).
				Validate(validateStacks),
		),
	).WithTheme(learnpathHuhTheme()).WithShowHelp(false)
}

func validateRequired(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func validatePositiveNumber(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func validateStacks(s string) error {
	var sf stackFlag
	return sf.Set(s)
}
