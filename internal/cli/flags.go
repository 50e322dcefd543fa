package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/spf13/pflag"
)

// stackFlag collects repeated --stack NAME[:LEVEL[:YEARS]] values.
type stackFlag struct {
	stacks []domain.TechStack
}

var _ pflag.Value = (*stackFlag)(nil)

func (f *stackFlag) String() string {
	parts := make([]string, 0, len(f.stacks))
	for _, s := range f.stacks {
		parts = append(parts, fmt.Sprintf("%s:%s:%s", s.Name, s.Proficiency,
			strconv.FormatFloat(s.YearsOfExperience, 'f', -1, 64)))
	}
	return strings.Join(parts, ",")
}

// Set accepts one stack or several separated by commas.
func (f *stackFlag) Set(value string) error {
	for _, raw := range strings.Split(value, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		ts, err := parseStack(raw)
		if err != nil {
			return err
		}
		f.stacks = append(f.stacks, ts)
	}
	return nil
}

func (f *stackFlag) Type() string { return "stack" }

// parseStack reads NAME[:LEVEL[:YEARS]]. The level defaults to Beginner.
func parseStack(raw string) (domain.TechStack, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) > 3 {
		return domain.TechStack{}, fmt.Errorf("invalid stack %q: want NAME[:LEVEL[:YEARS]]", raw)
	}
	ts := domain.TechStack{Name: strings.TrimSpace(parts[0]), Proficiency: domain.ProficiencyBeginner}
	if ts.Name == "" {
		return domain.TechStack{}, fmt.Errorf("invalid stack %q: name is empty", raw)
	}
	if len(parts) > 1 {
		level := strings.TrimSpace(parts[1])
		p := domain.ParseProficiency(level)
		if !strings.EqualFold(string(p), level) {
			return domain.TechStack{}, fmt.Errorf("invalid level %q for %s: want Beginner, Intermediate, Advanced or Expert", level, ts.Name)
		}
		ts.Proficiency = p
	}
	if len(parts) > 2 {
		years, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil || years < 0 {
			return domain.TechStack{}, fmt.Errorf("invalid years %q for %s", parts[2], ts.Name)
		}
		ts.YearsOfExperience = years
	}
	return ts, nil
}

// profileFlags binds the optional learner profile used to tailor prompts.
type profileFlags struct {
	role        string
	experience  float64
	strengths   string
	improvement string
}

func (p *profileFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&p.role, "role", "", "Learner's job role")
	fs.Float64Var(&p.experience, "experience", 0, "Learner's total years of experience")
	fs.StringVar(&p.strengths, "strengths", "", "Learner's strengths")
	fs.StringVar(&p.improvement, "improvement-areas", "", "Areas the learner wants to improve")
}

func (p *profileFlags) value() domain.LearnerProfile {
	return domain.LearnerProfile{
		Role:             p.role,
		TotalExperience:  p.experience,
		Strengths:        p.strengths,
		ImprovementAreas: p.improvement,
	}
}
