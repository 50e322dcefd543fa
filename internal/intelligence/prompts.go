package intelligence

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexanderramin/learnpath/internal/domain"
)

const planSystemPrompt = `You are an expert learning and development consultant. Generate structured, actionable learning plans in a clear, organized format.`

const improveSystemPrompt = `You are an expert learning and development consultant. Help improve learning plans based on user feedback.`

const contentSystemPrompt = `You are an expert instructor creating learning content for software engineers.`

const assessmentSystemPrompt = `You are an expert assessment creator for software engineering education.
You must output ONLY a JSON object. No prose before or after it.`

// quizContentLimit bounds how much module content is quoted back to the
// model when asking for questions.
const quizContentLimit = 2000

// num renders a float without trailing zeros: 1.5 stays 1.5, 2.0 becomes 2.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDefault(s, fallback string) string {
	return domain.CoalesceStr(strings.TrimSpace(s), fallback)
}

// buildPlanPrompt renders the plan request. The module format section must
// stay in step with what planparse accepts.
func buildPlanPrompt(req PlanRequest) string {
	modules := int(math.Ceil(req.Months * 4))
	total := req.Months * 4 * req.HoursPerWeek
	perModule := 0.0
	if modules > 0 {
		perModule = math.Round(total / float64(modules))
	}

	var b strings.Builder
	b.WriteString("Generate a comprehensive, structured learning plan for a software engineer based on the following requirements:\n\n")
	fmt.Fprintf(&b, "Learning Goals/Objectives: %s\n", req.Goals)
	fmt.Fprintf(&b, "Hours per week: %s\n", num(req.HoursPerWeek))
	fmt.Fprintf(&b, "Duration: %s months\n", num(req.Months))
	if req.ProjectRelated {
		fmt.Fprintf(&b, "Related to existing project: Yes - %s\n", req.ProjectName)
	} else {
		b.WriteString("Related to existing project: No\n")
	}

	b.WriteString("\nTech Stacks and Learner Proficiency:\n")
	if len(req.TechStacks) == 0 {
		b.WriteString("No tech stacks specified\n")
	}
	for _, ts := range req.TechStacks {
		fmt.Fprintf(&b, "- %s: %s level (%s years of experience)\n", ts.Name, ts.Proficiency, num(ts.YearsOfExperience))
	}

	p := req.Profile
	b.WriteString("\nUser Profile Context:\n")
	fmt.Fprintf(&b, "- Role: %s\n", orDefault(p.Role, "Software Engineer"))
	if p.TotalExperience > 0 {
		fmt.Fprintf(&b, "- Total Experience: %s years\n", num(p.TotalExperience))
	} else {
		b.WriteString("- Total Experience: Not specified\n")
	}
	fmt.Fprintf(&b, "- Strengths: %s\n", orDefault(p.Strengths, "Not specified"))
	fmt.Fprintf(&b, "- Improvement Areas: %s\n", orDefault(p.ImprovementAreas, "Not specified"))

	b.WriteString("\nIMPORTANT TIME CONSTRAINTS:\n")
	fmt.Fprintf(&b, "- Total duration: %s months\n", num(req.Months))
	fmt.Fprintf(&b, "- Hours per week: %s hours\n", num(req.HoursPerWeek))
	fmt.Fprintf(&b, "- Total available hours: %s hours\n", num(total))
	fmt.Fprintf(&b, "- Average hours per module: %s hours\n", num(perModule))

	fmt.Fprintf(&b, "\nBreak the learning into approximately %d modules (one per week). ", modules)
	fmt.Fprintf(&b, "Each module's estimated time must NOT exceed %s hours.\n", num(req.HoursPerWeek))

	b.WriteString("\nRespect the learner's proficiency levels:\n")
	b.WriteString(proficiencyGuidance(req.TechStacks))

	b.WriteString(`
Format each module EXACTLY as follows (this format is CRITICAL for parsing):

**Module 1: [Clear, Descriptive Title]**

Objectives: [Specific learning objectives]

Estimated Time: [X] hours

Prerequisites: [List any prerequisites or "None" if none]

[Optional: brief description]

CRITICAL FORMATTING RULES:
- Start each module with "**Module X:**" followed by the title on the same line
- Use "Objectives:", "Estimated Time:" and "Prerequisites:" as field labels
- Give the estimated time as a whole number of hours
- Leave a blank line between modules
- Use clear, descriptive titles, never generic ones like "Learning Objectives"
`)
	fmt.Fprintf(&b, "- DO NOT create more than %d modules\n", modules)
	b.WriteString("\nReturn ONLY the modules in the exact format above. Do not add extra text before or after the modules.")
	return b.String()
}

func proficiencyGuidance(stacks []domain.TechStack) string {
	if len(stacks) == 0 {
		return "- Assume beginner level for all tech stacks.\n"
	}
	return `- For tech stacks where the learner is "Advanced" or "Expert": DO NOT include beginner-level content. Focus on advanced topics, optimization and architecture.
- For tech stacks where the learner is "Intermediate": skip basic fundamentals.
- For tech stacks where the learner is "Beginner": start from basics and build up progressively.
`
}

func buildImprovePrompt(currentPlan, request string) string {
	return fmt.Sprintf(`You are helping improve a learning plan. Here is the current plan:

%s

The user wants to make the following improvements or adjustments:

%s

Please provide an improved version of the learning plan that incorporates these changes while maintaining the overall structure and learning objectives.
Keep every module in the "**Module X: Title**" format with "Objectives:", "Estimated Time:" and "Prerequisites:" fields.`,
		strings.TrimSpace(currentPlan), strings.TrimSpace(request))
}

// levelInstructions returns the difficulty guidance shared by content and
// quiz prompts.
func levelInstructions(p domain.Proficiency) string {
	switch p {
	case domain.ProficiencyAdvanced, domain.ProficiencyExpert:
		return `- DO NOT include basic concepts, syntax explanations or beginner tutorials
- Focus on advanced patterns, architecture, optimization and production practice
- Include complex real-world scenarios, edge cases and performance considerations`
	case domain.ProficiencyIntermediate:
		return `- Skip basic syntax and fundamentals
- Focus on intermediate to advanced concepts with practical examples
- Cover best practices and common patterns`
	default:
		return `- Start with fundamentals
- Build up from basics progressively
- Provide practical examples suitable for beginners`
	}
}

func buildContentPrompt(item *domain.LearningItem, lc LearnerContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Learning Item: %s\n", item.Title)
	fmt.Fprintf(&b, "Learning Objectives: %s\n", orDefault(item.Objectives, "Not specified"))
	fmt.Fprintf(&b, "Tech Stack: %s\n", orDefault(lc.TechStack, "Not specified"))
	fmt.Fprintf(&b, "Estimated Time: %s hours\n", num(item.EstimatedHours))
	b.WriteString("\nUser Context:\n")
	fmt.Fprintf(&b, "- Overall Experience Level: %s\n", orDefault(lc.ExperienceLevel, "Intermediate"))
	fmt.Fprintf(&b, "- Tech Stack Proficiency: %s\n", lc.proficiency())
	fmt.Fprintf(&b, "- Strengths: %s\n", orDefault(lc.Strengths, "Not specified"))

	b.WriteString("\nINSTRUCTIONS FOR THIS PROFICIENCY LEVEL:\n")
	b.WriteString(levelInstructions(lc.proficiency()))
	b.WriteString(`

Create learning content that includes:
1. Introduction and overview
2. Core concepts
3. Practical examples and code snippets
4. Best practices
5. Common pitfalls to avoid
6. Real-world applications

Use markdown with ## for main sections and ### for subsections. Link official documentation and repositories with full URLs.`)
	return b.String()
}

func buildQuizPrompt(item *domain.LearningItem, content string, p domain.Proficiency) string {
	if p == "" {
		p = domain.ProficiencyBeginner
	}
	excerpt := []rune(content)
	quoted := string(excerpt)
	if len(excerpt) > quizContentLimit {
		quoted = string(excerpt[:quizContentLimit]) + "..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Learning Item: %s\n", item.Title)
	fmt.Fprintf(&b, "Learning Objectives: %s\n", orDefault(item.Objectives, "Not specified"))
	fmt.Fprintf(&b, "Learning Content: %s\n", orDefault(quoted, "Not available"))
	fmt.Fprintf(&b, "Learner Proficiency Level: %s\n", p)
	fmt.Fprintf(&b, `
REQUIREMENTS:
1. Create ONLY multiple choice questions
2. Generate %d-%d questions specifically about "%s"
3. Each question has exactly %d options with exactly ONE correct answer
4. Include a short explanation for each answer
5. Difficulty:
%s

Return JSON with this EXACT structure:
{
  "questions": [
    {
      "question": "question text",
      "options": ["option1", "option2", "option3", "option4"],
      "correctAnswer": "option1",
      "explanation": "why this is correct"
    }
  ]
}

The "correctAnswer" must match one of the options exactly.`,
		minQuestions, maxQuestions, item.Title, domain.OptionsPerQuestion, levelInstructions(p))
	return b.String()
}

// finalObjectivesLimit bounds the objectives quoted per module in the final
// quiz prompt.
const finalObjectivesLimit = 100

func buildFinalQuizPrompt(plan *domain.LearningPlan, completed []*domain.LearningItem) string {
	total := plan.Months * 4 * plan.HoursPerWeek

	stacks := make([]string, 0, len(plan.TechStacks))
	for _, ts := range plan.TechStacks {
		stacks = append(stacks, ts.Name)
	}
	project := "No"
	if plan.ProjectRelated {
		project = "Yes - " + orDefault(plan.ProjectName, "N/A")
	}

	var b strings.Builder
	b.WriteString("You are creating a comprehensive final assessment for a completed learning plan.\n\n")
	b.WriteString("Learning Plan Details:\n")
	fmt.Fprintf(&b, "- Goals: %s\n", plan.Goals)
	fmt.Fprintf(&b, "- Duration: %s months\n", num(plan.Months))
	fmt.Fprintf(&b, "- Hours per week: %s hours\n", num(plan.HoursPerWeek))
	fmt.Fprintf(&b, "- Total learning hours: %s hours\n", num(total))
	fmt.Fprintf(&b, "- Tech Stacks: %s\n", orDefault(strings.Join(stacks, ", "), "Not specified"))
	fmt.Fprintf(&b, "- Project Related: %s\n", project)

	fmt.Fprintf(&b, "\nCompleted Learning Items (%d items):\n", len(completed))
	for i, it := range completed {
		line := fmt.Sprintf("%d. %s", i+1, it.Title)
		if obj := []rune(strings.TrimSpace(it.Objectives)); len(obj) > 0 {
			if len(obj) > finalObjectivesLimit {
				obj = obj[:finalObjectivesLimit]
			}
			line += " - " + string(obj)
		}
		b.WriteString(line + "\n")
	}

	fmt.Fprintf(&b, `
REQUIREMENTS:
1. Test understanding across ALL completed learning items
2. Create ONLY multiple choice questions, %d-%d in total
3. Each question has exactly %d options with exactly ONE correct answer
4. Cover both theory and practical application
5. Questions should be challenging but fair for %s hours of study
6. Include a short explanation for each answer

Return JSON with this EXACT structure:
{
  "questions": [
    {
      "question": "question text",
      "options": ["option1", "option2", "option3", "option4"],
      "correctAnswer": "option1",
      "explanation": "why this is correct"
    }
  ]
}

The "correctAnswer" must match one of the options exactly.`,
		minFinalQuestions, maxFinalQuestions, domain.OptionsPerQuestion, num(total))
	return b.String()
}
