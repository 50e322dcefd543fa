package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/service"
)

// optionLabel maps an option index to its letter.
func optionLabel(i int) string {
	return string(rune('A' + i))
}

// FormatQuiz lists the questions of an assessment with lettered options.
// Correct answers are not shown.
func FormatQuiz(a *domain.Assessment) string {
	var b strings.Builder
	for i, q := range a.Questions {
		fmt.Fprintf(&b, "%s %s\n", StyleHeader.Render(fmt.Sprintf("%d.", i+1)), Bold(q.Question))
		for j, opt := range q.Options {
			fmt.Fprintf(&b, "   %s %s\n", StyleBlue.Render(optionLabel(j)+")"), opt)
		}
		if i < len(a.Questions)-1 {
			b.WriteString("\n")
		}
	}
	title := "Quiz"
	if a.Kind == domain.AssessmentFinal {
		title = "Final Quiz"
	}
	return RenderBox(fmt.Sprintf("%s · %d questions", title, len(a.Questions)), strings.TrimRight(b.String(), "\n"))
}

// FormatQuizResult renders the score, pass state and per-question review.
func FormatQuizResult(r *service.SubmitResult) string {
	var b strings.Builder
	verdict := StyleRed.Render(fmt.Sprintf("✖ Not passed (pass mark %d%%)", r.PassPct))
	if r.Passed {
		verdict = StyleGreen.Render("✔ Passed")
	}
	fmt.Fprintf(&b, "%s %s\n", Bold(fmt.Sprintf("Score: %d%%", r.Score)), verdict)
	if r.ItemCompleted {
		b.WriteString(Dim("Module marked as completed.") + "\n")
	}
	if r.PlanCompleted {
		b.WriteString(StyleGreen.Render("Learning plan completed.") + "\n")
	}

	a := r.Assessment
	for i, q := range a.Questions {
		given := ""
		if i < len(a.Answers) {
			given = a.Answers[i]
		}
		got, ok := q.OptionIndex(given)
		want, _ := q.OptionIndex(q.CorrectAnswer)
		mark := StyleRed.Render("✖")
		if ok && got == want {
			mark = StyleGreen.Render("✔")
		}
		fmt.Fprintf(&b, "\n%s %d. %s\n", mark, i+1, q.Question)
		fmt.Fprintf(&b, "   %s %s) %s\n", Dim("answer:"), optionLabel(want), q.CorrectAnswer)
		if q.Explanation != "" {
			fmt.Fprintf(&b, "   %s\n", Dim(q.Explanation))
		}
	}
	return RenderBox("Quiz Result", strings.TrimRight(b.String(), "\n"))
}
