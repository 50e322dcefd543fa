package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// OptionsPerQuestion is the fixed option count of a multiple-choice question.
const OptionsPerQuestion = 4

// Question is a multiple-choice question with exactly one correct option.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Normalize validates q and rewrites CorrectAnswer to the exact text of the
// option it designates. A bare letter A-D is accepted as an option label.
func (q *Question) Normalize() error {
	q.Question = strings.TrimSpace(q.Question)
	if q.Question == "" {
		return errors.New("question text is empty")
	}
	if len(q.Options) != OptionsPerQuestion {
		return fmt.Errorf("question %q has %d options, want %d", q.Question, len(q.Options), OptionsPerQuestion)
	}
	seen := make(map[string]bool, len(q.Options))
	for i, opt := range q.Options {
		opt = strings.TrimSpace(opt)
		key := strings.ToLower(opt)
		if opt == "" || seen[key] {
			return fmt.Errorf("question %q has an empty or duplicate option", q.Question)
		}
		seen[key] = true
		q.Options[i] = opt
	}
	idx, ok := q.OptionIndex(q.CorrectAnswer)
	if !ok {
		return fmt.Errorf("question %q: correct answer %q matches no option", q.Question, q.CorrectAnswer)
	}
	q.CorrectAnswer = q.Options[idx]
	return nil
}

// OptionIndex resolves an answer given as option text or as a letter label.
func (q *Question) OptionIndex(answer string) (int, bool) {
	answer = strings.TrimSpace(answer)
	for i, opt := range q.Options {
		if strings.EqualFold(opt, answer) {
			return i, true
		}
	}
	if len(answer) == 1 {
		if i := int(strings.ToUpper(answer)[0]) - 'A'; i >= 0 && i < len(q.Options) {
			return i, true
		}
	}
	return 0, false
}

// Assessment is a generated quiz and its latest attempt. Module quizzes
// belong to one learning item; the final quiz covers the plan and has no
// ItemID.
type Assessment struct {
	ID        string
	Kind      AssessmentKind
	ItemID    string
	PlanID    string
	Questions []Question

	Answers     []string
	Score       *int
	Passed      bool
	SubmittedAt *time.Time
	CreatedAt   time.Time
}

// Grade scores answers against the questions. The score is the rounded
// percentage of correct answers and passing means score >= passPct.
// Unanswered questions count as wrong.
func (a *Assessment) Grade(answers []string, passPct int, now time.Time) (int, bool, error) {
	if len(a.Questions) == 0 {
		return 0, false, errors.New("assessment has no questions")
	}
	if len(answers) > len(a.Questions) {
		return 0, false, fmt.Errorf("got %d answers for %d questions", len(answers), len(a.Questions))
	}

	correct := 0
	for i, ans := range answers {
		q := a.Questions[i]
		got, ok := q.OptionIndex(ans)
		want, _ := q.OptionIndex(q.CorrectAnswer)
		if ok && got == want {
			correct++
		}
	}
	score := int(math.Round(float64(correct) * 100 / float64(len(a.Questions))))
	passed := score >= passPct

	a.Answers = answers
	a.Score = &score
	a.Passed = passed
	a.SubmittedAt = &now
	return score, passed, nil
}
