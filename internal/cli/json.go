package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/planparse"
)

type moduleJSON struct {
	OrderIndex     int     `json:"order_index"`
	Number         int     `json:"number,omitempty"`
	Title          string  `json:"title"`
	Objectives     string  `json:"objectives"`
	EstimatedHours float64 `json:"estimated_hours"`
	Prerequisites  string  `json:"prerequisites,omitempty"`
	Placeholder    bool    `json:"placeholder,omitempty"`
}

type previewJSON struct {
	ExpectedModules int          `json:"expected_modules"`
	TotalHours      float64      `json:"total_hours"`
	Modules         []moduleJSON `json:"modules"`
}

type itemJSON struct {
	ID             string     `json:"id"`
	OrderIndex     int        `json:"order_index"`
	Title          string     `json:"title"`
	Objectives     string     `json:"objectives"`
	EstimatedHours float64    `json:"estimated_hours"`
	Prerequisites  string     `json:"prerequisites,omitempty"`
	Placeholder    bool       `json:"placeholder,omitempty"`
	Status         string     `json:"status"`
	Locked         bool       `json:"locked"`
	HasContent     bool       `json:"has_content"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

type messageJSON struct {
	Sender    string    `json:"sender"`
	SenderID  string    `json:"sender_id,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type planJSON struct {
	ID               string             `json:"id"`
	LearnerID        string             `json:"learner_id"`
	Goals            string             `json:"goals"`
	Months           float64            `json:"months"`
	HoursPerWeek     float64            `json:"hours_per_week"`
	ProjectName      string             `json:"project_name,omitempty"`
	TechStacks       []domain.TechStack `json:"tech_stacks"`
	Status           string             `json:"status"`
	AdminNotes       string             `json:"admin_notes,omitempty"`
	ApprovedBy       string             `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time         `json:"approved_at,omitempty"`
	RedeemablePoints int                `json:"redeemable_points"`
	ProgressPct      int                `json:"progress_pct"`
	CreatedAt        time.Time          `json:"created_at"`
	Items            []itemJSON         `json:"items"`
	Messages         []messageJSON      `json:"messages,omitempty"`
}

func toPreviewJSON(mods []planparse.Module, ctx planparse.Context) previewJSON {
	out := previewJSON{
		ExpectedModules: ctx.ExpectedModules,
		TotalHours:      ctx.TotalHours,
		Modules:         make([]moduleJSON, 0, len(mods)),
	}
	for _, m := range mods {
		out.Modules = append(out.Modules, moduleJSON{
			OrderIndex:     m.OrderIndex,
			Number:         m.Number,
			Title:          m.Title,
			Objectives:     m.Objectives,
			EstimatedHours: m.EstimatedHours,
			Prerequisites:  m.Prerequisites,
			Placeholder:    m.Placeholder,
		})
	}
	return out
}

func toPlanJSON(p *domain.LearningPlan, items []*domain.LearningItem, msgs []*domain.ChatMessage) planJSON {
	out := planJSON{
		ID:               p.ID,
		LearnerID:        p.LearnerID,
		Goals:            p.Goals,
		Months:           p.Months,
		HoursPerWeek:     p.HoursPerWeek,
		ProjectName:      p.ProjectName,
		TechStacks:       p.TechStacks,
		Status:           string(p.Status),
		AdminNotes:       p.AdminNotes,
		ApprovedBy:       p.ApprovedBy,
		ApprovedAt:       p.ApprovedAt,
		RedeemablePoints: p.RedeemablePoints,
		ProgressPct:      domain.ProgressPct(items),
		CreatedAt:        p.CreatedAt,
		Items:            make([]itemJSON, 0, len(items)),
	}
	if out.TechStacks == nil {
		out.TechStacks = []domain.TechStack{}
	}
	for _, it := range items {
		out.Items = append(out.Items, itemJSON{
			ID:             it.ID,
			OrderIndex:     it.OrderIndex,
			Title:          it.Title,
			Objectives:     it.Objectives,
			EstimatedHours: it.EstimatedHours,
			Prerequisites:  it.Prerequisites,
			Placeholder:    it.Placeholder,
			Status:         string(it.Status),
			Locked:         it.Status == domain.ItemNotStarted && !domain.CanStart(items, it.OrderIndex),
			HasContent:     it.Content != "",
			StartedAt:      it.StartedAt,
			CompletedAt:    it.CompletedAt,
		})
	}
	for _, m := range msgs {
		out.Messages = append(out.Messages, messageJSON{
			Sender:    string(m.Sender),
			SenderID:  m.SenderID,
			Body:      m.Body,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
