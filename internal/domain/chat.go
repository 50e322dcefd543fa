package domain

import "time"

// ChatMessage is one entry in the revision conversation attached to a plan.
type ChatMessage struct {
	ID        string
	PlanID    string
	Sender    SenderRole
	SenderID  string
	Body      string
	CreatedAt time.Time
}
