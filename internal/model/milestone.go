package model

import (
	"time"
)

type Milestone struct {
	ID          string     `db:"id" json:"id"`
	GoalID      string     `db:"goal_id" json:"goal_id"`
	Title       string     `db:"title" json:"title"`
	TargetDate  *time.Time `db:"target_date" json:"target_date,omitempty"`
	OrderIndex  int        `db:"order_index" json:"order_index"`
	IsCompleted bool       `db:"is_completed" json:"is_completed"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

func (m *Milestone) Clone() *Milestone {
	dup := *m
	if m.TargetDate != nil {
		t := *m.TargetDate
		dup.TargetDate = &t
	}
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		dup.CompletedAt = &t
	}
	return &dup
}
