package models

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type TaskList struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"owner_id"`
	Title       string      `json:"title"`
	Description null.String `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`

	TaskCount      int    `json:"task_count"`
	CompletedCount int    `json:"completed_count"`
	Tasks          []Task `json:"tasks,omitempty"`
}

type TaskListInput struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`

	// Tasks are created together with the list. JSON bodies only.
	Tasks []TaskInput `json:"tasks" form:"-"`
}
