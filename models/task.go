package models

import (
	"time"
)

type Task struct {
	ID             int64      `json:"id" db:"id"`
	OrgID          int64      `json:"org_id" db:"org_id"`
	Title          string     `json:"title" db:"title"`
	Description    *string    `json:"description" db:"description"`
	ContactID      *int64     `json:"contact_id" db:"contact_id"`
	OpportunityID  *int64     `json:"opportunity_id" db:"opportunity_id"`
	AssignedUserID *int64     `json:"assigned_user_id" db:"assigned_user_id"`
	Priority       string     `json:"priority" db:"priority"` // low, medium, high, urgent
	Status         string     `json:"status" db:"status"`     // pending, completed, cancelled, overdue
	DueDate        *time.Time `json:"due_date" db:"due_date"`
	CompletedAt    *time.Time `json:"completed_at" db:"completed_at"`
	ReminderSent   bool       `json:"reminder_sent" db:"reminder_sent"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

func (Task) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS tasks (
		id BIGINT NOT NULL AUTO_INCREMENT,
		org_id BIGINT NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		contact_id BIGINT NULL,
		opportunity_id BIGINT NULL,
		assigned_user_id BIGINT NULL,
		priority VARCHAR(10) NOT NULL DEFAULT 'medium',
		status VARCHAR(10) NOT NULL DEFAULT 'pending',
		due_date TIMESTAMP NULL,
		completed_at TIMESTAMP NULL,
		reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id, org_id),
		INDEX idx_tasks_org_id (org_id),
		INDEX idx_tasks_assigned_user (assigned_user_id, org_id),
		INDEX idx_tasks_status (status),
		INDEX idx_tasks_due_date (due_date)
	)`
}
