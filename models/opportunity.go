package models

import (
	"time"
)

type Opportunity struct {
	ID            int64      `json:"id" db:"id"`
	OrgID         int64      `json:"org_id" db:"org_id"`
	ContactID     int64      `json:"contact_id" db:"contact_id"`
	Title         string     `json:"title" db:"title"`
	Amount        float64    `json:"amount" db:"amount"`
	Currency      string     `json:"currency" db:"currency"`
	StageTypeID   int        `json:"stage_type_id" db:"stage_type_id"`
	StatusTypeID  int        `json:"status_type_id" db:"status_type_id"`
	ExpectedClose *time.Time `json:"expected_close" db:"expected_close"`
	Notes         *string    `json:"notes" db:"notes"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// StageLabels maps stage_type_id to its display label.
var StageLabels = map[int]string{
	1: "Lead",
	2: "Qualified",
	3: "Proposal",
	4: "Negotiation",
	5: "Closing",
}

// StatusLabels maps status_type_id to its display label.
var StatusLabels = map[int]string{
	1: "Open",
	2: "Won",
	3: "Lost",
}

// StageLabel returns the label for a stage id, or "Unknown".
func StageLabel(id int) string {
	if label, ok := StageLabels[id]; ok {
		return label
	}
	return "Unknown"
}

// StatusLabel returns the label for a status id, or "Unknown".
func StatusLabel(id int) string {
	if label, ok := StatusLabels[id]; ok {
		return label
	}
	return "Unknown"
}

func (Opportunity) TableName() string {
	return "opportunities"
}

func (Opportunity) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS opportunities (
		id BIGINT NOT NULL AUTO_INCREMENT,
		org_id BIGINT NOT NULL,
		contact_id BIGINT NOT NULL,
		title VARCHAR(255) NOT NULL,
		amount DECIMAL(14,2) NOT NULL DEFAULT 0,
		currency VARCHAR(3) NOT NULL DEFAULT 'USD',
		stage_type_id INT NOT NULL DEFAULT 1,
		status_type_id INT NOT NULL DEFAULT 1,
		expected_close DATE NULL,
		notes TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id, org_id),
		INDEX idx_opportunities_org_id (org_id),
		INDEX idx_opportunities_contact (contact_id, org_id),
		INDEX idx_opportunities_stage (stage_type_id),
		INDEX idx_opportunities_status (status_type_id)
	)`
}
