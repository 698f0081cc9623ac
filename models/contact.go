package models

import (
	"time"
)

// ContactTypePerson and ContactTypeOrganization are the two contact_type values.
const (
	ContactTypePerson       = "P"
	ContactTypeOrganization = "O"
)

type Contact struct {
	ID          int64      `json:"id" db:"id"`
	OrgID       int64      `json:"org_id" db:"org_id"`
	ContactType string     `json:"contact_type" db:"contact_type"` // P = person, O = organization
	Name        string     `json:"name" db:"name"`
	JobTitle    *string    `json:"job_title" db:"job_title"`
	CompanyName *string    `json:"company_name" db:"company_name"` // parent organization by name, not a FK
	Address     *string    `json:"address" db:"address"`
	City        *string    `json:"city" db:"city"`
	State       *string    `json:"state" db:"state"`
	Country     *string    `json:"country" db:"country"`
	PostalCode  *string    `json:"postal_code" db:"postal_code"`
	Notes       *string    `json:"notes" db:"notes"`
	Avatar      *string    `json:"avatar" db:"avatar"`
	PhotoURL    *string    `json:"photo_url" db:"photo_url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	LastContact *time.Time `json:"last_contact" db:"last_contact"`
}

func (Contact) TableName() string {
	return "contacts"
}

func (Contact) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS contacts (
		id BIGINT NOT NULL AUTO_INCREMENT,
		org_id BIGINT NOT NULL,
		contact_type CHAR(1) NOT NULL DEFAULT 'P',
		name VARCHAR(255) NOT NULL,
		job_title VARCHAR(255),
		company_name VARCHAR(255),
		address VARCHAR(500),
		city VARCHAR(100),
		state VARCHAR(100),
		country VARCHAR(100),
		postal_code VARCHAR(20),
		notes TEXT,
		avatar VARCHAR(500),
		photo_url VARCHAR(500),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		last_contact TIMESTAMP NULL,
		PRIMARY KEY (id, org_id),
		INDEX idx_contacts_org_id (org_id),
		INDEX idx_contacts_name (name),
		INDEX idx_contacts_company_name (company_name),
		INDEX idx_contacts_contact_type (contact_type)
	)`
}
