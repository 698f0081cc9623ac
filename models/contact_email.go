package models

type ContactEmail struct {
	ID        int64  `json:"id" db:"id"`
	OrgID     int64  `json:"org_id" db:"org_id"`
	ContactID int64  `json:"contact_id" db:"contact_id"`
	Email     string `json:"email" db:"email"`
}

func (ContactEmail) TableName() string {
	return "contact_emails"
}

func (ContactEmail) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS contact_emails (
		id BIGINT NOT NULL AUTO_INCREMENT,
		org_id BIGINT NOT NULL,
		contact_id BIGINT NOT NULL,
		email VARCHAR(255) NOT NULL,
		PRIMARY KEY (id, org_id),
		INDEX idx_contact_emails_contact (contact_id, org_id),
		INDEX idx_contact_emails_email (email)
	)`
}
