package models

type ContactPhone struct {
	ID        int64  `json:"id" db:"id"`
	OrgID     int64  `json:"org_id" db:"org_id"`
	ContactID int64  `json:"contact_id" db:"contact_id"`
	Phone     string `json:"phone" db:"phone"`
	PhoneType string `json:"phone_type" db:"phone_type"` // mobile, work, home, fax
}

func (ContactPhone) TableName() string {
	return "contact_phones"
}

func (ContactPhone) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS contact_phones (
		id BIGINT NOT NULL AUTO_INCREMENT,
		org_id BIGINT NOT NULL,
		contact_id BIGINT NOT NULL,
		phone VARCHAR(50) NOT NULL,
		phone_type VARCHAR(20) NOT NULL DEFAULT 'mobile',
		PRIMARY KEY (id, org_id),
		INDEX idx_contact_phones_contact (contact_id, org_id),
		INDEX idx_contact_phones_phone (phone)
	)`
}
