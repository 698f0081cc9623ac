package models

// ContactField is a declared extension-field definition. The numeric ids
// match the field-definition rows the legacy schema shipped with; query
// code goes through this registry and never mentions the ids directly.
type ContactField struct {
	ID   int
	Name string
}

var (
	FieldTaxNumber  = ContactField{ID: 28, Name: "VKN"}
	FieldTaxOffice  = ContactField{ID: 29, Name: "TAXOFFICE"}
	FieldNationalID = ContactField{ID: 30, Name: "TCKN"}
)

// KnownFields lists every registered extension field, in id order.
var KnownFields = []ContactField{FieldTaxNumber, FieldTaxOffice, FieldNationalID}

// FieldName resolves a field-definition id to its wire name.
func FieldName(id int) (string, bool) {
	for _, f := range KnownFields {
		if f.ID == id {
			return f.Name, true
		}
	}
	return "", false
}

// FieldByName resolves a wire name back to its definition.
func FieldByName(name string) (ContactField, bool) {
	for _, f := range KnownFields {
		if f.Name == name {
			return f, true
		}
	}
	return ContactField{}, false
}

type ContactFieldValue struct {
	FieldID   int    `json:"field_id" db:"field_id"`
	ContactID int64  `json:"contact_id" db:"contact_id"`
	OrgID     int64  `json:"org_id" db:"org_id"`
	Value     string `json:"value" db:"value"`
}

func (ContactFieldValue) TableName() string {
	return "contact_field_values"
}

func (ContactFieldValue) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS contact_field_values (
		field_id INT NOT NULL,
		contact_id BIGINT NOT NULL,
		org_id BIGINT NOT NULL,
		value VARCHAR(500) NOT NULL,
		PRIMARY KEY (field_id, contact_id, org_id),
		INDEX idx_contact_field_values_contact (contact_id, org_id)
	)`
}
