package database

import (
	"database/sql"
	"strings"

	"crm-server/models"
)

// ContactSearchParams carries the filters for a contact page request.
// Limit/Offset defaulting and clamping happens in SearchContacts, so
// handlers can pass query-string values through unchecked.
type ContactSearchParams struct {
	OrgID   int64
	Limit   int
	Offset  int
	Search  string
	Email   string
	Phone   string
	Company string
	Type    string
}

// ContactResult is a contact row decorated with its child rows and the
// registered custom-field values (nil when a field is absent).
type ContactResult struct {
	models.Contact
	Emails       []models.ContactEmail `json:"emails"`
	Phones       []models.ContactPhone `json:"phones"`
	CustomFields map[string]*string    `json:"custom_fields"`
}

type ContactPage struct {
	Contacts   []ContactResult
	TotalItems int
}

const contactColumns = `c.id, c.org_id, c.contact_type, c.name, c.job_title, c.company_name,
	       c.address, c.city, c.state, c.country, c.postal_code, c.notes,
	       c.avatar, c.photo_url, c.created_at, c.updated_at, c.last_contact`

// Child matches are EXISTS subqueries rather than joins: the result set
// never fans out per child row, and a filter narrows to contacts having
// at least one matching child while unfiltered contacts keep their
// childless rows.
const (
	matchEmail = `EXISTS (SELECT 1 FROM contact_emails ce WHERE ce.contact_id = c.id AND ce.org_id = c.org_id AND ce.email LIKE ?)`
	matchPhone = `EXISTS (SELECT 1 FROM contact_phones cp WHERE cp.contact_id = c.id AND cp.org_id = c.org_id AND cp.phone LIKE ?)`
)

// buildContactFilter assembles the WHERE clause shared by the page and
// count queries. `search` is one OR group over the contact's own text
// columns and its email/phone children; the per-field filters are AND
// refinements on top of it.
func buildContactFilter(p ContactSearchParams) (string, []interface{}) {
	where := `WHERE c.org_id = ?`
	args := []interface{}{p.OrgID}

	if p.Search != "" {
		term := "%" + p.Search + "%"
		where += ` AND (c.name LIKE ? OR c.job_title LIKE ? OR c.company_name LIKE ? OR c.address LIKE ? OR c.city LIKE ? OR ` +
			matchEmail + ` OR ` + matchPhone + `)`
		args = append(args, term, term, term, term, term, term, term)
	}

	if p.Email != "" {
		where += ` AND ` + matchEmail
		args = append(args, "%"+p.Email+"%")
	}

	if p.Phone != "" {
		where += ` AND ` + matchPhone
		args = append(args, "%"+p.Phone+"%")
	}

	if p.Company != "" {
		where += ` AND c.company_name LIKE ?`
		args = append(args, "%"+p.Company+"%")
	}

	if p.Type != "" {
		where += ` AND c.contact_type = ?`
		args = append(args, p.Type)
	}

	return where, args
}

// SearchContacts returns one page of contacts matching the filters, plus
// the total match count for page arithmetic. Organizations sort before
// persons, then name, then id as a stable tie-break.
func (db *DB) SearchContacts(p ContactSearchParams) (*ContactPage, error) {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	where, args := buildContactFilter(p)

	var total int
	countQuery := `SELECT COUNT(*) FROM contacts c ` + where
	if err := db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := `SELECT ` + contactColumns + ` FROM contacts c ` + where +
		` ORDER BY c.contact_type DESC, c.name ASC, c.id ASC LIMIT ? OFFSET ?`
	pageArgs := append(args, p.Limit, p.Offset)

	rows, err := db.Query(query, pageArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []ContactResult{}
	ids := []int64{}
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *contact)
		ids = append(ids, contact.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.decorateContacts(p.OrgID, ids, contacts); err != nil {
		return nil, err
	}

	return &ContactPage{Contacts: contacts, TotalItems: total}, nil
}

// GetContact fetches a single contact with its emails, phones and
// custom-field values.
func (db *DB) GetContact(orgID, id int64) (*ContactResult, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts c WHERE c.org_id = ? AND c.id = ?`
	contact, err := scanContact(db.QueryRow(query, orgID, id))
	if err != nil {
		return nil, err
	}

	contacts := []ContactResult{*contact}
	if err := db.decorateContacts(orgID, []int64{id}, contacts); err != nil {
		return nil, err
	}
	return &contacts[0], nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContact(row rowScanner) (*ContactResult, error) {
	var c ContactResult
	var jobTitle, companyName, address, city, state, country, postalCode, notes, avatar, photoURL sql.NullString
	var lastContact sql.NullTime

	err := row.Scan(
		&c.ID, &c.OrgID, &c.ContactType, &c.Name, &jobTitle, &companyName,
		&address, &city, &state, &country, &postalCode, &notes,
		&avatar, &photoURL, &c.CreatedAt, &c.UpdatedAt, &lastContact,
	)
	if err != nil {
		return nil, err
	}

	c.JobTitle = nullableString(jobTitle)
	c.CompanyName = nullableString(companyName)
	c.Address = nullableString(address)
	c.City = nullableString(city)
	c.State = nullableString(state)
	c.Country = nullableString(country)
	c.PostalCode = nullableString(postalCode)
	c.Notes = nullableString(notes)
	c.Avatar = nullableString(avatar)
	c.PhotoURL = nullableString(photoURL)
	if lastContact.Valid {
		c.LastContact = &lastContact.Time
	}

	c.Emails = []models.ContactEmail{}
	c.Phones = []models.ContactPhone{}
	c.CustomFields = emptyCustomFields()
	return &c, nil
}

// decorateContacts attaches child rows and custom-field values to an
// already-fetched page. Three extra round trips instead of joins in the
// page query, so email/phone multiplicity never multiplies contact rows.
func (db *DB) decorateContacts(orgID int64, ids []int64, contacts []ContactResult) error {
	if len(ids) == 0 {
		return nil
	}

	index := make(map[int64]*ContactResult, len(contacts))
	for i := range contacts {
		index[contacts[i].ID] = &contacts[i]
	}

	idArgs := make([]interface{}, 0, len(ids)+1)
	idArgs = append(idArgs, orgID)
	for _, id := range ids {
		idArgs = append(idArgs, id)
	}
	inIDs := placeholders(len(ids))

	emailRows, err := db.Query(
		`SELECT id, org_id, contact_id, email FROM contact_emails WHERE org_id = ? AND contact_id IN (`+inIDs+`) ORDER BY id`,
		idArgs...,
	)
	if err != nil {
		return err
	}
	defer emailRows.Close()
	for emailRows.Next() {
		var e models.ContactEmail
		if err := emailRows.Scan(&e.ID, &e.OrgID, &e.ContactID, &e.Email); err != nil {
			return err
		}
		if c, ok := index[e.ContactID]; ok {
			c.Emails = append(c.Emails, e)
		}
	}
	if err := emailRows.Err(); err != nil {
		return err
	}

	phoneRows, err := db.Query(
		`SELECT id, org_id, contact_id, phone, phone_type FROM contact_phones WHERE org_id = ? AND contact_id IN (`+inIDs+`) ORDER BY id`,
		idArgs...,
	)
	if err != nil {
		return err
	}
	defer phoneRows.Close()
	for phoneRows.Next() {
		var p models.ContactPhone
		if err := phoneRows.Scan(&p.ID, &p.OrgID, &p.ContactID, &p.Phone, &p.PhoneType); err != nil {
			return err
		}
		if c, ok := index[p.ContactID]; ok {
			c.Phones = append(c.Phones, p)
		}
	}
	if err := phoneRows.Err(); err != nil {
		return err
	}

	fieldArgs := make([]interface{}, 0, len(models.KnownFields)+len(ids)+1)
	fieldArgs = append(fieldArgs, orgID)
	for _, f := range models.KnownFields {
		fieldArgs = append(fieldArgs, f.ID)
	}
	fieldArgs = append(fieldArgs, idArgs[1:]...)

	fieldRows, err := db.Query(
		`SELECT contact_id, field_id, value FROM contact_field_values WHERE org_id = ? AND field_id IN (`+
			placeholders(len(models.KnownFields))+`) AND contact_id IN (`+inIDs+`)`,
		fieldArgs...,
	)
	if err != nil {
		return err
	}
	defer fieldRows.Close()
	for fieldRows.Next() {
		var contactID int64
		var fieldID int
		var value string
		if err := fieldRows.Scan(&contactID, &fieldID, &value); err != nil {
			return err
		}
		name, ok := models.FieldName(fieldID)
		if !ok {
			continue
		}
		if c, found := index[contactID]; found {
			v := value
			c.CustomFields[name] = &v
		}
	}
	return fieldRows.Err()
}

func emptyCustomFields() map[string]*string {
	fields := make(map[string]*string, len(models.KnownFields))
	for _, f := range models.KnownFields {
		fields[f.Name] = nil
	}
	return fields
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
