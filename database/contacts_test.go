package database

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return &DB{mockDB}, mock
}

var contactRowColumns = []string{
	"id", "org_id", "contact_type", "name", "job_title", "company_name",
	"address", "city", "state", "country", "postal_code", "notes",
	"avatar", "photo_url", "created_at", "updated_at", "last_contact",
}

func contactRow(rows *sqlmock.Rows, id int64, contactType, name string, company interface{}) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, int64(1), contactType, name, nil, company,
		nil, nil, nil, nil, nil, nil,
		"https://api.dicebear.com/7.x/initials/svg?seed=A", nil, now, now, nil)
}

func TestBuildContactFilter(t *testing.T) {
	t.Run("org scope only", func(t *testing.T) {
		where, args := buildContactFilter(ContactSearchParams{OrgID: 1})
		assert.Equal(t, "WHERE c.org_id = ?", where)
		assert.Len(t, args, 1)
	})

	t.Run("search is one OR group over own columns and children", func(t *testing.T) {
		where, args := buildContactFilter(ContactSearchParams{OrgID: 1, Search: "smith"})
		assert.Contains(t, where, "c.name LIKE ?")
		assert.Contains(t, where, "c.job_title LIKE ?")
		assert.Contains(t, where, matchEmail)
		assert.Contains(t, where, matchPhone)
		// org id plus seven copies of the search term
		assert.Len(t, args, 8)
		assert.Equal(t, "%smith%", args[1])
	})

	t.Run("field filters are AND refinements", func(t *testing.T) {
		where, args := buildContactFilter(ContactSearchParams{
			OrgID:   1,
			Email:   "acme.com",
			Phone:   "555",
			Company: "Acme",
			Type:    "O",
		})
		assert.Contains(t, where, " AND "+matchEmail)
		assert.Contains(t, where, " AND "+matchPhone)
		assert.Contains(t, where, "c.company_name LIKE ?")
		assert.Contains(t, where, "c.contact_type = ?")
		assert.Equal(t, []interface{}{int64(1), "%acme.com%", "%555%", "%Acme%", "O"}, args)
	})

	t.Run("search and filters combine", func(t *testing.T) {
		where, args := buildContactFilter(ContactSearchParams{OrgID: 1, Search: "smith", Type: "P"})
		assert.Contains(t, where, "c.contact_type = ?")
		assert.Len(t, args, 9)
		assert.Equal(t, "P", args[8])
	})
}

func TestSearchContactsIncludesChildlessContacts(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM contacts c WHERE c.org_id = ?`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rows := sqlmock.NewRows(contactRowColumns)
	contactRow(rows, 1, "O", "Acme Corp", "Acme Corp")
	contactRow(rows, 2, "P", "Jane Smith", nil)
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY c.contact_type DESC, c.name ASC, c.id ASC LIMIT ? OFFSET ?`)).
		WithArgs(int64(1), 20, 0).
		WillReturnRows(rows)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM contact_emails WHERE org_id = ? AND contact_id IN (?,?)`)).
		WithArgs(int64(1), int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "org_id", "contact_id", "email"}).
			AddRow(int64(10), int64(1), int64(2), "jane@example.com"))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM contact_phones WHERE org_id = ? AND contact_id IN (?,?)`)).
		WithArgs(int64(1), int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "org_id", "contact_id", "phone", "phone_type"}))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM contact_field_values WHERE org_id = ?`)).
		WithArgs(int64(1), 28, 29, 30, int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"contact_id", "field_id", "value"}).
			AddRow(int64(2), 28, "1234567890"))

	page, err := db.SearchContacts(ContactSearchParams{OrgID: 1})
	require.NoError(t, err)
	require.Len(t, page.Contacts, 2)
	assert.Equal(t, 2, page.TotalItems)

	// The childless organization stays in the page with empty children.
	acme := page.Contacts[0]
	assert.Equal(t, "Acme Corp", acme.Name)
	assert.Empty(t, acme.Emails)
	assert.Empty(t, acme.Phones)
	require.Len(t, acme.CustomFields, 3)
	assert.Nil(t, acme.CustomFields["VKN"])
	assert.Nil(t, acme.CustomFields["TAXOFFICE"])
	assert.Nil(t, acme.CustomFields["TCKN"])

	jane := page.Contacts[1]
	require.Len(t, jane.Emails, 1)
	assert.Equal(t, "jane@example.com", jane.Emails[0].Email)
	require.NotNil(t, jane.CustomFields["VKN"])
	assert.Equal(t, "1234567890", *jane.CustomFields["VKN"])
	assert.Nil(t, jane.CustomFields["TCKN"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchContactsEmailFilterNarrows(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM contacts c WHERE c.org_id = ? AND EXISTS`)).
		WithArgs(int64(1), "%acme.com%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows(contactRowColumns)
	contactRow(rows, 7, "P", "Bob Jones", nil)
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY c.contact_type DESC, c.name ASC, c.id ASC LIMIT ? OFFSET ?`)).
		WithArgs(int64(1), "%acme.com%", 20, 0).
		WillReturnRows(rows)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM contact_emails WHERE org_id = ? AND contact_id IN (?)`)).
		WithArgs(int64(1), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "org_id", "contact_id", "email"}).
			AddRow(int64(3), int64(1), int64(7), "bob@acme.com"))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM contact_phones WHERE org_id = ? AND contact_id IN (?)`)).
		WithArgs(int64(1), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "org_id", "contact_id", "phone", "phone_type"}))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM contact_field_values WHERE org_id = ?`)).
		WithArgs(int64(1), 28, 29, 30, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"contact_id", "field_id", "value"}))

	page, err := db.SearchContacts(ContactSearchParams{OrgID: 1, Email: "acme.com"})
	require.NoError(t, err)
	require.Len(t, page.Contacts, 1)
	assert.Equal(t, "Bob Jones", page.Contacts[0].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchContactsPageBeyondEnd(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM contacts c WHERE c.org_id = ?`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	mock.ExpectQuery(regexp.QuoteMeta(`LIMIT ? OFFSET ?`)).
		WithArgs(int64(1), 20, 100).
		WillReturnRows(sqlmock.NewRows(contactRowColumns))

	page, err := db.SearchContacts(ContactSearchParams{OrgID: 1, Limit: 20, Offset: 100})
	require.NoError(t, err)
	assert.Empty(t, page.Contacts)
	assert.Equal(t, 5, page.TotalItems)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchContactsClampsLimitAndOffset(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*)`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery(regexp.QuoteMeta(`LIMIT ? OFFSET ?`)).
		WithArgs(int64(1), 100, 0).
		WillReturnRows(sqlmock.NewRows(contactRowColumns))

	_, err := db.SearchContacts(ContactSearchParams{OrgID: 1, Limit: 5000, Offset: -3})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetContactNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM contacts c WHERE c.org_id = ? AND c.id = ?`)).
		WithArgs(int64(1), int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := db.GetContact(1, 99)
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}
