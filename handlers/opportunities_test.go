package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOpportunityStages(t *testing.T) {
	_, router := setupRouter(t)
	router.GET("/api/opportunities/stages", GetOpportunityStages)

	w := doRequest(router, "GET", "/api/opportunities/stages", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stages   map[string]string `json:"stages"`
		Statuses map[string]string `json:"statuses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Lead", resp.Stages["1"])
	assert.Equal(t, "Closing", resp.Stages["5"])
	assert.Equal(t, "Won", resp.Statuses["2"])
}

func TestGetOpportunitiesStageFilter(t *testing.T) {
	mock, router := setupRouter(t)
	router.GET("/api/opportunities", GetOpportunities)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM opportunities WHERE org_id = ? AND stage_type_id = ?`)).
		WithArgs(int64(1), 3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "org_id", "contact_id", "title", "amount", "currency",
		"stage_type_id", "status_type_id", "expected_close", "notes", "created_at", "updated_at",
	}).AddRow(int64(4), int64(1), int64(2), "Big deal", 5000.0, "USD", 3, 1, nil, nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)).
		WithArgs(int64(1), 3, 20, 0).
		WillReturnRows(rows)

	w := doRequest(router, "GET", "/api/opportunities?stage=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stage_label":"Proposal"`)
	assert.Contains(t, w.Body.String(), `"status_label":"Open"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOpportunitiesRejectsBadStage(t *testing.T) {
	_, router := setupRouter(t)
	router.GET("/api/opportunities", GetOpportunities)

	w := doRequest(router, "GET", "/api/opportunities?stage=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOpportunityRejectsUnknownStage(t *testing.T) {
	_, router := setupRouter(t)
	router.POST("/api/opportunities", CreateOpportunity)

	w := doRequest(router, "POST", "/api/opportunities", gin.H{
		"contact_id":    int64(2),
		"title":         "Big deal",
		"stage_type_id": 9,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid stage_type_id")
}

func TestCreateOpportunityRequiresExistingContact(t *testing.T) {
	mock, router := setupRouter(t)
	router.POST("/api/opportunities", CreateOpportunity)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM contacts WHERE org_id = ? AND id = ?)`)).
		WithArgs(int64(1), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	w := doRequest(router, "POST", "/api/opportunities", gin.H{
		"contact_id": int64(42),
		"title":      "Big deal",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Contact not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOpportunityAppliesDefaults(t *testing.T) {
	mock, router := setupRouter(t)
	router.POST("/api/opportunities", CreateOpportunity)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM contacts WHERE org_id = ? AND id = ?)`)).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO opportunities`)).
		WillReturnResult(sqlmock.NewResult(11, 1))

	w := doRequest(router, "POST", "/api/opportunities", gin.H{
		"contact_id": int64(2),
		"title":      "Big deal",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"opportunity_id":11`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOpportunityNoFields(t *testing.T) {
	mock, router := setupRouter(t)
	router.PUT("/api/opportunities/:id", UpdateOpportunity)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM opportunities WHERE org_id = ? AND id = ?)`)).
		WithArgs(int64(1), int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	w := doRequest(router, "PUT", "/api/opportunities/4", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No fields to update")
	assert.NoError(t, mock.ExpectationsWereMet())
}
