package handlers

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "org_id", "title", "description", "contact_id", "opportunity_id",
		"assigned_user_id", "priority", "status", "due_date", "completed_at", "created_at", "updated_at",
	})
}

func TestGetTasksOverdueFilter(t *testing.T) {
	mock, router := setupRouter(t)
	router.GET("/api/tasks", GetTasks)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM tasks WHERE org_id = ? AND due_date IS NOT NULL AND due_date < ? AND status NOT IN ('completed', 'cancelled')`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	rows := taskRows().AddRow(int64(3), int64(1), "Call back Jane", nil, int64(2), nil,
		int64(1), "high", "pending", now.Add(-2*time.Hour), nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY due_date IS NULL, due_date ASC, id ASC LIMIT ? OFFSET ?`)).
		WillReturnRows(rows)

	w := doRequest(router, "GET", "/api/tasks?overdue=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Call back Jane")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTaskDefaultsToCaller(t *testing.T) {
	mock, router := setupRouter(t)
	router.POST("/api/tasks", CreateTask)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tasks`)).
		WillReturnResult(sqlmock.NewResult(9, 1))

	w := doRequest(router, "POST", "/api/tasks", gin.H{"title": "Send proposal"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"task_id":9`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTaskRejectsBadPriority(t *testing.T) {
	_, router := setupRouter(t)
	router.POST("/api/tasks", CreateTask)

	w := doRequest(router, "POST", "/api/tasks", gin.H{
		"title":    "Send proposal",
		"priority": "immediately",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTaskCompletionSetsCompletedAt(t *testing.T) {
	mock, router := setupRouter(t)
	router.PUT("/api/tasks/:id", UpdateTask)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM tasks WHERE org_id = ? AND id = ?)`)).
		WithArgs(int64(1), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET status = ?, completed_at = ?, updated_at = ? WHERE org_id = ? AND id = ?`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doRequest(router, "PUT", "/api/tasks/3", gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTaskDueDateResetsReminder(t *testing.T) {
	mock, router := setupRouter(t)
	router.PUT("/api/tasks/:id", UpdateTask)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM tasks WHERE org_id = ? AND id = ?)`)).
		WithArgs(int64(1), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET due_date = ?, reminder_sent = FALSE, updated_at = ? WHERE org_id = ? AND id = ?`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doRequest(router, "PUT", "/api/tasks/3", gin.H{
		"due_date": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTaskRejectsBadStatus(t *testing.T) {
	_, router := setupRouter(t)
	router.PUT("/api/tasks/:id", UpdateTask)

	w := doRequest(router, "PUT", "/api/tasks/3", gin.H{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTaskNotFound(t *testing.T) {
	mock, router := setupRouter(t)
	router.DELETE("/api/tasks/:id", DeleteTask)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM tasks WHERE org_id = ? AND id = ?)`)).
		WithArgs(int64(1), int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	w := doRequest(router, "DELETE", "/api/tasks/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
