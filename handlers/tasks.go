package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"crm-server/models"

	"github.com/gin-gonic/gin"
)

const taskColumns = `id, org_id, title, description, contact_id, opportunity_id,
	       assigned_user_id, priority, status, due_date, completed_at, created_at, updated_at`

// GetTasks returns one page of tasks. Supports status/assigned_to
// filters plus overdue=true for tasks past their due date and not done.
func GetTasks(c *gin.Context) {
	page, limit := parsePageParams(c)
	offset := (page - 1) * limit

	where := `WHERE org_id = ?`
	args := []interface{}{orgID(c)}

	if status := c.Query("status"); status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}

	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		userID, err := strconv.ParseInt(assignedTo, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assigned_to"})
			return
		}
		where += ` AND assigned_user_id = ?`
		args = append(args, userID)
	}

	if c.Query("overdue") == "true" {
		where += ` AND due_date IS NOT NULL AND due_date < ? AND status NOT IN ('completed', 'cancelled')`
		args = append(args, time.Now())
	}

	var total int
	if err := DB.QueryRow(`SELECT COUNT(*) FROM tasks `+where, args...).Scan(&total); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	query := `SELECT ` + taskColumns + ` FROM tasks ` + where +
		` ORDER BY due_date IS NULL, due_date ASC, id ASC LIMIT ? OFFSET ?`
	rows, err := DB.Query(query, append(args, limit, offset)...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}
	defer rows.Close()

	tasks := []gin.H{}
	for rows.Next() {
		data, err := scanTask(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
			return
		}
		tasks = append(tasks, data)
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":      tasks,
		"pagination": paginationEnvelope(page, limit, total),
	})
}

// GetTask returns a single task.
func GetTask(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	row := DB.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE org_id = ? AND id = ?`, orgID(c), taskID)
	data, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": data})
}

// CreateTask creates a new task, assigned to the caller unless
// assigned_user_id says otherwise.
func CreateTask(c *gin.Context) {
	var req struct {
		Title          string     `json:"title" binding:"required"`
		Description    *string    `json:"description"`
		ContactID      *int64     `json:"contact_id"`
		OpportunityID  *int64     `json:"opportunity_id"`
		AssignedUserID *int64     `json:"assigned_user_id"`
		Priority       string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
		DueDate        *time.Time `json:"due_date"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Priority == "" {
		req.Priority = "medium"
	}

	org := orgID(c)
	assignedTo := currentUserID(c)
	if req.AssignedUserID != nil {
		assignedTo = *req.AssignedUserID
	}

	now := time.Now()
	result, err := DB.Exec(`
		INSERT INTO tasks (org_id, title, description, contact_id, opportunity_id,
		                   assigned_user_id, priority, status, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 'pending', ?, ?, ?)`,
		org, req.Title, req.Description, req.ContactID, req.OpportunityID,
		assignedTo, req.Priority, req.DueDate, now, now,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	taskID, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task_id": taskID,
	})
}

// UpdateTask updates a task; setting status=completed records completed_at.
func UpdateTask(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	var req struct {
		Title          *string    `json:"title"`
		Description    *string    `json:"description"`
		ContactID      *int64     `json:"contact_id"`
		OpportunityID  *int64     `json:"opportunity_id"`
		AssignedUserID *int64     `json:"assigned_user_id"`
		Priority       *string    `json:"priority"`
		Status         *string    `json:"status"`
		DueDate        *time.Time `json:"due_date"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Priority != nil {
		switch *req.Priority {
		case "low", "medium", "high", "urgent":
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
	}
	if req.Status != nil {
		switch *req.Status {
		case "pending", "completed", "cancelled", "overdue":
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
	}

	org := orgID(c)

	var exists bool
	err = DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM tasks WHERE org_id = ? AND id = ?)`, org, taskID).Scan(&exists)
	if err != nil || !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	// Build dynamic update query
	query := "UPDATE tasks SET "
	args := []interface{}{}

	if req.Title != nil {
		query += "title = ?, "
		args = append(args, *req.Title)
	}
	if req.Description != nil {
		query += "description = ?, "
		args = append(args, *req.Description)
	}
	if req.ContactID != nil {
		query += "contact_id = ?, "
		args = append(args, *req.ContactID)
	}
	if req.OpportunityID != nil {
		query += "opportunity_id = ?, "
		args = append(args, *req.OpportunityID)
	}
	if req.AssignedUserID != nil {
		query += "assigned_user_id = ?, "
		args = append(args, *req.AssignedUserID)
	}
	if req.Priority != nil {
		query += "priority = ?, "
		args = append(args, *req.Priority)
	}
	if req.Status != nil {
		query += "status = ?, "
		args = append(args, *req.Status)
		if *req.Status == "completed" {
			query += "completed_at = ?, "
			args = append(args, time.Now())
		}
	}
	if req.DueDate != nil {
		query += "due_date = ?, reminder_sent = FALSE, "
		args = append(args, *req.DueDate)
	}

	if len(args) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	query = query[:len(query)-2] + ", updated_at = ? WHERE org_id = ? AND id = ?"
	args = append(args, time.Now(), org, taskID)

	if _, err := DB.Exec(query, args...); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully"})
}

// DeleteTask deletes a task.
func DeleteTask(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	org := orgID(c)

	var exists bool
	err = DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM tasks WHERE org_id = ? AND id = ?)`, org, taskID).Scan(&exists)
	if err != nil || !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	if _, err := DB.Exec(`DELETE FROM tasks WHERE org_id = ? AND id = ?`, org, taskID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (gin.H, error) {
	var t models.Task
	var description sql.NullString
	var contactID, opportunityID, assignedUserID sql.NullInt64
	var dueDate, completedAt sql.NullTime

	err := row.Scan(
		&t.ID, &t.OrgID, &t.Title, &description, &contactID, &opportunityID,
		&assignedUserID, &t.Priority, &t.Status, &dueDate, &completedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	data := gin.H{
		"id":               t.ID,
		"org_id":           t.OrgID,
		"title":            t.Title,
		"description":      nil,
		"contact_id":       nil,
		"opportunity_id":   nil,
		"assigned_user_id": nil,
		"priority":         t.Priority,
		"status":           t.Status,
		"due_date":         nil,
		"completed_at":     nil,
		"created_at":       t.CreatedAt,
		"updated_at":       t.UpdatedAt,
	}
	if description.Valid {
		data["description"] = description.String
	}
	if contactID.Valid {
		data["contact_id"] = contactID.Int64
	}
	if opportunityID.Valid {
		data["opportunity_id"] = opportunityID.Int64
	}
	if assignedUserID.Valid {
		data["assigned_user_id"] = assignedUserID.Int64
	}
	if dueDate.Valid {
		data["due_date"] = dueDate.Time
	}
	if completedAt.Valid {
		data["completed_at"] = completedAt.Time
	}
	return data, nil
}
