package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"crm-server/models"

	"github.com/gin-gonic/gin"
)

const opportunityColumns = `id, org_id, contact_id, title, amount, currency,
	       stage_type_id, status_type_id, expected_close, notes, created_at, updated_at`

// GetOpportunities returns one page of opportunities with optional
// stage/status/contact filters.
func GetOpportunities(c *gin.Context) {
	page, limit := parsePageParams(c)
	offset := (page - 1) * limit

	where := `WHERE org_id = ?`
	args := []interface{}{orgID(c)}

	if stage := c.Query("stage"); stage != "" {
		stageID, err := strconv.Atoi(stage)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stage"})
			return
		}
		where += ` AND stage_type_id = ?`
		args = append(args, stageID)
	}

	if status := c.Query("status"); status != "" {
		statusID, err := strconv.Atoi(status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		where += ` AND status_type_id = ?`
		args = append(args, statusID)
	}

	if contact := c.Query("contact_id"); contact != "" {
		contactID, err := strconv.ParseInt(contact, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact ID"})
			return
		}
		where += ` AND contact_id = ?`
		args = append(args, contactID)
	}

	var total int
	if err := DB.QueryRow(`SELECT COUNT(*) FROM opportunities `+where, args...).Scan(&total); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch opportunities"})
		return
	}

	query := `SELECT ` + opportunityColumns + ` FROM opportunities ` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := DB.Query(query, append(args, limit, offset)...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch opportunities"})
		return
	}
	defer rows.Close()

	opportunities := []gin.H{}
	for rows.Next() {
		data, err := scanOpportunity(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch opportunities"})
			return
		}
		opportunities = append(opportunities, data)
	}

	c.JSON(http.StatusOK, gin.H{
		"opportunities": opportunities,
		"pagination":    paginationEnvelope(page, limit, total),
	})
}

// GetOpportunity returns a single opportunity.
func GetOpportunity(c *gin.Context) {
	opportunityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid opportunity ID"})
		return
	}

	row := DB.QueryRow(`SELECT `+opportunityColumns+` FROM opportunities WHERE org_id = ? AND id = ?`,
		orgID(c), opportunityID)
	data, err := scanOpportunity(row)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Opportunity not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch opportunity"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"opportunity": data})
}

// GetOpportunityStages returns the stage and status label lookups.
func GetOpportunityStages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stages":   models.StageLabels,
		"statuses": models.StatusLabels,
	})
}

// CreateOpportunity creates a new opportunity.
func CreateOpportunity(c *gin.Context) {
	var req struct {
		ContactID     int64      `json:"contact_id" binding:"required"`
		Title         string     `json:"title" binding:"required"`
		Amount        float64    `json:"amount"`
		Currency      string     `json:"currency"`
		StageTypeID   int        `json:"stage_type_id"`
		StatusTypeID  int        `json:"status_type_id"`
		ExpectedClose *time.Time `json:"expected_close"`
		Notes         *string    `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Defaults
	if req.Currency == "" {
		req.Currency = "USD"
	}
	if req.StageTypeID == 0 {
		req.StageTypeID = 1
	}
	if req.StatusTypeID == 0 {
		req.StatusTypeID = 1
	}

	if _, ok := models.StageLabels[req.StageTypeID]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stage_type_id"})
		return
	}
	if _, ok := models.StatusLabels[req.StatusTypeID]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status_type_id"})
		return
	}

	org := orgID(c)

	var exists bool
	err := DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM contacts WHERE org_id = ? AND id = ?)`, org, req.ContactID).Scan(&exists)
	if err != nil || !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contact not found"})
		return
	}

	now := time.Now()
	result, err := DB.Exec(`
		INSERT INTO opportunities (org_id, contact_id, title, amount, currency,
		                           stage_type_id, status_type_id, expected_close, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		org, req.ContactID, req.Title, req.Amount, req.Currency,
		req.StageTypeID, req.StatusTypeID, req.ExpectedClose, req.Notes, now, now,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create opportunity"})
		return
	}

	opportunityID, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"message":        "Opportunity created successfully",
		"opportunity_id": opportunityID,
	})
}

// UpdateOpportunity updates an existing opportunity.
func UpdateOpportunity(c *gin.Context) {
	opportunityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid opportunity ID"})
		return
	}

	var req struct {
		Title         *string    `json:"title"`
		Amount        *float64   `json:"amount"`
		Currency      *string    `json:"currency"`
		StageTypeID   *int       `json:"stage_type_id"`
		StatusTypeID  *int       `json:"status_type_id"`
		ExpectedClose *time.Time `json:"expected_close"`
		Notes         *string    `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.StageTypeID != nil {
		if _, ok := models.StageLabels[*req.StageTypeID]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stage_type_id"})
			return
		}
	}
	if req.StatusTypeID != nil {
		if _, ok := models.StatusLabels[*req.StatusTypeID]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status_type_id"})
			return
		}
	}

	org := orgID(c)

	var exists bool
	err = DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM opportunities WHERE org_id = ? AND id = ?)`, org, opportunityID).Scan(&exists)
	if err != nil || !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Opportunity not found"})
		return
	}

	// Build dynamic update query
	query := "UPDATE opportunities SET "
	args := []interface{}{}

	if req.Title != nil {
		query += "title = ?, "
		args = append(args, *req.Title)
	}
	if req.Amount != nil {
		query += "amount = ?, "
		args = append(args, *req.Amount)
	}
	if req.Currency != nil {
		query += "currency = ?, "
		args = append(args, *req.Currency)
	}
	if req.StageTypeID != nil {
		query += "stage_type_id = ?, "
		args = append(args, *req.StageTypeID)
	}
	if req.StatusTypeID != nil {
		query += "status_type_id = ?, "
		args = append(args, *req.StatusTypeID)
	}
	if req.ExpectedClose != nil {
		query += "expected_close = ?, "
		args = append(args, *req.ExpectedClose)
	}
	if req.Notes != nil {
		query += "notes = ?, "
		args = append(args, *req.Notes)
	}

	if len(args) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	query = query[:len(query)-2] + ", updated_at = ? WHERE org_id = ? AND id = ?"
	args = append(args, time.Now(), org, opportunityID)

	if _, err := DB.Exec(query, args...); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update opportunity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Opportunity updated successfully"})
}

// DeleteOpportunity deletes an opportunity.
func DeleteOpportunity(c *gin.Context) {
	opportunityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid opportunity ID"})
		return
	}

	org := orgID(c)

	var exists bool
	err = DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM opportunities WHERE org_id = ? AND id = ?)`, org, opportunityID).Scan(&exists)
	if err != nil || !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Opportunity not found"})
		return
	}

	if _, err := DB.Exec(`DELETE FROM opportunities WHERE org_id = ? AND id = ?`, org, opportunityID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete opportunity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Opportunity deleted successfully"})
}

func scanOpportunity(row interface {
	Scan(dest ...interface{}) error
}) (gin.H, error) {
	var o models.Opportunity
	var expectedClose sql.NullTime
	var notes sql.NullString

	err := row.Scan(
		&o.ID, &o.OrgID, &o.ContactID, &o.Title, &o.Amount, &o.Currency,
		&o.StageTypeID, &o.StatusTypeID, &expectedClose, &notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	data := gin.H{
		"id":             o.ID,
		"org_id":         o.OrgID,
		"contact_id":     o.ContactID,
		"title":          o.Title,
		"amount":         o.Amount,
		"currency":       o.Currency,
		"stage_type_id":  o.StageTypeID,
		"stage_label":    models.StageLabel(o.StageTypeID),
		"status_type_id": o.StatusTypeID,
		"status_label":   models.StatusLabel(o.StatusTypeID),
		"notes":          nil,
		"expected_close": nil,
		"created_at":     o.CreatedAt,
		"updated_at":     o.UpdatedAt,
	}
	if notes.Valid {
		data["notes"] = notes.String
	}
	if expectedClose.Valid {
		data["expected_close"] = expectedClose.Time
	}
	return data, nil
}
