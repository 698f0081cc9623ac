package handlers

import (
	"net/http"

	"crm-server/models"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats returns the counters the dashboard page renders:
// contact totals by type, open pipeline value by stage, and task load.
func GetDashboardStats(c *gin.Context) {
	org := orgID(c)

	var totalContacts int
	if err := DB.QueryRow(`SELECT COUNT(*) FROM contacts WHERE org_id = ?`, org).Scan(&totalContacts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	var personContacts int
	err := DB.QueryRow(`SELECT COUNT(*) FROM contacts WHERE org_id = ? AND contact_type = 'P'`, org).Scan(&personContacts)
	if err != nil {
		personContacts = 0
	}

	var orgContacts int
	err = DB.QueryRow(`SELECT COUNT(*) FROM contacts WHERE org_id = ? AND contact_type = 'O'`, org).Scan(&orgContacts)
	if err != nil {
		orgContacts = 0
	}

	// Open pipeline value grouped by stage
	pipeline := []gin.H{}
	rows, err := DB.Query(`
		SELECT stage_type_id, COUNT(*), COALESCE(SUM(amount), 0)
		FROM opportunities
		WHERE org_id = ? AND status_type_id = 1
		GROUP BY stage_type_id
		ORDER BY stage_type_id`, org)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var stageID, count int
			var amount float64
			if err := rows.Scan(&stageID, &count, &amount); err != nil {
				continue
			}
			pipeline = append(pipeline, gin.H{
				"stage_type_id": stageID,
				"stage_label":   models.StageLabel(stageID),
				"count":         count,
				"total_amount":  amount,
			})
		}
	}

	var openOpportunities int
	err = DB.QueryRow(`SELECT COUNT(*) FROM opportunities WHERE org_id = ? AND status_type_id = 1`, org).Scan(&openOpportunities)
	if err != nil {
		openOpportunities = 0
	}

	var wonOpportunities int
	err = DB.QueryRow(`SELECT COUNT(*) FROM opportunities WHERE org_id = ? AND status_type_id = 2`, org).Scan(&wonOpportunities)
	if err != nil {
		wonOpportunities = 0
	}

	var pendingTasks int
	err = DB.QueryRow(`SELECT COUNT(*) FROM tasks WHERE org_id = ? AND status = 'pending'`, org).Scan(&pendingTasks)
	if err != nil {
		pendingTasks = 0
	}

	var overdueTasks int
	err = DB.QueryRow(`SELECT COUNT(*) FROM tasks WHERE org_id = ? AND due_date IS NOT NULL AND due_date < NOW() AND status NOT IN ('completed', 'cancelled')`, org).Scan(&overdueTasks)
	if err != nil {
		overdueTasks = 0
	}

	var tasksDueThisWeek int
	err = DB.QueryRow(`SELECT COUNT(*) FROM tasks WHERE org_id = ? AND due_date BETWEEN NOW() AND DATE_ADD(NOW(), INTERVAL 7 DAY) AND status = 'pending'`, org).Scan(&tasksDueThisWeek)
	if err != nil {
		tasksDueThisWeek = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"total_contacts":        totalContacts,
		"person_contacts":       personContacts,
		"organization_contacts": orgContacts,
		"open_opportunities":    openOpportunities,
		"won_opportunities":     wonOpportunities,
		"pipeline":              pipeline,
		"pending_tasks":         pendingTasks,
		"overdue_tasks":         overdueTasks,
		"tasks_due_this_week":   tasksDueThisWeek,
	})
}
