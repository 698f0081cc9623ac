package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"crm-server/models"
	"crm-server/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// GetUsers returns the users of the caller's organization.
func GetUsers(c *gin.Context) {
	rows, err := DB.Query(`
		SELECT id, org_id, email, full_name, role, is_active, avatar, created_at, updated_at
		FROM users WHERE org_id = ? ORDER BY full_name ASC`, orgID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	defer rows.Close()

	users := []gin.H{}
	for rows.Next() {
		var user models.User
		var avatar sql.NullString

		err := rows.Scan(&user.ID, &user.OrgID, &user.Email, &user.FullName,
			&user.Role, &user.IsActive, &avatar, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}

		users = append(users, gin.H{
			"id":         user.ID,
			"org_id":     user.OrgID,
			"email":      user.Email,
			"full_name":  user.FullName,
			"role":       user.Role,
			"is_active":  user.IsActive,
			"avatar":     avatar.String,
			"created_at": user.CreatedAt,
			"updated_at": user.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUserProfile returns the authenticated user's profile.
func GetUserProfile(c *gin.Context) {
	var user models.User
	var avatar sql.NullString

	query := `SELECT id, org_id, email, full_name, role, is_active, avatar, created_at, updated_at
	          FROM users WHERE org_id = ? AND id = ?`
	err := DB.QueryRow(query, orgID(c), currentUserID(c)).Scan(
		&user.ID, &user.OrgID, &user.Email, &user.FullName,
		&user.Role, &user.IsActive, &avatar, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user profile"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"org_id":     user.OrgID,
		"email":      user.Email,
		"full_name":  user.FullName,
		"role":       user.Role,
		"is_active":  user.IsActive,
		"avatar":     avatar.String,
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	})
}

// CreateUser creates a user in the caller's organization.
func CreateUser(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		FullName string `json:"full_name" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
		Role     string `json:"role" binding:"omitempty,oneof=admin user"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Role == "" {
		req.Role = "user"
	}

	org := orgID(c)

	var exists bool
	err := DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE org_id = ? AND email = ?)`, org, req.Email).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is already in use"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	avatar := utils.GenerateAvatarWithInitials(utils.GetInitialsFromName(req.FullName))
	now := time.Now()

	result, err := DB.Exec(`
		INSERT INTO users (org_id, email, full_name, password_hash, role, is_active, avatar, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, TRUE, ?, ?, ?)`,
		org, req.Email, req.FullName, string(hash), req.Role, avatar, now, now,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	userID, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user_id": userID,
	})
}

// ToggleUserStatus flips a user's is_active flag. Users are never
// deleted; deactivation is the retirement path.
func ToggleUserStatus(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	org := orgID(c)

	var isActive bool
	err = DB.QueryRow(`SELECT is_active FROM users WHERE org_id = ? AND id = ?`, org, userID).Scan(&isActive)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		}
		return
	}

	if _, err := DB.Exec(`UPDATE users SET is_active = ?, updated_at = ? WHERE org_id = ? AND id = ?`,
		!isActive, time.Now(), org, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "User status updated successfully",
		"is_active": !isActive,
	})
}
