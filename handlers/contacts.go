package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"crm-server/database"
	"crm-server/models"
	"crm-server/services"
	"crm-server/utils"

	"github.com/gin-gonic/gin"
)

// GetContacts returns one page of contacts with optional search and
// per-field filters. Filters combine with AND; `search` alone also
// matches against related email addresses and phone numbers.
func GetContacts(c *gin.Context) {
	page, limit := parsePageParams(c)

	params := database.ContactSearchParams{
		OrgID:   orgID(c),
		Limit:   limit,
		Offset:  (page - 1) * limit,
		Search:  c.Query("search"),
		Email:   c.Query("email"),
		Phone:   c.Query("phone"),
		Company: c.Query("company"),
		Type:    c.Query("type"),
	}

	result, err := DB.SearchContacts(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch contacts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contacts":   result.Contacts,
		"pagination": paginationEnvelope(page, limit, result.TotalItems),
	})
}

// GetContact returns a single contact with its emails, phones and
// custom-field values.
func GetContact(c *gin.Context) {
	contactID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact ID"})
		return
	}

	contact, err := DB.GetContact(orgID(c), contactID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch contact"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contact":      contact.Contact,
		"emails":       contact.Emails,
		"phones":       contact.Phones,
		"customFields": contact.CustomFields,
	})
}

type contactPhoneInput struct {
	Phone     string `json:"phone" binding:"required"`
	PhoneType string `json:"phone_type"`
}

// CreateContact creates a contact together with its email/phone rows and
// custom-field values in a single transaction.
func CreateContact(c *gin.Context) {
	var req struct {
		ContactType  string              `json:"contact_type" binding:"required,oneof=P O"`
		Name         string              `json:"name" binding:"required"`
		JobTitle     *string             `json:"job_title"`
		CompanyName  *string             `json:"company_name"`
		Address      *string             `json:"address"`
		City         *string             `json:"city"`
		State        *string             `json:"state"`
		Country      *string             `json:"country"`
		PostalCode   *string             `json:"postal_code"`
		Notes        *string             `json:"notes"`
		Emails       []string            `json:"emails"`
		Phones       []contactPhoneInput `json:"phones"`
		CustomFields map[string]string   `json:"custom_fields"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for name := range req.CustomFields {
		if _, ok := models.FieldByName(name); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown custom field: " + name})
			return
		}
	}

	org := orgID(c)
	avatar := utils.GenerateAvatarWithInitials(utils.GetInitialsFromName(req.Name))
	now := time.Now()

	tx, err := DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact"})
		return
	}

	result, err := tx.Exec(`
		INSERT INTO contacts (org_id, contact_type, name, job_title, company_name,
		                      address, city, state, country, postal_code, notes, avatar, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		org, req.ContactType, req.Name, req.JobTitle, req.CompanyName,
		req.Address, req.City, req.State, req.Country, req.PostalCode, req.Notes, avatar, now, now,
	)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact"})
		return
	}

	contactID, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact"})
		return
	}

	if err := insertContactChildren(tx, org, contactID, req.Emails, req.Phones, req.CustomFields); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Contact created successfully",
		"contact_id": contactID,
	})
}

// UpdateContact updates a contact and, when email/phone/custom-field
// arrays are present, replaces those child rows in the same transaction
// so a failed child write never leaves the aggregate half-updated.
func UpdateContact(c *gin.Context) {
	contactID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact ID"})
		return
	}

	var req struct {
		ContactType  *string              `json:"contact_type"`
		Name         *string              `json:"name"`
		JobTitle     *string              `json:"job_title"`
		CompanyName  *string              `json:"company_name"`
		Address      *string              `json:"address"`
		City         *string              `json:"city"`
		State        *string              `json:"state"`
		Country      *string              `json:"country"`
		PostalCode   *string              `json:"postal_code"`
		Notes        *string              `json:"notes"`
		Emails       *[]string            `json:"emails"`
		Phones       *[]contactPhoneInput `json:"phones"`
		CustomFields *map[string]string   `json:"custom_fields"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ContactType != nil && *req.ContactType != models.ContactTypePerson && *req.ContactType != models.ContactTypeOrganization {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contact_type must be P or O"})
		return
	}

	if req.CustomFields != nil {
		for name := range *req.CustomFields {
			if _, ok := models.FieldByName(name); !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown custom field: " + name})
				return
			}
		}
	}

	org := orgID(c)

	var exists bool
	err = DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM contacts WHERE org_id = ? AND id = ?)`, org, contactID).Scan(&exists)
	if err != nil || !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}

	// Build dynamic update query
	query := "UPDATE contacts SET "
	args := []interface{}{}

	if req.ContactType != nil {
		query += "contact_type = ?, "
		args = append(args, *req.ContactType)
	}
	if req.Name != nil {
		query += "name = ?, "
		args = append(args, *req.Name)
	}
	if req.JobTitle != nil {
		query += "job_title = ?, "
		args = append(args, *req.JobTitle)
	}
	if req.CompanyName != nil {
		query += "company_name = ?, "
		args = append(args, *req.CompanyName)
	}
	if req.Address != nil {
		query += "address = ?, "
		args = append(args, *req.Address)
	}
	if req.City != nil {
		query += "city = ?, "
		args = append(args, *req.City)
	}
	if req.State != nil {
		query += "state = ?, "
		args = append(args, *req.State)
	}
	if req.Country != nil {
		query += "country = ?, "
		args = append(args, *req.Country)
	}
	if req.PostalCode != nil {
		query += "postal_code = ?, "
		args = append(args, *req.PostalCode)
	}
	if req.Notes != nil {
		query += "notes = ?, "
		args = append(args, *req.Notes)
	}

	hasChildUpdates := req.Emails != nil || req.Phones != nil || req.CustomFields != nil
	if len(args) == 0 && !hasChildUpdates {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	tx, err := DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact"})
		return
	}

	if len(args) > 0 {
		query = query[:len(query)-2] + ", updated_at = ? WHERE org_id = ? AND id = ?"
		args = append(args, time.Now(), org, contactID)
		if _, err := tx.Exec(query, args...); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact"})
			return
		}
	}

	if req.Emails != nil {
		if _, err := tx.Exec(`DELETE FROM contact_emails WHERE org_id = ? AND contact_id = ?`, org, contactID); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact"})
			return
		}
	}
	if req.Phones != nil {
		if _, err := tx.Exec(`DELETE FROM contact_phones WHERE org_id = ? AND contact_id = ?`, org, contactID); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact"})
			return
		}
	}
	if req.CustomFields != nil {
		if _, err := tx.Exec(`DELETE FROM contact_field_values WHERE org_id = ? AND contact_id = ?`, org, contactID); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact"})
			return
		}
	}

	var emails []string
	if req.Emails != nil {
		emails = *req.Emails
	}
	var phones []contactPhoneInput
	if req.Phones != nil {
		phones = *req.Phones
	}
	var customFields map[string]string
	if req.CustomFields != nil {
		customFields = *req.CustomFields
	}

	if err := insertContactChildren(tx, org, contactID, emails, phones, customFields); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contact updated successfully"})
}

// DeleteContact hard-deletes a contact and its child rows.
func DeleteContact(c *gin.Context) {
	contactID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact ID"})
		return
	}

	org := orgID(c)

	var exists bool
	err = DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM contacts WHERE org_id = ? AND id = ?)`, org, contactID).Scan(&exists)
	if err != nil || !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}

	tx, err := DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact"})
		return
	}

	deletes := []string{
		`DELETE FROM contact_emails WHERE org_id = ? AND contact_id = ?`,
		`DELETE FROM contact_phones WHERE org_id = ? AND contact_id = ?`,
		`DELETE FROM contact_field_values WHERE org_id = ? AND contact_id = ?`,
		`DELETE FROM contacts WHERE org_id = ? AND id = ?`,
	}
	for _, stmt := range deletes {
		if _, err := tx.Exec(stmt, org, contactID); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contact deleted successfully"})
}

// UploadContactPhoto uploads a photo for a contact and stores its URL.
func UploadContactPhoto(c *gin.Context) {
	contactID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact ID"})
		return
	}

	org := orgID(c)

	var exists bool
	err = DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM contacts WHERE org_id = ? AND id = ?)`, org, contactID).Scan(&exists)
	if err != nil || !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}

	if services.Cloudinary == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo uploads are not configured"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read photo file"})
		return
	}
	defer file.Close()

	result, err := services.Cloudinary.UploadImage(file, "contacts")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	if _, err := DB.Exec(`UPDATE contacts SET photo_url = ?, updated_at = ? WHERE org_id = ? AND id = ?`,
		result.SecureURL, time.Now(), org, contactID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photo URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": result.SecureURL})
}

// insertContactChildren writes email, phone and custom-field rows for a
// contact inside the caller's transaction.
func insertContactChildren(tx *sql.Tx, org, contactID int64, emails []string, phones []contactPhoneInput, customFields map[string]string) error {
	for _, email := range emails {
		if _, err := tx.Exec(`INSERT INTO contact_emails (org_id, contact_id, email) VALUES (?, ?, ?)`,
			org, contactID, email); err != nil {
			return err
		}
	}

	for _, phone := range phones {
		phoneType := phone.PhoneType
		if phoneType == "" {
			phoneType = "mobile"
		}
		if _, err := tx.Exec(`INSERT INTO contact_phones (org_id, contact_id, phone, phone_type) VALUES (?, ?, ?, ?)`,
			org, contactID, phone.Phone, phoneType); err != nil {
			return err
		}
	}

	for name, value := range customFields {
		field, ok := models.FieldByName(name)
		if !ok {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO contact_field_values (field_id, contact_id, org_id, value) VALUES (?, ?, ?, ?)`,
			field.ID, contactID, org, value); err != nil {
			return err
		}
	}

	return nil
}
