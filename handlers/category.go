package handlers

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pettycash-api/middleware"
	"pettycash-api/models"
)

type CategoryHandler struct {
	DB *sql.DB
}

// orgForOwner resolves the organization owned by the given user.
func (h *CategoryHandler) orgForOwner(userID string) (string, error) {
	var orgID string
	err := h.DB.QueryRow(`SELECT id FROM organizations WHERE owner_id = $1`, userID).Scan(&orgID)
	return orgID, err
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orgID, err := h.orgForOwner(userID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "No organization configured"})
		return
	}
	if err != nil {
		log.Printf("Error resolving organization: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT id, organization_id, name
		FROM categories
		WHERE organization_id = $1
		ORDER BY name
	`, orgID)
	if err != nil {
		log.Printf("Error fetching categories: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.OrganizationID, &cat.Name); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		categories = append(categories, cat)
	}

	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orgID, err := h.orgForOwner(userID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "No organization configured"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	cat := models.Category{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Name:           req.Name,
	}

	_, err = h.DB.Exec(`
		INSERT INTO categories (id, organization_id, name)
		VALUES ($1, $2, $3)
	`, cat.ID, cat.OrganizationID, cat.Name)
	if err != nil {
		log.Printf("Error creating category: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orgID, err := h.orgForOwner(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No organization configured"})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE categories
		SET name = $1
		WHERE id = $2 AND organization_id = $3
	`, req.Name, c.Param("id"), orgID)
	if err != nil {
		log.Printf("Error updating category: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category updated successfully"})
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orgID, err := h.orgForOwner(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No organization configured"})
		return
	}

	// Entries keep their row; category_id is set NULL by the schema.
	result, err := h.DB.Exec(`
		DELETE FROM categories
		WHERE id = $1 AND organization_id = $2
	`, c.Param("id"), orgID)
	if err != nil {
		log.Printf("Error deleting category: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
