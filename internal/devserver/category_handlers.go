package devserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gametu-dev/gametu/internal/models"
)

// CategoryRequest creates or renames a category
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (s *Server) listCategories(c *gin.Context) {
	categories := []models.Category{}
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}

	c.JSON(http.StatusOK, categories)
}

// categoryNameTaken reports whether another category already uses name
func (s *Server) categoryNameTaken(name string, exceptID int64) (bool, error) {
	var count int64
	err := s.db.Model(&models.Category{}).
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), exceptID).
		Count(&count).Error
	return count > 0, err
}

func (s *Server) createCategory(c *gin.Context) {
	var req CategoryRequest
	if !s.bindJSON(c, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)

	taken, err := s.categoryNameTaken(name, 0)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check category name")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}

	category := &models.Category{Name: name}
	if err := s.db.Create(category).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (s *Server) findCategory(c *gin.Context) (*models.Category, bool) {
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}

	var category models.Category
	if err := models.FindByID(s.db, id, &category); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Int64("category_id", id).Msg("Failed to load category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return &category, true
}

func (s *Server) updateCategory(c *gin.Context) {
	category, ok := s.findCategory(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if !s.bindJSON(c, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)

	taken, err := s.categoryNameTaken(name, category.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check category name")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}

	if err := s.db.Model(category).Update("name", name).Error; err != nil {
		s.logger.Error().Err(err).Int64("category_id", category.ID).Msg("Failed to update category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}
	category.Name = name

	c.JSON(http.StatusOK, category)
}

func (s *Server) deleteCategory(c *gin.Context) {
	category, ok := s.findCategory(c)
	if !ok {
		return
	}

	if err := s.db.Delete(category).Error; err != nil {
		s.logger.Error().Err(err).Int64("category_id", category.ID).Msg("Failed to delete category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.Status(http.StatusNoContent)
}
