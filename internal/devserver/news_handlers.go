package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gametu-dev/gametu/internal/models"
)

// CreateNewsRequest represents an announcement
type CreateNewsRequest struct {
	Titular string `json:"titular" validate:"required,max=200"`
	Cuerpo  string `json:"cuerpo" validate:"required"`
}

// listNews returns announcements newest first, optionally by one author
func (s *Server) listNews(c *gin.Context) {
	author, ok := queryOwner(c)
	if !ok {
		return
	}

	query := s.db.Order("created_at DESC, id DESC")
	if author != 0 {
		query = query.Where("user_id = ?", author)
	}

	news := []models.News{}
	if err := query.Find(&news).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list news")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list news"})
		return
	}

	c.JSON(http.StatusOK, news)
}

func (s *Server) createNews(c *gin.Context) {
	var req CreateNewsRequest
	if !s.bindJSON(c, &req) {
		return
	}

	session, _ := GetSessionData(c)

	item := &models.News{
		Titular: req.Titular,
		Cuerpo:  req.Cuerpo,
		UserID:  session.UserID,
	}
	if err := s.db.Create(item).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create news")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create news"})
		return
	}

	s.logger.Info().Int64("news_id", item.ID).Msg("News published")

	c.JSON(http.StatusCreated, item)
}
