package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gametu-dev/gametu/internal/models"
)

func (s *Server) listUsers(c *gin.Context) {
	var users []models.User
	if err := s.db.Order("id ASC").Find(&users).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	c.JSON(http.StatusOK, users)
}

func (s *Server) getProfile(c *gin.Context) {
	session, _ := GetSessionData(c)

	var user models.User
	if err := models.FindByID(s.db, session.UserID, &user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}
