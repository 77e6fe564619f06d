package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gametu-dev/gametu/internal/models"
)

// CreateComplaintRequest represents a complaint filed by the caller
type CreateComplaintRequest struct {
	Titulo      string `json:"titulo" validate:"required,max=200"`
	Descripcion string `json:"descripcion" validate:"required"`
}

// listComplaints returns the caller's complaints. Admins see every
// complaint unless ?id= narrows it to one user.
func (s *Server) listComplaints(c *gin.Context) {
	owner, ok := queryOwner(c)
	if !ok {
		return
	}

	session, _ := GetSessionData(c)
	if !session.IsAdmin() {
		owner = session.UserID
	}

	query := s.db.Order("created_at DESC, id DESC")
	if owner != 0 {
		query = query.Where("user_id = ?", owner)
	}

	complaints := []models.Complaint{}
	if err := query.Find(&complaints).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list complaints")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list complaints"})
		return
	}

	c.JSON(http.StatusOK, complaints)
}

func (s *Server) createComplaint(c *gin.Context) {
	var req CreateComplaintRequest
	if !s.bindJSON(c, &req) {
		return
	}

	session, _ := GetSessionData(c)

	complaint := &models.Complaint{
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		UserID:      session.UserID,
	}
	if err := s.db.Create(complaint).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create complaint")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create complaint"})
		return
	}

	c.JSON(http.StatusCreated, complaint)
}
