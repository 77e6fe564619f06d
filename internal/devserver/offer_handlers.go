package devserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gametu-dev/gametu/internal/models"
)

// CreateGameOfferRequest represents the request to publish an offer
type CreateGameOfferRequest struct {
	Title              string   `json:"title" validate:"required,max=200"`
	Description        string   `json:"description"`
	Price              float64  `json:"price" validate:"gt=0"`
	Platform           string   `json:"platform" validate:"required"`
	Genre              string   `json:"genre" validate:"required"`
	Developer          string   `json:"developer" validate:"required"`
	Publisher          string   `json:"publisher"`
	ReleaseDate        string   `json:"releaseDate" validate:"required,datetime=2006-01-02"`
	ImageURL           string   `json:"imageUrl" validate:"omitempty,url"`
	Active             *bool    `json:"active"`
	ContactEmail       string   `json:"contactEmail" validate:"omitempty,email"`
	OfferExpiration    string   `json:"offerExpiration" validate:"required,datetime=2006-01-02"`
	DiscountPercentage *float64 `json:"discountPercentage" validate:"omitempty,gte=0,lte=100"`
	Stock              *int     `json:"stock" validate:"omitempty,gte=0"`
	AgeRating          string   `json:"ageRating"`
}

// UpdateGameOfferRequest changes only the fields present in the body
type UpdateGameOfferRequest struct {
	Title              *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description        *string  `json:"description"`
	Price              *float64 `json:"price" validate:"omitempty,gt=0"`
	Platform           *string  `json:"platform" validate:"omitempty,min=1"`
	Genre              *string  `json:"genre" validate:"omitempty,min=1"`
	Developer          *string  `json:"developer" validate:"omitempty,min=1"`
	Publisher          *string  `json:"publisher"`
	ReleaseDate        *string  `json:"releaseDate" validate:"omitempty,datetime=2006-01-02"`
	ImageURL           *string  `json:"imageUrl" validate:"omitempty,url"`
	Active             *bool    `json:"active"`
	ContactEmail       *string  `json:"contactEmail" validate:"omitempty,email"`
	OfferExpiration    *string  `json:"offerExpiration" validate:"omitempty,datetime=2006-01-02"`
	DiscountPercentage *float64 `json:"discountPercentage" validate:"omitempty,gte=0,lte=100"`
	Stock              *int     `json:"stock" validate:"omitempty,gte=0"`
	AgeRating          *string  `json:"ageRating"`
}

// RateRequest is a 1-5 vote
type RateRequest struct {
	Rating int `json:"rating" validate:"gte=1,lte=5"`
}

// RatingSummaryResponse is the offer's average after a vote
type RatingSummaryResponse struct {
	Rating float64 `json:"rating"`
	Votes  int64   `json:"votes"`
}

func (s *Server) listGameOffers(c *gin.Context) {
	query := s.db.Model(&models.GameOffer{})

	if title := strings.TrimSpace(c.Query("title")); title != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}
	if platform := c.Query("platform"); platform != "" {
		query = query.Where("LOWER(platform) = ?", strings.ToLower(platform))
	}
	if genre := c.Query("genre"); genre != "" {
		query = query.Where("LOWER(genre) = ?", strings.ToLower(genre))
	}

	offers := []models.GameOffer{}
	if err := query.Order("id ASC").Find(&offers).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list game offers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list game offers"})
		return
	}

	c.JSON(http.StatusOK, offers)
}

// findOffer loads the offer named by :id, writing 400/404/500 on failure
func (s *Server) findOffer(c *gin.Context) (*models.GameOffer, bool) {
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}

	var offer models.GameOffer
	if err := models.FindByID(s.db, id, &offer); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game offer not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Int64("offer_id", id).Msg("Failed to load game offer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return &offer, true
}

func (s *Server) getGameOffer(c *gin.Context) {
	offer, ok := s.findOffer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (s *Server) createGameOffer(c *gin.Context) {
	var req CreateGameOfferRequest
	if !s.bindJSON(c, &req) {
		return
	}

	session, _ := GetSessionData(c)

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	offer := &models.GameOffer{
		Title:              req.Title,
		Description:        req.Description,
		Price:              req.Price,
		Platform:           req.Platform,
		Genre:              req.Genre,
		Developer:          req.Developer,
		Publisher:          req.Publisher,
		ReleaseDate:        req.ReleaseDate,
		ImageURL:           req.ImageURL,
		Active:             active,
		ContactEmail:       req.ContactEmail,
		OfferExpiration:    req.OfferExpiration,
		DiscountPercentage: req.DiscountPercentage,
		Stock:              req.Stock,
		AgeRating:          req.AgeRating,
		CreatedByID:        session.UserID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(offer).Error; err != nil {
			return err
		}
		// gorm skips zero values for columns with a default
		if !active {
			if err := tx.Model(offer).Update("active", false).Error; err != nil {
				return err
			}
			offer.Active = false
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create game offer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game offer"})
		return
	}

	s.logger.Info().Int64("offer_id", offer.ID).Str("title", offer.Title).Msg("Game offer created")

	c.JSON(http.StatusCreated, offer)
}

func (s *Server) updateGameOffer(c *gin.Context) {
	offer, ok := s.findOffer(c)
	if !ok {
		return
	}

	var req UpdateGameOfferRequest
	if !s.bindJSON(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	setString := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	setString("title", req.Title)
	setString("description", req.Description)
	setString("platform", req.Platform)
	setString("genre", req.Genre)
	setString("developer", req.Developer)
	setString("publisher", req.Publisher)
	setString("release_date", req.ReleaseDate)
	setString("image_url", req.ImageURL)
	setString("contact_email", req.ContactEmail)
	setString("offer_expiration", req.OfferExpiration)
	setString("age_rating", req.AgeRating)
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.DiscountPercentage != nil {
		updates["discount_percentage"] = *req.DiscountPercentage
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}

	if len(updates) > 0 {
		if err := s.db.Model(offer).Updates(updates).Error; err != nil {
			s.logger.Error().Err(err).Int64("offer_id", offer.ID).Msg("Failed to update game offer")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update game offer"})
			return
		}
	}

	if err := models.FindByID(s.db, offer.ID, offer); err != nil {
		s.logger.Error().Err(err).Int64("offer_id", offer.ID).Msg("Failed to reload game offer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, offer)
}

func (s *Server) deleteGameOffer(c *gin.Context) {
	offer, ok := s.findOffer(c)
	if !ok {
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_offer_id = ?", offer.ID).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		return tx.Delete(offer).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("offer_id", offer.ID).Msg("Failed to delete game offer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete game offer"})
		return
	}

	s.logger.Info().Int64("offer_id", offer.ID).Msg("Game offer deleted")

	c.Status(http.StatusNoContent)
}

// rateGameOffer upserts the caller's vote and refreshes the offer's average
func (s *Server) rateGameOffer(c *gin.Context) {
	offer, ok := s.findOffer(c)
	if !ok {
		return
	}

	var req RateRequest
	if !s.bindJSON(c, &req) {
		return
	}

	session, _ := GetSessionData(c)

	var summary RatingSummaryResponse
	err := s.db.Transaction(func(tx *gorm.DB) error {
		vote := models.Rating{GameOfferID: offer.ID, UserID: session.UserID, Stars: req.Rating}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "game_offer_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stars"}),
		}).Create(&vote).Error; err != nil {
			return err
		}

		var agg struct {
			Average float64
			Votes   int64
		}
		if err := tx.Model(&models.Rating{}).
			Select("AVG(stars) AS average, COUNT(*) AS votes").
			Where("game_offer_id = ?", offer.ID).
			Scan(&agg).Error; err != nil {
			return err
		}

		summary = RatingSummaryResponse{Rating: agg.Average, Votes: agg.Votes}
		return tx.Model(offer).Update("rating", agg.Average).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("offer_id", offer.ID).Msg("Failed to rate game offer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rate game offer"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (s *Server) getMyRating(c *gin.Context) {
	offer, ok := s.findOffer(c)
	if !ok {
		return
	}

	session, _ := GetSessionData(c)

	var vote models.Rating
	err := s.db.Where("game_offer_id = ? AND user_id = ?", offer.ID, session.UserID).First(&vote).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error().Err(err).Int64("offer_id", offer.ID).Msg("Failed to load rating")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rating": vote.Stars})
}
