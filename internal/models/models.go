package models

import (
	"time"

	"gorm.io/gorm"
)

// RoleAdmin and RoleUser are the only roles the backend hands out
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// BaseModel provides the numeric primary key and creation time for all models
type BaseModel struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// User represents a registered account
type User struct {
	BaseModel
	Name               string    `json:"name" gorm:"not null"`
	Surname            string    `json:"surname,omitempty"`
	Email              string    `json:"email" gorm:"unique;not null"`
	PasswordHash       string    `json:"-" gorm:"not null"`
	Course             string    `json:"course,omitempty"`
	Active             bool      `json:"active" gorm:"not null;default:true"`
	AccepNotifications bool      `json:"accepNotifications" gorm:"not null;default:false"`
	Role               string    `json:"role" gorm:"not null;default:user"`
	UpdatedAt          time.Time `json:"-" gorm:"autoUpdateTime"`
}

// IsAdmin reports whether the account holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// GameOffer is a video game listed for sale
type GameOffer struct {
	BaseModel
	Title              string    `json:"title" gorm:"not null;index"`
	Description        string    `json:"description,omitempty" gorm:"type:text"`
	Price              float64   `json:"price" gorm:"not null"`
	Platform           string    `json:"platform" gorm:"not null;index"`
	Genre              string    `json:"genre" gorm:"not null;index"`
	Developer          string    `json:"developer" gorm:"not null"`
	Publisher          string    `json:"publisher,omitempty"`
	ReleaseDate        string    `json:"releaseDate" gorm:"not null"` // YYYY-MM-DD
	ImageURL           string    `json:"imageUrl"`
	Active             bool      `json:"active" gorm:"not null;default:true"`
	ContactEmail       string    `json:"contactEmail,omitempty"`
	OfferExpiration    string    `json:"offerExpiration" gorm:"not null"` // YYYY-MM-DD
	DiscountPercentage *float64  `json:"discountPercentage,omitempty"`
	Stock              *int      `json:"stock,omitempty"`
	Rating             *float64  `json:"rating,omitempty"` // average of Ratings, nil until rated
	AgeRating          string    `json:"ageRating,omitempty"`
	CreatedByID        int64     `json:"-" gorm:"index"`
	UpdatedAt          time.Time `json:"-" gorm:"autoUpdateTime"`

	// Relationships
	Ratings []Rating `json:"-" gorm:"foreignKey:GameOfferID;constraint:OnDelete:CASCADE"`
}

// Rating is one user's 1-5 vote on an offer
type Rating struct {
	BaseModel
	GameOfferID int64 `json:"gameOfferId" gorm:"not null;uniqueIndex:idx_rating_offer_user"`
	UserID      int64 `json:"userId" gorm:"not null;uniqueIndex:idx_rating_offer_user"`
	Stars       int   `json:"rating" gorm:"not null"`
}

// Complaint is filed by a user and reviewed by admins
type Complaint struct {
	BaseModel
	Titulo      string `json:"titulo" gorm:"not null"`
	Descripcion string `json:"descripcion" gorm:"type:text;not null"`
	UserID      int64  `json:"userId" gorm:"not null;index"`
}

// News is an announcement published by an admin
type News struct {
	BaseModel
	Titular string `json:"titular" gorm:"not null"`
	Cuerpo  string `json:"cuerpo" gorm:"type:text;not null"`
	UserID  int64  `json:"userId" gorm:"not null"`
}

// Category groups offers by theme
type Category struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"unique;not null"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&User{}, &GameOffer{}, &Rating{}, &Complaint{}, &News{}, &Category{},
	}

	return db.AutoMigrate(models...)
}

// FindByID finds a record by its numeric ID
func FindByID[T any](db *gorm.DB, id int64, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
