package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/gametu-dev/gametu/internal/gateway"
)

const gameOffersPath = "/game-offers"

// GameOffer is an offer as the backend returns it
type GameOffer struct {
	ID                 int64    `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	Price              float64  `json:"price"`
	Platform           string   `json:"platform"`
	Genre              string   `json:"genre"`
	Developer          string   `json:"developer"`
	Publisher          string   `json:"publisher,omitempty"`
	ReleaseDate        string   `json:"releaseDate"`
	ImageURL           string   `json:"imageUrl"`
	Active             bool     `json:"active"`
	ContactEmail       string   `json:"contactEmail,omitempty"`
	OfferExpiration    string   `json:"offerExpiration"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
	Stock              *int     `json:"stock,omitempty"`
	Rating             *float64 `json:"rating,omitempty"`
	AgeRating          string   `json:"ageRating,omitempty"`
}

// GameOfferInput is a partial offer for create and update; unset fields are omitted
type GameOfferInput struct {
	Title              string   `json:"title,omitempty"`
	Description        string   `json:"description,omitempty"`
	Price              *float64 `json:"price,omitempty"`
	Platform           string   `json:"platform,omitempty"`
	Genre              string   `json:"genre,omitempty"`
	Developer          string   `json:"developer,omitempty"`
	Publisher          string   `json:"publisher,omitempty"`
	ReleaseDate        string   `json:"releaseDate,omitempty"`
	ImageURL           string   `json:"imageUrl,omitempty"`
	Active             *bool    `json:"active,omitempty"`
	ContactEmail       string   `json:"contactEmail,omitempty"`
	OfferExpiration    string   `json:"offerExpiration,omitempty"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
	Stock              *int     `json:"stock,omitempty"`
	AgeRating          string   `json:"ageRating,omitempty"`
}

// SearchParams filters the offer listing; empty fields are not sent
type SearchParams struct {
	Title    string
	Platform string
	Genre    string
}

// Query encodes the non-empty filters
func (p SearchParams) Query() url.Values {
	q := url.Values{}
	if p.Title != "" {
		q.Set("title", p.Title)
	}
	if p.Platform != "" {
		q.Set("platform", p.Platform)
	}
	if p.Genre != "" {
		q.Set("genre", p.Genre)
	}
	return q
}

// RatingSummary is the aggregate rating of an offer after a vote
type RatingSummary struct {
	Rating float64 `json:"rating"`
	Votes  int     `json:"votes"`
}

// MyRating is the current user's vote on an offer; zero means not rated
type MyRating struct {
	Rating int `json:"rating"`
}

type rateRequest struct {
	Rating int `json:"rating"`
}

// GameOfferService is the client for /game-offers
type GameOfferService struct {
	gw *gateway.Gateway
}

func NewGameOfferService(gw *gateway.Gateway) *GameOfferService {
	return &GameOfferService{gw: gw}
}

// Search lists offers matching the filters
func (s *GameOfferService) Search(ctx context.Context, params SearchParams) ([]GameOffer, error) {
	offers, err := gateway.Fetch[[]GameOffer](ctx, s.gw, gateway.Request{
		Path:  gameOffersPath,
		Query: params.Query(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "search game offers")
	}
	return offers, nil
}

// Get returns one offer
func (s *GameOfferService) Get(ctx context.Context, id int64) (*GameOffer, error) {
	offer, err := gateway.Fetch[GameOffer](ctx, s.gw, gateway.Request{
		Path: idPath(gameOffersPath, id),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "get game offer %d", id)
	}
	return &offer, nil
}

// Create publishes a new offer
func (s *GameOfferService) Create(ctx context.Context, in GameOfferInput) (*GameOffer, error) {
	offer, err := gateway.Fetch[GameOffer](ctx, s.gw, gateway.Request{
		Method: http.MethodPost,
		Path:   gameOffersPath,
		Body:   in,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create game offer")
	}
	return &offer, nil
}

// Update changes the fields set in in
func (s *GameOfferService) Update(ctx context.Context, id int64, in GameOfferInput) (*GameOffer, error) {
	offer, err := gateway.Fetch[GameOffer](ctx, s.gw, gateway.Request{
		Method: http.MethodPut,
		Path:   idPath(gameOffersPath, id),
		Body:   in,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "update game offer %d", id)
	}
	return &offer, nil
}

// Delete removes an offer
func (s *GameOfferService) Delete(ctx context.Context, id int64) error {
	err := s.gw.Do(ctx, gateway.Request{
		Method: http.MethodDelete,
		Path:   idPath(gameOffersPath, id),
	}, nil)
	return errors.Wrapf(err, "delete game offer %d", id)
}

// Rate records the current user's vote (1-5)
func (s *GameOfferService) Rate(ctx context.Context, id int64, stars int) (*RatingSummary, error) {
	summary, err := gateway.Fetch[RatingSummary](ctx, s.gw, gateway.Request{
		Method: http.MethodPost,
		Path:   idPath(gameOffersPath, id, "rate"),
		Body:   rateRequest{Rating: stars},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "rate game offer %d", id)
	}
	return &summary, nil
}

// MyRating returns the current user's vote on an offer
func (s *GameOfferService) MyRating(ctx context.Context, id int64) (*MyRating, error) {
	rating, err := gateway.Fetch[MyRating](ctx, s.gw, gateway.Request{
		Path: idPath(gameOffersPath, id, "myRate"),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "get my rating for game offer %d", id)
	}
	return &rating, nil
}
