package services

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/gametu-dev/gametu/internal/gateway"
)

// News is a news item published by an administrator
type News struct {
	ID        int64  `json:"id"`
	Titular   string `json:"titular"`
	Cuerpo    string `json:"cuerpo"`
	UserID    int64  `json:"userId"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// NewsInput is the body for publishing news
type NewsInput struct {
	Titular string `json:"titular"`
	Cuerpo  string `json:"cuerpo"`
	UserID  int64  `json:"userId,omitempty"`
}

// NewsService is the client for /news
type NewsService struct {
	gw *gateway.Gateway
}

func NewNewsService(gw *gateway.Gateway) *NewsService {
	return &NewsService{gw: gw}
}

// List returns the news feed
func (s *NewsService) List(ctx context.Context, userID int64) ([]News, error) {
	news, err := gateway.Fetch[[]News](ctx, s.gw, gateway.Request{
		Path:  "/news/list",
		Query: ownerQuery(userID),
	})
	if err != nil {
		return nil, errors.Wrap(err, "list news")
	}
	return news, nil
}

// Create publishes a news item
func (s *NewsService) Create(ctx context.Context, in NewsInput) (*News, error) {
	item, err := gateway.Fetch[News](ctx, s.gw, gateway.Request{
		Method: http.MethodPost,
		Path:   "/news/create",
		Body:   in,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create news")
	}
	return &item, nil
}
