package services

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/gametu-dev/gametu/internal/gateway"
)

const categoriesPath = "/categories"

// Category groups offers by genre or theme
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type categoryInput struct {
	Name string `json:"name"`
}

// CategoryService is the client for /categories
type CategoryService struct {
	gw *gateway.Gateway
}

func NewCategoryService(gw *gateway.Gateway) *CategoryService {
	return &CategoryService{gw: gw}
}

func (s *CategoryService) List(ctx context.Context) ([]Category, error) {
	categories, err := gateway.Fetch[[]Category](ctx, s.gw, gateway.Request{
		Path: categoriesPath,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, name string) (*Category, error) {
	category, err := gateway.Fetch[Category](ctx, s.gw, gateway.Request{
		Method: http.MethodPost,
		Path:   categoriesPath,
		Body:   categoryInput{Name: name},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create category %q", name)
	}
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, name string) (*Category, error) {
	category, err := gateway.Fetch[Category](ctx, s.gw, gateway.Request{
		Method: http.MethodPut,
		Path:   idPath(categoriesPath, id),
		Body:   categoryInput{Name: name},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "update category %d", id)
	}
	return &category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	err := s.gw.Do(ctx, gateway.Request{
		Method: http.MethodDelete,
		Path:   idPath(categoriesPath, id),
	}, nil)
	return errors.Wrapf(err, "delete category %d", id)
}
