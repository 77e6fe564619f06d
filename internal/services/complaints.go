package services

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/gametu-dev/gametu/internal/gateway"
)

// Complaint is a user-submitted complaint
type Complaint struct {
	ID          int64  `json:"id"`
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion"`
	UserID      int64  `json:"userId"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// ComplaintInput is the body for creating a complaint
type ComplaintInput struct {
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion"`
	UserID      int64  `json:"userId,omitempty"`
}

// ComplaintService is the client for /complaints
type ComplaintService struct {
	gw *gateway.Gateway
}

func NewComplaintService(gw *gateway.Gateway) *ComplaintService {
	return &ComplaintService{gw: gw}
}

// List returns the complaints visible to userID
func (s *ComplaintService) List(ctx context.Context, userID int64) ([]Complaint, error) {
	complaints, err := gateway.Fetch[[]Complaint](ctx, s.gw, gateway.Request{
		Path:  "/complaints/list",
		Query: ownerQuery(userID),
	})
	if err != nil {
		return nil, errors.Wrap(err, "list complaints")
	}
	return complaints, nil
}

// Create files a new complaint
func (s *ComplaintService) Create(ctx context.Context, in ComplaintInput) (*Complaint, error) {
	complaint, err := gateway.Fetch[Complaint](ctx, s.gw, gateway.Request{
		Method: http.MethodPost,
		Path:   "/complaints/create",
		Body:   in,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create complaint")
	}
	return &complaint, nil
}
