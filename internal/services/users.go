package services

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/gametu-dev/gametu/internal/gateway"
)

// UserRecord is the full user profile as stored by the backend
type UserRecord struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Surname            string `json:"surname,omitempty"`
	Email              string `json:"email"`
	Course             string `json:"course,omitempty"`
	Active             bool   `json:"active"`
	AccepNotifications bool   `json:"accepNotifications"`
	Role               string `json:"role"`
	CreatedAt          string `json:"createdAt,omitempty"`
}

// UserService is the client for /user
type UserService struct {
	gw *gateway.Gateway
}

func NewUserService(gw *gateway.Gateway) *UserService {
	return &UserService{gw: gw}
}

// List returns every registered user. requesterID identifies the admin
// asking; zero omits it.
func (s *UserService) List(ctx context.Context, requesterID int64) ([]UserRecord, error) {
	users, err := gateway.Fetch[[]UserRecord](ctx, s.gw, gateway.Request{
		Path:  "/user/usuarios",
		Query: ownerQuery(requesterID),
	})
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

// Profile returns the full record of the logged-in user
func (s *UserService) Profile(ctx context.Context) (*UserRecord, error) {
	user, err := gateway.Fetch[UserRecord](ctx, s.gw, gateway.Request{
		Path: "/user/profile",
	})
	if err != nil {
		return nil, errors.Wrap(err, "get profile")
	}
	return &user, nil
}

func ownerQuery(id int64) url.Values {
	if id == 0 {
		return nil
	}
	return url.Values{"id": {strconv.FormatInt(id, 10)}}
}
