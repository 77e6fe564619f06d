package services

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/gametu-dev/gametu/internal/gateway"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput represents the registration form
type RegisterInput struct {
	Name               string `json:"name"`
	Surname            string `json:"surname,omitempty"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	Course             string `json:"course,omitempty"`
	AccepNotifications bool   `json:"accepNotifications"`
}

// AuthService submits credentials and registrations
type AuthService struct {
	gw *gateway.Gateway
}

func NewAuthService(gw *gateway.Gateway) *AuthService {
	return &AuthService{gw: gw}
}

// LoginUser posts the credentials; the backend answers with a session cookie.
// A 401 here means bad credentials, not an expired session.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) error {
	err := s.gw.Do(ctx, gateway.Request{
		Method:          http.MethodPost,
		Path:            "/auth/login",
		Body:            LoginRequest{Email: email, Password: password},
		SkipAuthExpired: true,
	}, nil)
	return errors.Wrap(err, "submit credentials")
}

// Register creates a new account
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*UserRecord, error) {
	user, err := gateway.Fetch[UserRecord](ctx, s.gw, gateway.Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   in,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "register %s", in.Email)
	}
	return &user, nil
}
