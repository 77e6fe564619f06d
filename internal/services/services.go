// Package services holds one thin client per backend resource. Each method
// maps to a single gateway call; failures keep the gateway error taxonomy and
// only gain context.
package services

import (
	"strconv"

	"github.com/gametu-dev/gametu/internal/gateway"
)

// Services bundles every resource client built on one gateway
type Services struct {
	Auth       *AuthService
	GameOffers *GameOfferService
	Users      *UserService
	Complaints *ComplaintService
	News       *NewsService
	Categories *CategoryService
}

// New creates all resource clients on top of gw
func New(gw *gateway.Gateway) *Services {
	return &Services{
		Auth:       NewAuthService(gw),
		GameOffers: NewGameOfferService(gw),
		Users:      NewUserService(gw),
		Complaints: NewComplaintService(gw),
		News:       NewNewsService(gw),
		Categories: NewCategoryService(gw),
	}
}

func idPath(prefix string, id int64, suffix ...string) string {
	p := prefix + "/" + strconv.FormatInt(id, 10)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}
