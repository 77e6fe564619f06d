package devserver

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gametu-dev/gametu/internal/models"
)

func validOffer(title, platform, genre string) CreateGameOfferRequest {
	return CreateGameOfferRequest{
		Title:           title,
		Price:           59.99,
		Platform:        platform,
		Genre:           genre,
		Developer:       "Nintendo",
		ReleaseDate:     "2023-05-12",
		OfferExpiration: "2030-01-01",
	}
}

func createOffer(t *testing.T, srv *Server, session *http.Cookie, req CreateGameOfferRequest) models.GameOffer {
	t.Helper()
	w := do(t, srv, http.MethodPost, "/game-offers", req, session)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.GameOffer](t, w)
}

func TestCreateGameOffer(t *testing.T) {
	srv := newTestServer(t)
	session := registerAndLogin(t, srv, "seller@gametu.test")

	stock := 3
	req := validOffer("Zelda: Tears of the Kingdom", "Switch", "Adventure")
	req.Stock = &stock
	req.ImageURL = "https://img.gametu.test/zelda.png"

	offer := createOffer(t, srv, session, req)
	assert.NotZero(t, offer.ID)
	assert.Equal(t, "Zelda: Tears of the Kingdom", offer.Title)
	assert.True(t, offer.Active)
	require.NotNil(t, offer.Stock)
	assert.Equal(t, 3, *offer.Stock)
	assert.Nil(t, offer.Rating)
}

func TestCreateGameOffer_Inactive(t *testing.T) {
	srv := newTestServer(t)
	session := loginAdmin(t, srv)

	inactive := false
	req := validOffer("Halo", "Xbox", "Shooter")
	req.Active = &inactive

	offer := createOffer(t, srv, session, req)
	assert.False(t, offer.Active)

	w := do(t, srv, http.MethodGet, fmt.Sprintf("/game-offers/%d", offer.ID), nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.GameOffer](t, w).Active)
}

func TestCreateGameOffer_ValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	session := loginAdmin(t, srv)

	discount := 150.0
	req := CreateGameOfferRequest{
		Title:              "",
		Price:              0,
		Platform:           "PC",
		Genre:              "RPG",
		Developer:          "CD Projekt",
		ReleaseDate:        "12/05/2023",
		OfferExpiration:    "2030-01-01",
		ContactEmail:       "nope",
		DiscountPercentage: &discount,
	}

	w := do(t, srv, http.MethodPost, "/game-offers", req, session)
	require.Equal(t, http.StatusBadRequest, w.Code)

	byPath := map[string]string{}
	for _, f := range decode[[]FieldError](t, w) {
		byPath[f.Path] = f.Msg
	}
	assert.Equal(t, "title is required", byPath["title"])
	assert.Equal(t, "price must be greater than 0", byPath["price"])
	assert.Equal(t, "releaseDate must be a date formatted as 2006-01-02", byPath["releaseDate"])
	assert.Equal(t, "contactEmail must be a valid email address", byPath["contactEmail"])
	assert.Equal(t, "discountPercentage must be at most 100", byPath["discountPercentage"])
	assert.Len(t, byPath, 5)
}

func TestCreateGameOffer_MalformedBody(t *testing.T) {
	srv := newTestServer(t)
	session := loginAdmin(t, srv)

	w := do(t, srv, http.MethodPost, "/game-offers", "just a string", session)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid JSON body")
}

func TestListGameOffers_Filters(t *testing.T) {
	srv := newTestServer(t)
	session := loginAdmin(t, srv)

	createOffer(t, srv, session, validOffer("The Legend of Zelda", "Switch", "Adventure"))
	createOffer(t, srv, session, validOffer("Zelda: Breath of the Wild", "Switch", "Adventure"))
	createOffer(t, srv, session, validOffer("Hyrule Warriors: Zelda", "PC", "Action"))
	createOffer(t, srv, session, validOffer("Mario Kart", "Switch", "Racing"))

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"no filters", "", 4},
		{"title is a case-insensitive substring", "?title=zelda", 3},
		{"platform", "?platform=switch", 3},
		{"genre", "?genre=Racing", 1},
		{"combined", "?title=zelda&platform=PC", 1},
		{"no match", "?title=halo", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodGet, "/game-offers"+tt.query, nil, session)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Len(t, decode[[]models.GameOffer](t, w), tt.want)
		})
	}
}

func TestListGameOffers_EmptyIsArray(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/game-offers", nil, loginAdmin(t, srv))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetGameOffer_NotFound(t *testing.T) {
	srv := newTestServer(t)
	session := loginAdmin(t, srv)

	w := do(t, srv, http.MethodGet, "/game-offers/999", nil, session)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodGet, "/game-offers/abc", nil, session)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateGameOffer_Partial(t *testing.T) {
	srv := newTestServer(t)
	session := loginAdmin(t, srv)
	offer := createOffer(t, srv, session, validOffer("Elden Ring", "PC", "RPG"))

	w := do(t, srv, http.MethodPut, fmt.Sprintf("/game-offers/%d", offer.ID), map[string]interface{}{
		"price":  39.99,
		"active": false,
	}, session)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decode[models.GameOffer](t, w)
	assert.Equal(t, 39.99, updated.Price)
	assert.False(t, updated.Active)
	assert.Equal(t, "Elden Ring", updated.Title)
	assert.Equal(t, "PC", updated.Platform)
}

func TestUpdateGameOffer_Invalid(t *testing.T) {
	srv := newTestServer(t)
	session := loginAdmin(t, srv)
	offer := createOffer(t, srv, session, validOffer("Elden Ring", "PC", "RPG"))

	w := do(t, srv, http.MethodPut, fmt.Sprintf("/game-offers/%d", offer.ID), map[string]interface{}{
		"price": -1,
	}, session)
	require.Equal(t, http.StatusBadRequest, w.Code)

	fields := decode[[]FieldError](t, w)
	require.Len(t, fields, 1)
	assert.Equal(t, "price", fields[0].Path)
}

func TestDeleteGameOffer(t *testing.T) {
	srv := newTestServer(t)
	session := loginAdmin(t, srv)
	offer := createOffer(t, srv, session, validOffer("Doom", "PC", "Shooter"))

	w := do(t, srv, http.MethodPost, fmt.Sprintf("/game-offers/%d/rate", offer.ID), RateRequest{Rating: 4}, session)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodDelete, fmt.Sprintf("/game-offers/%d", offer.ID), nil, session)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, srv, http.MethodGet, fmt.Sprintf("/game-offers/%d", offer.ID), nil, session)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var votes int64
	require.NoError(t, srv.GetDB().Model(&models.Rating{}).Where("game_offer_id = ?", offer.ID).Count(&votes).Error)
	assert.Zero(t, votes)

	w = do(t, srv, http.MethodDelete, fmt.Sprintf("/game-offers/%d", offer.ID), nil, session)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateGameOffer_Average(t *testing.T) {
	srv := newTestServer(t)
	admin := loginAdmin(t, srv)
	player := registerAndLogin(t, srv, "player@gametu.test")
	offer := createOffer(t, srv, admin, validOffer("Celeste", "PC", "Platformer"))
	path := fmt.Sprintf("/game-offers/%d/rate", offer.ID)

	w := do(t, srv, http.MethodPost, path, RateRequest{Rating: 5}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, RatingSummaryResponse{Rating: 5, Votes: 1}, decode[RatingSummaryResponse](t, w))

	w = do(t, srv, http.MethodPost, path, RateRequest{Rating: 2}, player)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, RatingSummaryResponse{Rating: 3.5, Votes: 2}, decode[RatingSummaryResponse](t, w))

	// voting again replaces the earlier vote
	w = do(t, srv, http.MethodPost, path, RateRequest{Rating: 4}, player)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, RatingSummaryResponse{Rating: 4.5, Votes: 2}, decode[RatingSummaryResponse](t, w))

	w = do(t, srv, http.MethodGet, fmt.Sprintf("/game-offers/%d", offer.ID), nil, player)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.GameOffer](t, w)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 4.5, *got.Rating)
}

func TestRateGameOffer_OutOfRange(t *testing.T) {
	srv := newTestServer(t)
	session := loginAdmin(t, srv)
	offer := createOffer(t, srv, session, validOffer("Celeste", "PC", "Platformer"))

	for _, stars := range []int{0, 6} {
		w := do(t, srv, http.MethodPost, fmt.Sprintf("/game-offers/%d/rate", offer.ID), RateRequest{Rating: stars}, session)
		assert.Equal(t, http.StatusBadRequest, w.Code, "rating %d", stars)
	}
}

func TestMyRating(t *testing.T) {
	srv := newTestServer(t)
	session := loginAdmin(t, srv)
	offer := createOffer(t, srv, session, validOffer("Hades", "PC", "Roguelike"))
	path := fmt.Sprintf("/game-offers/%d/myRate", offer.ID)

	w := do(t, srv, http.MethodGet, path, nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rating":0}`, w.Body.String())

	do(t, srv, http.MethodPost, fmt.Sprintf("/game-offers/%d/rate", offer.ID), RateRequest{Rating: 3}, session)

	w = do(t, srv, http.MethodGet, path, nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rating":3}`, w.Body.String())
}
