package devserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gametu-dev/gametu/internal/models"
)

func TestLogin_SetsHttpOnlyCookie(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/auth/login", LoginRequest{Email: testAdminEmail, Password: testAdminPassword}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.NotEmpty(t, cookie.Value)

	user := decode[SessionUser](t, w)
	assert.Equal(t, testAdminEmail, user.Email)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/auth/login", LoginRequest{Email: testAdminEmail, Password: "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")

	w = do(t, srv, http.MethodPost, "/auth/login", LoginRequest{Email: "ghost@gametu.test", Password: "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_DeactivatedUser(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "gone@gametu.test")
	require.NoError(t, srv.GetDB().Model(&models.User{}).Where("email = ?", "gone@gametu.test").Update("active", false).Error)

	w := do(t, srv, http.MethodPost, "/auth/login", LoginRequest{Email: "gone@gametu.test", Password: "password"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_ValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/auth/login", LoginRequest{Email: "not-an-email"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	fields := decode[[]FieldError](t, w)
	paths := make([]string, 0, len(fields))
	for _, f := range fields {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"email", "password"}, paths)
}

func TestCurrentUser(t *testing.T) {
	srv := newTestServer(t)
	session := registerAndLogin(t, srv, "Player@GameTu.test")

	w := do(t, srv, http.MethodGet, "/auth/user", nil, session)
	require.Equal(t, http.StatusOK, w.Code)

	user := decode[SessionUser](t, w)
	assert.Equal(t, "player@gametu.test", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotZero(t, user.ID)
}

func TestCurrentUser_RoleFollowsDatabase(t *testing.T) {
	srv := newTestServer(t)
	session := registerAndLogin(t, srv, "promoted@gametu.test")

	require.NoError(t, srv.GetDB().Model(&models.User{}).Where("email = ?", "promoted@gametu.test").Update("role", models.RoleAdmin).Error)

	w := do(t, srv, http.MethodGet, "/auth/user", nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleAdmin, decode[SessionUser](t, w).Role)
}

func TestRegister(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/auth/register", RegisterRequest{
		Name:               "Ana",
		Surname:            "García",
		Email:              "ana@gametu.test",
		Password:           "secret1",
		Course:             "DAW",
		AccepNotifications: true,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "Ana", body["name"])
	assert.Equal(t, "user", body["role"])
	assert.Equal(t, true, body["active"])
	assert.Equal(t, true, body["accepNotifications"])
	assert.NotContains(t, body, "passwordHash")
	assert.NotContains(t, body, "PasswordHash")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "twice@gametu.test")

	w := do(t, srv, http.MethodPost, "/auth/register", RegisterRequest{
		Name:     "Again",
		Email:    "TWICE@gametu.test",
		Password: "password",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_ShortPassword(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/auth/register", RegisterRequest{Name: "Bo", Email: "bo@gametu.test", Password: "123"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	fields := decode[[]FieldError](t, w)
	require.Len(t, fields, 1)
	assert.Equal(t, "password", fields[0].Path)
	assert.Equal(t, "password must be at least 6 characters", fields[0].Msg)
}

func TestLogout_ClearsCookie(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/auth/logout", nil, loginAdmin(t, srv))
	require.Equal(t, http.StatusNoContent, w.Code)

	cookie := sessionCookie(t, w)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestAdminSeeding_Idempotent(t *testing.T) {
	srv := newTestServer(t)

	require.NoError(t, srv.seedAdmin(testAdminEmail, "ignored"))

	var count int64
	require.NoError(t, srv.GetDB().Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// the original password still works
	loginAdmin(t, srv)
}
