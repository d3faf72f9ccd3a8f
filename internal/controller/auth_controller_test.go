package controller_test

import (
	"net/http"
	"testing"

	"diyari_backend/internal/model"
	"diyari_backend/internal/testutil"
	"diyari_backend/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	a := setup(t)

	resp, body := a.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Diyari Real Estate API is running!", body["message"])
}

func TestUnknownRoute(t *testing.T) {
	a := setup(t)

	resp, body := a.do(t, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Route not found", body["error"])
}

func TestAuthGate(t *testing.T) {
	a := setup(t)

	resp, body := a.do(t, http.MethodGet, "/api/properties/feed", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Access token required", body["error"])

	resp, body = a.do(t, http.MethodGet, "/api/properties/feed", "not-a-token", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Invalid or expired token", body["error"])

	gone := testutil.CreateUser(t, a.db, "gone")
	token := tokenFor(t, gone)
	require.NoError(t, a.db.Delete(&model.User{}, gone.ID).Error)

	resp, body = a.do(t, http.MethodGet, "/api/properties/feed", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "User not found", body["error"])
}

func TestRegisterAndLogin(t *testing.T) {
	a := setup(t)

	resp, body := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"fullName": "علي حسن",
		"username": "ali",
		"email":    "Ali@Example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "علي حسن", user["full_name"])
	assert.Equal(t, "ali@example.com", user["email"])
	assert.Equal(t, "user", user["role"])

	resp, body = a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "ali",
		"email":    "other@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username or email already exists", body["error"])

	resp, body = a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "All fields are required", body["error"])

	resp, body = a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ali", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body["error"])

	resp, body = a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ali@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Login successful", body["message"])
	token := body["token"].(string)

	assert.Equal(t, int64(1), count(t, a.db, &model.LoginHistory{}, ""))

	resp, body = a.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := body["user"].(map[string]interface{})
	assert.Equal(t, "ali", me["username"])
	assert.EqualValues(t, 0, me["properties_count"])
}

func TestAuthRateLimitCoversOnlyCredentials(t *testing.T) {
	a := setupWith(t, func(cfg *config.Config) { cfg.Server.AuthRateMax = 2 })
	user := testutil.CreateUser(t, a.db, "limited")
	token := tokenFor(t, user)

	for i := 0; i < 4; i++ {
		resp, _ := a.do(t, http.MethodGet, "/api/auth/me", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	login := map[string]interface{}{"username": "limited", "password": "wrong"}
	resp, _ := a.do(t, http.MethodPost, "/api/auth/login", "", login)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = a.do(t, http.MethodPost, "/api/auth/login", "", login)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, body := a.do(t, http.MethodPost, "/api/auth/login", "", login)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too many attempts, please try again later", body["error"])
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	a := setup(t)
	user := testutil.CreateUser(t, a.db, "regular")
	admin := testutil.CreateAdmin(t, a.db, "boss")

	resp, body := a.do(t, http.MethodGet, "/api/admin/stats", tokenFor(t, user), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Admin access required", body["error"])

	resp, body = a.do(t, http.MethodGet, "/api/admin/stats", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["users"])
	assert.EqualValues(t, 0, body["properties"])
}
