package controller_test

import (
	"net/http"
	"testing"

	"diyari_backend/internal/model"
	"diyari_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowToggleAndProfile(t *testing.T) {
	a := setup(t)
	sara := testutil.CreateUser(t, a.db, "sara")
	omar := testutil.CreateUser(t, a.db, "omar")
	testutil.CreateProperty(t, a.db, omar, nil)

	resp, body := a.do(t, http.MethodPost, "/api/users/omar/follow", tokenFor(t, sara), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["following"])
	assert.Equal(t, int64(1), count(t, a.db, &model.Notification{}, "user_id = ? AND type = ?", omar.ID, model.NotificationFollow))

	resp, body = a.do(t, http.MethodGet, "/api/users/omar", tokenFor(t, sara), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile := body["user"].(map[string]interface{})
	assert.EqualValues(t, 1, profile["followers_count"])
	assert.EqualValues(t, 1, profile["properties_count"])
	assert.Equal(t, true, profile["is_following"])
	assert.Nil(t, profile["email"])

	resp, body = a.do(t, http.MethodPost, "/api/users/omar/follow", tokenFor(t, sara), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["following"])

	resp, body = a.do(t, http.MethodPost, "/api/users/sara/follow", tokenFor(t, sara), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Cannot follow yourself", body["error"])

	resp, _ = a.do(t, http.MethodGet, "/api/users/nobody", tokenFor(t, sara), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearchUsers(t *testing.T) {
	a := setup(t)
	me := testutil.CreateUser(t, a.db, "searcher")
	testutil.CreateUser(t, a.db, "hussein")
	testutil.CreateUser(t, a.db, "hassan")

	resp, body := a.do(t, http.MethodGet, "/api/users/search/hus", tokenFor(t, me), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	users := body["users"].([]interface{})
	require.Len(t, users, 1)
	assert.Equal(t, "hussein", users[0].(map[string]interface{})["username"])
}

func TestUpdateProfile(t *testing.T) {
	a := setup(t)
	user := testutil.CreateUser(t, a.db, "layla")
	testutil.CreateUser(t, a.db, "taken")

	resp, body := a.multipart(t, http.MethodPut, "/api/users/profile", tokenFor(t, user),
		map[string]string{"bio": "وسيطة عقارية في أربيل", "location": "أربيل"},
		[]filePart{{field: "profile_picture", filename: "me.png", contentType: "image/png", data: samplePNG(t)}},
	)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	updated := body["user"].(map[string]interface{})
	assert.Equal(t, "وسيطة عقارية في أربيل", updated["bio"])
	assert.Equal(t, "layla test", updated["full_name"])
	assert.Contains(t, updated["profile_picture"], "/uploads/users/layla/avatars/")

	resp, body = a.multipart(t, http.MethodPut, "/api/users/profile", tokenFor(t, user),
		map[string]string{"email": "taken@example.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already in use", body["error"])
}

func TestPushTokens(t *testing.T) {
	a := setup(t)
	first := testutil.CreateUser(t, a.db, "first")
	second := testutil.CreateUser(t, a.db, "second")

	resp, _ := a.do(t, http.MethodPost, "/api/users/me/push-tokens", tokenFor(t, first), map[string]string{"token": "device-1", "platform": "android"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// the same device signing into another account moves the token
	resp, _ = a.do(t, http.MethodPost, "/api/users/me/push-tokens", tokenFor(t, second), map[string]string{"token": "device-1", "platform": "android"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(1), count(t, a.db, &model.PushToken{}, "user_id = ?", second.ID))
	assert.Equal(t, int64(0), count(t, a.db, &model.PushToken{}, "user_id = ?", first.ID))

	resp, _ = a.do(t, http.MethodDelete, "/api/users/me/push-tokens", tokenFor(t, first), map[string]string{"token": "device-1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = a.do(t, http.MethodDelete, "/api/users/me/push-tokens", tokenFor(t, second), map[string]string{"token": "device-1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
