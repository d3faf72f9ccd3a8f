package controller_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"diyari_backend/internal/model"
	"diyari_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePropertyStoresImages(t *testing.T) {
	a := setup(t)
	owner := testutil.CreateUser(t, a.db, "seller")
	token := tokenFor(t, owner)

	resp, body := a.multipart(t, http.MethodPost, "/api/properties", token, listingFields(), []filePart{
		{field: "images", filename: "front.png", contentType: "image/png", data: samplePNG(t)},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "Property created successfully", body["message"])

	property := body["property"].(map[string]interface{})
	assert.Equal(t, "IQD", property["currency"])
	assert.Equal(t, "active", property["status"])
	assert.Equal(t, []interface{}{"حديقة", "كراج"}, property["features"])
	assert.Equal(t, "seller", property["username"])

	images := property["image_urls"].([]interface{})
	require.Len(t, images, 1)
	imageURL := images[0].(string)
	assert.True(t, strings.HasPrefix(imageURL, "/uploads/users/seller/images/"), imageURL)

	served, err := a.app.Test(httptest.NewRequest(http.MethodGet, imageURL, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, served.StatusCode)
	assert.Equal(t, "image/png", served.Header.Get("Content-Type"))
}

func TestCreatePropertyValidation(t *testing.T) {
	a := setup(t)
	token := tokenFor(t, testutil.CreateUser(t, a.db, "seller"))

	resp, body := a.multipart(t, http.MethodPost, "/api/properties", token, map[string]string{"title": "ناقص"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Required fields missing", body["error"])

	resp, body = a.multipart(t, http.MethodPost, "/api/properties", token, listingFields(), []filePart{
		{field: "images", filename: "notes.txt", contentType: "text/plain", data: []byte("hello")},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Only image and video files are allowed!", body["error"])

	png := samplePNG(t)
	var files []filePart
	for i := 0; i < 11; i++ {
		files = append(files, filePart{field: "images", filename: fmt.Sprintf("%d.png", i), contentType: "image/png", data: png})
	}
	resp, body = a.multipart(t, http.MethodPost, "/api/properties", token, listingFields(), files)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Maximum 10 images allowed", body["error"])

	assert.Equal(t, int64(0), count(t, a.db, &model.Property{}, ""))
}

func TestGetPropertyCountsViews(t *testing.T) {
	a := setup(t)
	owner := testutil.CreateUser(t, a.db, "owner")
	viewer := testutil.CreateUser(t, a.db, "viewer")
	property := testutil.CreateProperty(t, a.db, owner, nil)
	path := fmt.Sprintf("/api/properties/%d", property.ID)

	resp, body := a.do(t, http.MethodGet, path, tokenFor(t, viewer), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := body["property"].(map[string]interface{})
	assert.EqualValues(t, 1, got["views_count"])
	assert.Equal(t, "07700000000", got["phone"])

	a.do(t, http.MethodGet, path, tokenFor(t, viewer), nil)

	var stored model.Property
	require.NoError(t, a.db.First(&stored, property.ID).Error)
	assert.Equal(t, int64(2), stored.ViewsCount)

	resp, _ = a.do(t, http.MethodGet, "/api/properties/9999", tokenFor(t, viewer), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInactivePropertyHiddenFromOthers(t *testing.T) {
	a := setup(t)
	owner := testutil.CreateUser(t, a.db, "owner")
	other := testutil.CreateUser(t, a.db, "other")
	property := testutil.CreateProperty(t, a.db, owner, func(p *model.Property) {
		p.Status = model.PropertyStatusInactive
	})
	path := fmt.Sprintf("/api/properties/%d", property.ID)

	resp, _ := a.do(t, http.MethodGet, path, tokenFor(t, other), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = a.do(t, http.MethodGet, path, tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFeedFiltersAndOrdersFeaturedFirst(t *testing.T) {
	a := setup(t)
	owner := testutil.CreateUser(t, a.db, "owner")
	featured := testutil.CreateProperty(t, a.db, owner, func(p *model.Property) { p.IsFeatured = true })
	newest := testutil.CreateProperty(t, a.db, owner, nil)
	testutil.CreateProperty(t, a.db, owner, func(p *model.Property) { p.City = "أربيل" })
	testutil.CreateProperty(t, a.db, owner, func(p *model.Property) { p.Status = model.PropertyStatusSold })

	resp, body := a.do(t, http.MethodGet, "/api/properties/feed?city="+url.QueryEscape("بغداد"), tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := body["properties"].([]interface{})
	require.Len(t, list, 2)
	assert.EqualValues(t, featured.ID, list[0].(map[string]interface{})["id"])
	assert.EqualValues(t, newest.ID, list[1].(map[string]interface{})["id"])
	assert.EqualValues(t, 1, body["page"])
	assert.EqualValues(t, 10, body["limit"])
}

func TestToggleLike(t *testing.T) {
	a := setup(t)
	owner := testutil.CreateUser(t, a.db, "owner")
	fan := testutil.CreateUser(t, a.db, "fan")
	property := testutil.CreateProperty(t, a.db, owner, nil)
	path := fmt.Sprintf("/api/properties/%d/like", property.ID)

	resp, body := a.do(t, http.MethodPost, path, tokenFor(t, fan), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["liked"])
	assert.EqualValues(t, 1, body["like_count"])
	assert.Equal(t, int64(1), count(t, a.db, &model.Notification{}, "user_id = ? AND type = ?", owner.ID, model.NotificationLike))

	resp, body = a.do(t, http.MethodPost, path, tokenFor(t, fan), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["liked"])
	assert.EqualValues(t, 0, body["like_count"])

	// liking your own listing is counted but not notified
	resp, body = a.do(t, http.MethodPost, path, tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, int64(1), count(t, a.db, &model.Notification{}, "user_id = ?", owner.ID))

	resp, body = a.do(t, http.MethodGet, fmt.Sprintf("/api/properties/%d", property.ID), tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := body["property"].(map[string]interface{})
	assert.Equal(t, true, got["is_liked"])
	assert.EqualValues(t, 1, got["like_count"])
}

func TestComments(t *testing.T) {
	a := setup(t)
	owner := testutil.CreateUser(t, a.db, "owner")
	guest := testutil.CreateUser(t, a.db, "guest")
	property := testutil.CreateProperty(t, a.db, owner, nil)
	path := fmt.Sprintf("/api/properties/%d/comments", property.ID)

	resp, body := a.do(t, http.MethodPost, path, tokenFor(t, guest), map[string]string{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Comment content is required", body["error"])

	resp, _ = a.do(t, http.MethodPost, path, tokenFor(t, guest), map[string]string{"content": "كم السعر النهائي؟"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = a.do(t, http.MethodPost, path, tokenFor(t, owner), map[string]string{"content": "قابل للتفاوض"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Equal(t, int64(1), count(t, a.db, &model.Notification{}, "user_id = ? AND type = ?", owner.ID, model.NotificationComment))

	resp, body = a.do(t, http.MethodGet, path, tokenFor(t, guest), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	comments := body["comments"].([]interface{})
	require.Len(t, comments, 2)
	assert.Equal(t, "كم السعر النهائي؟", comments[0].(map[string]interface{})["content"])
}

func TestPropertyStatusAndDeleteRequireOwnership(t *testing.T) {
	a := setup(t)
	owner := testutil.CreateUser(t, a.db, "owner")
	stranger := testutil.CreateUser(t, a.db, "stranger")
	fan := testutil.CreateUser(t, a.db, "fan")
	property := testutil.CreateProperty(t, a.db, owner, nil)
	require.NoError(t, a.db.Create(&model.Like{UserID: fan.ID, PropertyID: property.ID}).Error)

	statusPath := fmt.Sprintf("/api/properties/%d/status", property.ID)
	resp, _ := a.do(t, http.MethodPatch, statusPath, tokenFor(t, stranger), map[string]string{"status": "sold"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := a.do(t, http.MethodPatch, statusPath, tokenFor(t, owner), map[string]string{"status": "gone"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid status", body["error"])

	resp, _ = a.do(t, http.MethodPatch, statusPath, tokenFor(t, owner), map[string]string{"status": "sold"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, http.MethodDelete, fmt.Sprintf("/api/properties/%d", property.ID), tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), count(t, a.db, &model.Like{}, ""))
}

func TestReelsListVideoListingsNewestFirst(t *testing.T) {
	a := setup(t)
	owner := testutil.CreateUser(t, a.db, "owner")
	now := time.Now()

	older := testutil.CreateProperty(t, a.db, owner, func(p *model.Property) {
		p.VideoURL = "/uploads/users/owner/videos/a.mp4"
		p.CreatedAt = now.Add(-2 * time.Hour)
	})
	newer := testutil.CreateProperty(t, a.db, owner, func(p *model.Property) {
		p.VideoURL = "/uploads/users/owner/videos/b.mp4"
		p.CreatedAt = now.Add(-time.Hour)
	})
	testutil.CreateProperty(t, a.db, owner, func(p *model.Property) { p.CreatedAt = now })
	testutil.CreateProperty(t, a.db, owner, func(p *model.Property) {
		p.VideoURL = "/uploads/users/owner/videos/c.mp4"
		p.Status = model.PropertyStatusSold
	})

	resp, body := a.do(t, http.MethodGet, "/api/properties/reels", tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reels := body["properties"].([]interface{})
	require.Len(t, reels, 2)
	assert.EqualValues(t, newer.ID, reels[0].(map[string]interface{})["id"])
	assert.EqualValues(t, older.ID, reels[1].(map[string]interface{})["id"])
}
