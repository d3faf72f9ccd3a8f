package controller_test

import (
	"fmt"
	"net/http"
	"testing"

	"diyari_backend/internal/model"
	"diyari_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePropertyRequestNotifiesMatchingOwners(t *testing.T) {
	a := setup(t)
	owner := testutil.CreateUser(t, a.db, "owner")
	buyer := testutil.CreateUser(t, a.db, "buyer")
	match := testutil.CreateProperty(t, a.db, owner, nil)
	testutil.CreateProperty(t, a.db, owner, func(p *model.Property) { p.City = "البصرة" })
	testutil.CreateProperty(t, a.db, owner, func(p *model.Property) { p.Price = 100000001 })

	resp, body := a.do(t, http.MethodPost, "/api/property-requests", tokenFor(t, buyer), map[string]interface{}{
		"title":            "أبحث عن شقة في بغداد",
		"property_type":    "sale",
		"category":         "apartment",
		"min_price":        100000000,
		"max_price":        100000000,
		"min_bedrooms":     3,
		"preferred_cities": []string{"بغداد"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.EqualValues(t, 1, body["match_count"])

	var notes []model.Notification
	require.NoError(t, a.db.Where("user_id = ?", owner.ID).Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationPropertyMatch, notes[0].Type)
	assert.Equal(t, "طلب عقار مطابق لعقارك", notes[0].Title)
	require.NotNil(t, notes[0].PropertyID)
	assert.Equal(t, match.ID, *notes[0].PropertyID)

	resp, body = a.do(t, http.MethodGet, "/api/property-requests/my-requests", tokenFor(t, buyer), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	requests := body["requests"].([]interface{})
	require.Len(t, requests, 1)
	assert.EqualValues(t, 1, requests[0].(map[string]interface{})["match_count"])
}

func TestCreatePropertyRequestZeroBoundsMatch(t *testing.T) {
	a := setup(t)
	owner := testutil.CreateUser(t, a.db, "owner")
	buyer := testutil.CreateUser(t, a.db, "buyer")
	testutil.CreateProperty(t, a.db, owner, func(p *model.Property) { p.Bathrooms = 1 })

	resp, body := a.do(t, http.MethodPost, "/api/property-requests", tokenFor(t, buyer), map[string]interface{}{
		"title":         "شقة",
		"property_type": "sale",
		"category":      "apartment",
		"min_bedrooms":  2,
		"max_bedrooms":  0,
		"max_price":     0,
		"max_area":      0,
		"min_bathrooms": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.EqualValues(t, 1, body["match_count"])
	assert.EqualValues(t, 1, count(t, a.db, &model.Notification{}, "user_id = ?", owner.ID))
}

func TestCreatePropertyRequestValidation(t *testing.T) {
	a := setup(t)
	token := tokenFor(t, testutil.CreateUser(t, a.db, "buyer"))

	resp, body := a.do(t, http.MethodPost, "/api/property-requests", token, map[string]interface{}{"title": "بيت"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Title, property type, and category are required", body["error"])

	resp, body = a.do(t, http.MethodPost, "/api/property-requests", token, map[string]interface{}{
		"title":         "بيت",
		"property_type": "sale",
		"category":      "house",
		"min_price":     500,
		"max_price":     100,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid input", body["error"])
}

func TestUpdateRequestStatus(t *testing.T) {
	a := setup(t)
	buyer := testutil.CreateUser(t, a.db, "buyer")
	stranger := testutil.CreateUser(t, a.db, "stranger")

	request := &model.PropertyRequest{
		UserID:       buyer.ID,
		Title:        "أرض للبناء",
		PropertyType: model.PropertyTypeSale,
		Category:     model.CategoryLand,
	}
	request.Normalize()
	require.NoError(t, a.db.Create(request).Error)
	path := fmt.Sprintf("/api/property-requests/%d/status", request.ID)

	resp, body := a.do(t, http.MethodPatch, path, tokenFor(t, stranger), map[string]string{"status": "fulfilled"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Request not found or not authorized", body["error"])

	resp, body = a.do(t, http.MethodPatch, path, tokenFor(t, buyer), map[string]string{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid status", body["error"])

	resp, _ = a.do(t, http.MethodPatch, path, tokenFor(t, buyer), map[string]string{"status": "fulfilled"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored model.PropertyRequest
	require.NoError(t, a.db.First(&stored, request.ID).Error)
	assert.Equal(t, model.RequestStatusFulfilled, stored.Status)

	resp, _ = a.do(t, http.MethodDelete, fmt.Sprintf("/api/property-requests/%d", request.ID), tokenFor(t, stranger), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = a.do(t, http.MethodDelete, fmt.Sprintf("/api/property-requests/%d", request.ID), tokenFor(t, buyer), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
