package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"diyari_backend/internal/model"
	"diyari_backend/internal/router"
	"diyari_backend/internal/testutil"
	"diyari_backend/pkg/config"
	"diyari_backend/pkg/utils/jwt"
	"diyari_backend/pkg/utils/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testApp struct {
	app *fiber.App
	db  *gorm.DB
}

func setup(t *testing.T) *testApp {
	t.Helper()
	return setupWith(t, nil)
}

// setupWith lets a test adjust the config before the router is built.
func setupWith(t *testing.T, mutate func(cfg *config.Config)) *testApp {
	t.Helper()

	db := testutil.NewDB(t)
	jwt.Configure("test-secret", time.Hour)

	dir := t.TempDir()
	local, err := storage.NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)
	storage.Default = local
	t.Cleanup(func() { storage.Default = nil })

	cfg := &config.Config{
		Server: config.ServerConfig{
			BodyLimit:      20 * 1024 * 1024,
			AllowOrigins:   "*",
			AuthRateMax:    1000,
			AuthRateWindow: time.Minute,
		},
		Upload: config.UploadConfig{
			Driver:       "local",
			Dir:          dir,
			PublicPath:   "/uploads",
			MaxImageSize: 1024 * 1024,
			MaxVideoSize: 5 * 1024 * 1024,
			MaxImages:    10,
		},
	}

	if mutate != nil {
		mutate(cfg)
	}

	return &testApp{app: router.New(cfg), db: db}
}

func tokenFor(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := jwt.GenerateToken(user.ID, user.Username, string(user.Role))
	require.NoError(t, err)
	return token
}

func (a *testApp) send(t *testing.T, req *http.Request, token string) (*http.Response, map[string]interface{}) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	body := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp, body
}

func (a *testApp) do(t *testing.T, method, path, token string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(t, req, token)
}

type filePart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func (a *testApp) multipart(t *testing.T, method, path, token string, fields map[string]string, files []filePart) (*http.Response, map[string]interface{}) {
	t.Helper()

	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return a.send(t, req, token)
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func listingFields() map[string]string {
	return map[string]string{
		"title":         "بيت في المنصور",
		"price":         "250000000",
		"property_type": "sale",
		"category":      "house",
		"location":      "المنصور",
		"city":          "بغداد",
		"bedrooms":      "4",
		"features":      "حديقة, كراج",
	}
}

func count(t *testing.T, db *gorm.DB, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
