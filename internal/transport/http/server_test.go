package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anonymizer-api/internal/bootstrap"
	"anonymizer-api/internal/config"
	"anonymizer-api/internal/logging"
	"anonymizer-api/internal/pkg/jwtutil"
)

const testSecret = "router-test-secret"

func newTestRouter(t *testing.T) (*gin.Engine, *bootstrap.App) {
	t.Helper()

	cfg := config.Default()
	cfg.App.GinMode = gin.TestMode
	cfg.Auth.JWTSecret = testSecret
	cfg.Storage.StaticDir = t.TempDir()
	cfg.Storage.UploadDir = ""

	app, err := bootstrap.Build(cfg, logging.Discard())
	require.NoError(t, err)
	return NewRouter(app), app
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func register(t *testing.T, r http.Handler, name, email, password string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/register/", map[string]string{
		"name": name, "email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "bearer", body["token_type"])
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 3), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func upload(t *testing.T, r http.Handler, token, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_DuplicateEmail(t *testing.T) {
	r, _ := newTestRouter(t)

	register(t, r, "Alice", "alice@example.com", "pw")

	w := doJSON(t, r, http.MethodPost, "/register/", map[string]string{
		"name": "Other", "email": "alice@example.com", "password": "pw2",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already registered", decode(t, w)["detail"])
}

func TestRegister_MissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/register/", map[string]string{"email": "a@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_TokenCarriesEmail(t *testing.T) {
	r, _ := newTestRouter(t)
	register(t, r, "Bob", "bob@example.com", "hunter2")

	w := doJSON(t, r, http.MethodPost, "/login/", map[string]string{
		"email": "bob@example.com", "password": "hunter2",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "bearer", body["token_type"])

	claims, err := jwtutil.ParseToken(testSecret, body["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", claims.Subject)
}

func TestLogin_BadCredentials(t *testing.T) {
	r, _ := newTestRouter(t)
	register(t, r, "Bob", "bob@example.com", "hunter2")

	for _, body := range []map[string]string{
		{"email": "bob@example.com", "password": "wrong"},
		{"email": "nobody@example.com", "password": "hunter2"},
	} {
		w := doJSON(t, r, http.MethodPost, "/login/", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Incorrect email or password", decode(t, w)["detail"])
	}
}

func TestProfile(t *testing.T) {
	r, _ := newTestRouter(t)
	token := register(t, r, "Carol", "carol@example.com", "pw")

	w := doJSON(t, r, http.MethodGet, "/profile/", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "Carol", body["name"])
	assert.Equal(t, "carol@example.com", body["email"])
	assert.NotContains(t, body, "password")
}

func TestProfile_RejectsBadTokens(t *testing.T) {
	r, _ := newTestRouter(t)
	token := register(t, r, "Dan", "dan@example.com", "pw")

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "dan@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	foreign, err := jwtutil.GenerateToken("someone-else", time.Hour, "dan@example.com")
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"tampered":     tampered,
		"wrong secret": foreign,
		"garbage":      "abc.def.ghi",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodGet, "/profile/", nil, tok)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Invalid authentication credentials", decode(t, w)["detail"])
		})
	}
}

func TestProfile_MissingOrMalformedHeader(t *testing.T) {
	r, _ := newTestRouter(t)
	token := register(t, r, "Eve", "eve@example.com", "pw")

	req := httptest.NewRequest(http.MethodGet, "/profile/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/profile/", nil)
	req.Header.Set("Authorization", "Basic "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfile_UnknownUser(t *testing.T) {
	r, _ := newTestRouter(t)

	// validly signed, but the account does not exist (e.g. after a restart)
	token, err := jwtutil.GenerateToken(testSecret, time.Hour, "ghost@example.com")
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/profile/", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decode(t, w)["detail"])
}

func TestUpload_RequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	w := upload(t, r, "", "a.png", "image/png", pngImage(t, 10, 10))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpload_NonImage(t *testing.T) {
	r, _ := newTestRouter(t)
	token := register(t, r, "F", "f@example.com", "pw")

	w := upload(t, r, token, "notes.txt", "text/plain", []byte("hello world"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File must be an image", decode(t, w)["detail"])

	w = upload(t, r, token, "blob.bin", "application/octet-stream", []byte("still not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_MissingFile(t *testing.T) {
	r, _ := newTestRouter(t)
	token := register(t, r, "G", "g@example.com", "pw")

	w := doJSON(t, r, http.MethodPost, "/upload/", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_FaceCounts(t *testing.T) {
	r, _ := newTestRouter(t)
	token := register(t, r, "H", "h@example.com", "pw")

	tests := []struct {
		w, h  int
		faces float64
	}{
		{500, 500, 3},
		{400, 400, 3},
		{300, 300, 1},
		{200, 200, 1},
		{150, 150, 0},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%dx%d", tc.w, tc.h), func(t *testing.T) {
			name := fmt.Sprintf("img_%dx%d.png", tc.w, tc.h)
			w := upload(t, r, token, name, "image/png", pngImage(t, tc.w, tc.h))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			body := decode(t, w)
			assert.Equal(t, tc.faces, body["faces_detected"])
			assert.Equal(t, "success", body["status"])
			assert.Equal(t, "File processed successfully", body["message"])
			assert.Equal(t, name, body["original_filename"])
			assert.Equal(t, "processed_"+name, body["processed_filename"])
			assert.Equal(t, "/static/processed_"+name, body["processed_url"])
		})
	}
}

func TestUpload_ResultServedAsStatic(t *testing.T) {
	r, _ := newTestRouter(t)
	token := register(t, r, "I", "i@example.com", "pw")

	w := upload(t, r, token, "car.png", "image/png", pngImage(t, 320, 240))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	url := decode(t, w)["processed_url"].(string)

	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	img, format, err := image.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, image.Rect(0, 0, 320, 240), img.Bounds())
}

func TestUpload_CorruptImageIs500(t *testing.T) {
	r, _ := newTestRouter(t)
	token := register(t, r, "J", "j@example.com", "pw")

	w := upload(t, r, token, "broken.png", "image/png", []byte("this is not a png"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, strings.HasPrefix(decode(t, w)["detail"].(string), "Processing error: "))
}

func TestUpload_TooLarge(t *testing.T) {
	r, app := newTestRouter(t)
	app.Config.Upload.MaxSizeMB = 1
	r = NewRouter(app)
	token := register(t, r, "K", "k@example.com", "pw")

	w := upload(t, r, token, "huge.png", "image/png", bytes.Repeat([]byte{0x89}, 2<<20))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInfoEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Data Anonymization API is working!", decode(t, w)["message"])

	w = doJSON(t, r, http.MethodGet, "/test", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "API is working!", body["status"])
	assert.Contains(t, body["endpoints"], "POST /upload/")
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	register(t, r, "L", "l@example.com", "pw")

	w := doJSON(t, r, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(1), body["users"])
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, true, deps["static_dir"].(map[string]any)["ok"])
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/upload/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRequestIDHeader(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/", nil, "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
