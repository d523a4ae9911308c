package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bloombouqet/bloom_shop/internal/models"
	"github.com/bloombouqet/bloom_shop/internal/repo"
	"github.com/bloombouqet/bloom_shop/internal/service"
)

type fakeObjectStore struct {
	uploads int
}

func (f *fakeObjectStore) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.uploads++
	return "https://cdn.test/" + key, nil
}

type testEnv struct {
	T     *testing.T
	E     *echo.Echo
	DB    *gorm.DB
	Store *fakeObjectStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	// a fresh pool connection would see an empty in-memory database
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.User{}, &models.AccessToken{}, &models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	r := repo.New(db)
	tokens := service.NewTokenService(r)
	store := &fakeObjectStore{}

	authSvc := &service.AuthService{Repo: r, Tokens: tokens}
	catalogSvc := &service.CatalogService{Repo: r, Images: store}

	e := echo.New()
	Register(e, &Deps{
		DB:      db,
		Auth:    &AuthHTTP{Svc: authSvc},
		Catalog: &CatalogHTTP{Svc: catalogSvc},
		AuthMW:  &AuthMiddleware{Tokens: tokens},
	})

	return &testEnv{T: t, E: e, DB: db, Store: store}
}

func (env *testEnv) doJSON(method, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	env.T.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(env.T, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doForm(method, path, form, token string) *httptest.ResponseRecorder {
	env.T.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(form)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doMultipart(method, path string, fields map[string]string, imageName string, token string) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(env.T, mw.WriteField(k, v))
	}
	if imageName != "" {
		fw, err := mw.CreateFormFile("image", imageName)
		require.NoError(env.T, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(env.T, err)
	}
	require.NoError(env.T, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func registerPayload() map[string]string {
	return map[string]string{
		"name":                  "Alice Flowers",
		"username":              "alice",
		"email":                 "alice@x.com",
		"phone":                 "0812345678",
		"password":              "secret1",
		"password_confirmation": "secret1",
	}
}

// registerUser registers alice and returns her bearer token.
func (env *testEnv) registerUser() string {
	env.T.Helper()

	rec := env.doJSON(http.MethodPost, "/api/v1/register", registerPayload(), "")
	require.Equal(env.T, http.StatusCreated, rec.Code)

	body := decodeBody(env.T, rec)
	data := body["data"].(map[string]interface{})
	return data["token"].(string)
}

func (env *testEnv) seedCategory(name string) uint {
	env.T.Helper()
	cat := models.Category{Name: name}
	require.NoError(env.T, env.DB.Create(&cat).Error)
	return cat.ID
}
