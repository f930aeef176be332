package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userboard/internal/repository/sqlite"
	"userboard/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewUserRepository(db)
	require.NoError(t, repo.Init(t.Context()))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router := gin.New()
	router.Use(RequestLogger(logger))
	NewHandler(service.NewUserService(repo), logger).RegisterRoutes(router)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestUserLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/users", `{"username":"user_back","password":"123456"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1}`, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "user_back", body["username"])
	regTime, ok := body["registration_time"].(float64)
	require.True(t, ok, "registration_time should be a number, got %T", body["registration_time"])
	assert.Equal(t, regTime, float64(int64(regTime)), "registration_time should be whole seconds")

	rec = doRequest(t, router, http.MethodPatch, "/users/1", `{"username":"user_new"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_new", decodeBody(t, rec)["username"])

	rec = doRequest(t, router, http.MethodDelete, "/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":"error","message":"user not found"}`, rec.Body.String())
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/users", `{"username":"user_back","password":"123456"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/users", `{"username":"user_back","password":"other"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"error","message":"user already exists"}`, rec.Body.String())
}

func TestCreateUser_ValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/users", `{"username":"user_back"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
	message, ok := body["message"].([]any)
	require.True(t, ok, "message should be a field-error list, got %T", body["message"])
	require.Len(t, message, 1)
	first, ok := message[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "password", first["field"])
}

func TestCreateUser_MalformedBody(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/users", `not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", decodeBody(t, rec)["status"])
}

func TestCreateUser_NonStringFields(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/users", `{"username":1,"password":"123456"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", decodeBody(t, rec)["status"])
}

func TestPatchUser_EmptyBodyIsNoOp(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/users", `{"username":"user_back","password":"123456"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPatch, "/users/1", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_back", decodeBody(t, rec)["username"])
}

func TestMissingUser_NotFound(t *testing.T) {
	router := newTestRouter(t)

	for _, tc := range []struct {
		method string
		body   string
	}{
		{http.MethodGet, ""},
		{http.MethodPatch, `{"username":"user_new"}`},
		{http.MethodDelete, ""},
	} {
		rec := doRequest(t, router, tc.method, "/users/99", tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s /users/99", tc.method)
		assert.JSONEq(t, `{"status":"error","message":"user not found"}`, rec.Body.String())
	}
}

func TestNonNumericID_NotFound(t *testing.T) {
	router := newTestRouter(t)

	for _, id := range []string{"abc", "0", "-1"} {
		rec := doRequest(t, router, http.MethodGet, fmt.Sprintf("/users/%s", id), "")
		assert.Equal(t, http.StatusNotFound, rec.Code, "id %q", id)
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorEnvelope_ContentType(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/users/99", "")
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
