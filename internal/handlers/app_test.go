package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/config"
	"github.com/hostelhub/hostel-backend/internal/database/memstore"
	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/hostelhub/hostel-backend/internal/services"
	"github.com/hostelhub/hostel-backend/internal/storage"
	"github.com/hostelhub/hostel-backend/pkg/jwt"
	"github.com/hostelhub/hostel-backend/pkg/validator"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testMaxLoginFailures = 3

type testApp struct {
	router *gin.Engine
	store  *memstore.Store
	jwt    *jwt.Service
}

// envelope mirrors the response body shape
type envelope struct {
	Success    bool             `json:"success"`
	Data       json.RawMessage  `json:"data"`
	Count      int              `json:"count"`
	Total      int              `json:"total"`
	Pagination query.Pagination `json:"pagination"`
	Error      string           `json:"error"`
	Code       string           `json:"code"`
	Reason     string           `json:"reason"`
}

type account struct {
	ID    string
	Token string
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := testLogger()
	store := memstore.New()
	jwtService := jwt.NewService("test-access-secret-key-123456789", "test-refresh-secret-key-123456789", time.Hour, 24*time.Hour)
	phoneValidator := validator.NewPhoneValidator()

	files, err := storage.NewLocalStore(t.TempDir(), 1<<20, logger)
	require.NoError(t, err)

	auditService := services.NewAuditService(store.AuditLogs(), logger, true)
	rateLimitService := services.NewRateLimitService(store.AuditLogs(), testMaxLoginFailures, 15*time.Minute)
	authService := services.NewAuthService(store, jwtService, phoneValidator, config.AuthConfig{AllowMatronRegistration: true}, bcrypt.MinCost, logger)

	router := NewRouter(RouterDeps{
		Store:          store,
		JWTService:     jwtService,
		Logger:         logger,
		Version:        "test",
		Auth:           NewAuthHandler(authService, rateLimitService, auditService, logger),
		Rooms:          NewRoomHandler(services.NewRoomService(store, files, logger), auditService, files, logger),
		Bookings:       NewBookingHandler(services.NewBookingService(store, 24, logger), auditService, logger),
		Complaints:     NewComplaintHandler(services.NewComplaintService(store, logger), auditService, files, logger),
		Visitors:       NewVisitorHandler(services.NewVisitorService(store, phoneValidator, logger), auditService, logger),
		Advertisements: NewAdvertisementHandler(services.NewAdvertisementService(store, files, logger), auditService, files, logger),
	})

	return &testApp{router: router, store: store, jwt: jwtService}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.serve(t, req)
}

func (a *testApp) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *testApp) register(t *testing.T, name, email, role string) account {
	t.Helper()
	w, env := a.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"phone":    "0771234567",
		"password": "secret123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return account{ID: resp.User.ID, Token: resp.Token}
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}
