package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/qanda/internal/config"
	"github.com/sujalbistaa/qanda/internal/db"
	"github.com/sujalbistaa/qanda/internal/models"
	"github.com/sujalbistaa/qanda/internal/store"
	"github.com/sujalbistaa/qanda/internal/ws"
)

const testPassword = "A9q5W1z7S5xE3d"

type testApp struct {
	t      *testing.T
	router *gin.Engine
	store  *store.Store
	cfg    *config.Config
}

// newTestApp builds the full router over a fresh in-memory database.
func newTestApp(t *testing.T, mutate func(cfg *config.Config)) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.Open("sqlite://:memory:", false)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		GinMode:        gin.TestMode,
		CORSOrigin:     "*",
		SessionTTL:     time.Hour,
		AuthRatePerMin: 6000,
		AuthRateBurst:  1000,
	}
	if mutate != nil {
		mutate(cfg)
	}

	st := store.New(conn)
	router := gin.New()
	SetupRoutes(t.Context(), router, &Env{Store: st, Hub: ws.NewHub(), Cfg: cfg})
	return &testApp{t: t, router: router, store: st, cfg: cfg}
}

// do sends a request; a non-nil form is sent url-encoded.
func (a *testApp) do(method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) user(username string) *models.User {
	a.t.Helper()
	u, err := a.store.CreateUser(username, "", testPassword)
	if err != nil {
		a.t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

// session logs u in directly through the store and returns the cookie.
func (a *testApp) session(u *models.User) *http.Cookie {
	a.t.Helper()
	s, err := a.store.CreateSession(u.ID, time.Hour)
	if err != nil {
		a.t.Fatalf("CreateSession: %v", err)
	}
	return &http.Cookie{Name: sessionCookie, Value: s.ID}
}

func (a *testApp) question(author *models.User, topic string) uint {
	a.t.Helper()
	id, err := a.store.CreateQuestion(author.ID, topic, "description of "+topic)
	if err != nil {
		a.t.Fatalf("CreateQuestion: %v", err)
	}
	return id
}

func (a *testApp) count(model any) int64 {
	a.t.Helper()
	var n int64
	if err := a.store.DB().Model(model).Count(&n).Error; err != nil {
		a.t.Fatalf("count: %v", err)
	}
	return n
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func expectRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got %d (body: %s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("Expected redirect to %q, got %q", location, got)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("Expected status %d, got %d (body: %s)", status, w.Code, w.Body.String())
	}
}
