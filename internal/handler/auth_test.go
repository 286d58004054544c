package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/voraviaadmin/voravia/internal/middleware"
	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/store"
)

func setupAuthHandlerTest(t *testing.T) (*AuthHandler, *store.SessionStore) {
	t.Helper()
	db := testDB(t)
	sessions := store.NewSessionStore(db)
	h := NewAuthHandler(store.NewUserStore(db), sessions, testLogger())
	return h, sessions
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	h, sessions := setupAuthHandlerTest(t)

	body := strings.NewReader(`{"email": "Kim@Example.com", "name": "Kim", "password": "hunter2hunter2"}`)
	req := httptest.NewRequest("POST", "/api/auth/register", body)
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	var user model.User
	decodeBody(t, rec, &user)
	if user.Email != "kim@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}

	cookie := sessionCookie(t, rec)
	sess, err := sessions.GetByToken(cookie.Value)
	if err != nil || sess == nil {
		t.Fatalf("session not created: %v", err)
	}

	// Login is case-insensitive on email.
	body = strings.NewReader(`{"email": "KIM@example.com", "password": "hunter2hunter2"}`)
	req = httptest.NewRequest("POST", "/api/auth/login", body)
	rec = httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	sessionCookie(t, rec)
}

func TestLoginWrongPassword(t *testing.T) {
	h, _ := setupAuthHandlerTest(t)

	body := strings.NewReader(`{"email": "kim@example.com", "name": "Kim", "password": "hunter2hunter2"}`)
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest("POST", "/api/auth/register", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	for _, payload := range []string{
		`{"email": "kim@example.com", "password": "wrong-password"}`,
		`{"email": "nobody@example.com", "password": "hunter2hunter2"}`,
	} {
		rec = httptest.NewRecorder()
		h.Login(rec, httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(payload)))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d for %s", rec.Code, http.StatusUnauthorized, payload)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	h, _ := setupAuthHandlerTest(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"bad email", `{"email": "not-an-email", "password": "hunter2hunter2"}`, http.StatusBadRequest},
		{"short password", `{"email": "kim@example.com", "password": "short"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.Register(rec, httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(tc.body)))
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _ := setupAuthHandlerTest(t)

	payload := `{"email": "kim@example.com", "password": "hunter2hunter2"}`
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(payload)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(payload)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second register status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	h, sessions := setupAuthHandlerTest(t)

	body := strings.NewReader(`{"email": "kim@example.com", "password": "hunter2hunter2"}`)
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest("POST", "/api/auth/register", body))
	cookie := sessionCookie(t, rec)

	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d: %s", rec.Code, rec.Body.String())
	}
	sess, err := sessions.GetByToken(cookie.Value)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess != nil {
		t.Error("session should be deleted")
	}
}
