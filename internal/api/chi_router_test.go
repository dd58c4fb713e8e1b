// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/simarsingh24/open-event-server/internal/auth"
	"github.com/simarsingh24/open-event-server/internal/locations"
	"github.com/simarsingh24/open-event-server/internal/models"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func TestNotFound_Negotiation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		path     string
		accept   string
		wantJSON bool
	}{
		{"api client", "/no/such/page", "application/json", true},
		{"browser", "/no/such/page", "text/html,application/xhtml+xml,*/*;q=0.8", false},
		{"no accept header", "/no/such/page", "", false},
		{"equal preference", "/no/such/page", "application/json, text/html", false},
		{"json preferred", "/no/such/page", "text/html;q=0.5, application/json", true},
		{"unknown api route", "/api/v1/nothing", "application/json", true},
		{"unknown api route from browser", "/api/v1/nothing", "text/html", false},
		{"missing static file", "/static/missing.css", "application/json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := srv.do(req)

			if rec.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", rec.Code)
			}
			ct := rec.Header().Get("Content-Type")
			if tt.wantJSON {
				if !strings.HasPrefix(ct, "application/json") {
					t.Errorf("Content-Type = %q, want JSON", ct)
				}
				if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"endpoint_not_found"}` {
					t.Errorf("body = %s", got)
				}
				return
			}
			if !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q, want HTML", ct)
			}
			body := rec.Body.String()
			if !strings.Contains(body, "Page not found") || !strings.Contains(body, tt.path) {
				t.Errorf("404 page missing heading or path: %s", body)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/event-types", nil)
	req.Header.Set("Accept", "application/json")
	rec := srv.do(req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"method_not_allowed"}` {
		t.Errorf("body = %s", got)
	}

	rec = srv.do(httptest.NewRequest(http.MethodDelete, "/api/v1/event-types", nil))
	if rec.Code != http.StatusMethodNotAllowed || strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		t.Errorf("browser 405 = %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	data, _ := resp.Data.(map[string]interface{})
	if resp.Status != "success" || data["status"] != "healthy" || data["database"] != true {
		t.Errorf("health = %+v", resp)
	}
	if data["locations_updated_at"] == nil {
		t.Error("locations_updated_at should be reported once the index was built")
	}

	srv.store.pingErr = errors.New("connection refused")
	rec = srv.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	data, _ = decodeResponse(t, rec).Data.(map[string]interface{})
	if data["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", data["status"])
	}
}

func TestListEvents(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantCount int
		wantError string
	}{
		{"default page", "", http.StatusOK, 2, ""},
		{"limited", "?limit=1", http.StatusOK, 1, ""},
		{"past the end", "?offset=10", http.StatusOK, 0, ""},
		{"not a number", "?limit=ten", http.StatusBadRequest, 0, ErrCodeBadRequest},
		{"limit too large", "?limit=1000", http.StatusBadRequest, 0, "VALIDATION_ERROR"},
		{"negative offset", "?offset=-1", http.StatusBadRequest, 0, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/v1/events"+tt.query, nil))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			resp := decodeResponse(t, rec)
			if tt.wantError != "" {
				if resp.Error == nil || resp.Error.Code != tt.wantError {
					t.Errorf("error = %+v, want code %s", resp.Error, tt.wantError)
				}
				return
			}
			if resp.Metadata.Count == nil || *resp.Metadata.Count != tt.wantCount {
				t.Errorf("metadata.count = %v, want %d", resp.Metadata.Count, tt.wantCount)
			}
		})
	}

	srv.store.listErr = errors.New("disk full")
	rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 on store failure", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Error == nil || resp.Error.Code != ErrCodeDatabaseError {
		t.Errorf("error = %+v, want DATABASE_ERROR", resp.Error)
	}
}

func TestGetEvent(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/v1/events/evt-live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data, _ := decodeResponse(t, rec).Data.(map[string]interface{})
	if data["name"] != "Go Meetup" {
		t.Errorf("name = %v", data["name"])
	}

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/api/v1/events/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestCreateEvent(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.token(t, "admin-1")
	userToken := srv.token(t, "user-1")

	valid := `{"name":"GopherCon India","latitude":12.97,"longitude":77.59,"state":"published",
		"start_time":"2026-11-01T09:00:00Z","end_time":"2026-11-01T18:00:00Z"}`

	tests := []struct {
		name      string
		token     string
		body      string
		wantCode  int
		wantError string
	}{
		{"anonymous", "", valid, http.StatusUnauthorized, ""},
		{"user role", userToken, valid, http.StatusForbidden, ""},
		{"malformed body", adminToken, `{"name":`, http.StatusBadRequest, ErrCodeBadRequest},
		{"missing name", adminToken, `{"latitude":1,"longitude":1,"start_time":"2026-11-01T09:00:00Z","end_time":"2026-11-01T18:00:00Z"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"ends before start", adminToken, `{"name":"x","start_time":"2026-11-01T09:00:00Z","end_time":"2026-10-01T18:00:00Z"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"latitude out of range", adminToken, `{"name":"x","latitude":123,"start_time":"2026-11-01T09:00:00Z","end_time":"2026-11-01T18:00:00Z"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"admin", adminToken, valid, http.StatusCreated, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := srv.do(req)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantError != "" {
				if resp := decodeResponse(t, rec); resp.Error == nil || resp.Error.Code != tt.wantError {
					t.Errorf("error = %+v, want %s", resp.Error, tt.wantError)
				}
			}
		})
	}

	published := srv.publisher.published()
	if len(published) != 1 || published[0] != "evt-gophercon-india" {
		t.Errorf("published = %v, want exactly the created event", published)
	}
	if _, err := srv.store.GetEvent(t.Context(), "evt-gophercon-india"); err != nil {
		t.Errorf("created event not stored: %v", err)
	}
}

func TestCreateEvent_PublishFailureStillCreates(t *testing.T) {
	srv := newTestServer(t)
	srv.publisher.err = errors.New("bus closed")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(
		`{"name":"Retry Meetup","start_time":"2026-11-01T09:00:00Z","end_time":"2026-11-01T10:00:00Z"}`))
	req.Header.Set("Authorization", "Bearer "+srv.token(t, "admin-1"))
	rec := srv.do(req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

func TestEventTypesAndLocations(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/v1/event-types", nil))
	resp := decodeResponse(t, rec)
	if rec.Code != http.StatusOK || resp.Metadata.Count == nil || *resp.Metadata.Count != 2 {
		t.Fatalf("event types = %d %+v", rec.Code, resp)
	}

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/api/v1/locations", nil))
	resp = decodeResponse(t, rec)
	items, _ := resp.Data.([]interface{})
	if len(items) != 2 {
		t.Fatalf("locations = %v", resp.Data)
	}
	first, _ := items[0].(map[string]interface{})
	if first["name"] != "Bengaluru" || first["count"] != float64(3) {
		t.Errorf("first location = %v", first)
	}
	if resp.Metadata.UpdatedAt == nil || !resp.Metadata.UpdatedAt.Equal(srv.index.snap.UpdatedAt) {
		t.Errorf("updated_at = %v", resp.Metadata.UpdatedAt)
	}

	// Before the first build the list is empty.
	srv.index.snap = locations.Snapshot{}
	rec = srv.do(httptest.NewRequest(http.MethodGet, "/api/v1/locations", nil))
	resp = decodeResponse(t, rec)
	if rec.Code != http.StatusOK || resp.Metadata.Count == nil || *resp.Metadata.Count != 0 {
		t.Errorf("empty index = %d %s", rec.Code, rec.Body.String())
	}
	if resp.Metadata.UpdatedAt != nil {
		t.Errorf("updated_at = %v, want none before the first build", resp.Metadata.UpdatedAt)
	}
}

func TestTokenLogin(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/auth", "/api/v1/auth/login"} {
		t.Run(path, func(t *testing.T) {
			body := `{"email":"admin@example.com","password":"` + testPassword + `"}`
			rec := srv.do(httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
			}
			var tok auth.TokenResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &tok); err != nil || tok.AccessToken == "" {
				t.Fatalf("token response = %s", rec.Body.String())
			}
			claims, err := srv.jwt.ValidateToken(tok.AccessToken)
			if err != nil || claims.Identity != "admin-1" {
				t.Errorf("claims = %+v, err = %v", claims, err)
			}
		})
	}
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Go Meetup", "<li>Bengaluru</li>", `data-slug="meetup"`, `href="/login"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %q", want)
		}
	}
	if strings.Contains(body, "Secret Planning") {
		t.Error("draft events must not be listed")
	}

	// Signed-in users see their email instead of the sign-in link.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.TokenCookie, Value: srv.token(t, "user-1")})
	body = srv.do(req).Body.String()
	if !strings.Contains(body, "user@example.com") {
		t.Error("index page should show the signed-in user")
	}
}

func TestAdminPage(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/admin/", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("anonymous status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next="+url.QueryEscape("/admin/") {
		t.Errorf("redirect = %q", loc)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	req.AddCookie(&http.Cookie{Name: auth.TokenCookie, Value: srv.token(t, "user-1")})
	if rec := srv.do(req); rec.Code != http.StatusForbidden {
		t.Errorf("user status = %d, want 403", rec.Code)
	}

	adminToken := srv.token(t, "admin-1")
	req = httptest.NewRequest(http.MethodGet, "/admin/", nil)
	req.AddCookie(&http.Cookie{Name: auth.TokenCookie, Value: adminToken})
	rec = srv.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"admin@example.com (admin)", "<dd>5</dd>", "2026-03-01 12:00 UTC", "<dd>1</dd>"} {
		if !strings.Contains(body, want) {
			t.Errorf("admin page missing %q", want)
		}
	}

	// A token for a deleted account is dropped.
	srv.store.deleteUser("admin-1")
	req = httptest.NewRequest(http.MethodGet, "/admin/", nil)
	req.AddCookie(&http.Cookie{Name: auth.TokenCookie, Value: adminToken})
	rec = srv.do(req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != loginPath {
		t.Errorf("deleted user = %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginForm(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/login?next=/admin/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `name="next" value="/admin/"`) {
		t.Fatalf("login page = %d %s", rec.Code, rec.Body.String())
	}

	post := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return srv.do(req)
	}

	rec = post(url.Values{"email": {"admin@example.com"}, "password": {"wrong"}, "next": {"/admin/"}})
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Invalid email or password.") {
		t.Errorf("bad credentials = %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no cookie should be set on failure")
	}

	rec = post(url.Values{"email": {"admin@example.com"}, "password": {testPassword}, "next": {"https://evil.example"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != adminPath {
		t.Errorf("login = %d %q, want redirect to %s", rec.Code, rec.Header().Get("Location"), adminPath)
	}
	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.TokenCookie {
			token = c.Value
		}
	}
	if _, err := srv.jwt.ValidateToken(token); err != nil {
		t.Errorf("cookie token invalid: %v", err)
	}

	// Already signed in: the login page forwards to next.
	req := httptest.NewRequest(http.MethodGet, "/login?next=/", nil)
	req.AddCookie(&http.Cookie{Name: auth.TokenCookie, Value: token})
	if rec := srv.do(req); rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("signed-in login page = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = srv.do(httptest.NewRequest(http.MethodPost, "/logout", nil))
	cookies := rec.Result().Cookies()
	if rec.Code != http.StatusSeeOther || len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("logout = %d %v", rec.Code, cookies)
	}
}

func TestStaticFiles(t *testing.T) {
	srv := newTestServer(t)
	staticDir := srv.cfg.Static.Dirs[0]
	uploadsDir := srv.cfg.Static.UploadsDir

	if err := os.MkdirAll(filepath.Join(staticDir, "css"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(staticDir, "css", "main.css"), []byte("body{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(uploadsDir, "logo.txt"), []byte("uploaded"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/static/css/main.css", http.StatusOK, "body{}"},
		{"/static/logo.txt", http.StatusOK, "uploaded"},
		{"/static/css/", http.StatusNotFound, ""},
		{"/static/../go.mod", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Accept", "application/json")
			rec := srv.do(req)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                     adminPath,
		"/":                    "/",
		"/admin/?tab=1":        "/admin/?tab=1",
		"//evil.example":       adminPath,
		"/\\evil.example":      adminPath,
		"https://evil.example": adminPath,
		"relative":             adminPath,
	}
	for in, want := range tests {
		if got := safeNext(in); got != want {
			t.Errorf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}
