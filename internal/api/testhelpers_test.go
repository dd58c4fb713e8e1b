// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/simarsingh24/open-event-server/internal/auth"
	"github.com/simarsingh24/open-event-server/internal/authz"
	"github.com/simarsingh24/open-event-server/internal/config"
	"github.com/simarsingh24/open-event-server/internal/database"
	"github.com/simarsingh24/open-event-server/internal/locations"
	"github.com/simarsingh24/open-event-server/internal/models"
	"github.com/simarsingh24/open-event-server/internal/web"
)

const testPassword = "correct-horse-battery"

var testPasswordHash = sync.OnceValues(func() (string, error) {
	return auth.HashPassword(testPassword)
})

// fakeStore is an in-memory EventStore and auth.UserStore.
type fakeStore struct {
	mu        sync.Mutex
	events    map[string]models.Event
	types     []models.EventType
	users     map[string]*models.User
	pingErr   error
	listErr   error
	createErr error
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }

func (s *fakeStore) LiveEvents(_ context.Context, now time.Time) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var live []models.Event
	for _, e := range s.events {
		if e.IsLive(now) {
			live = append(live, e)
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].StartTime.Before(live[j].StartTime) })
	return live, nil
}

func (s *fakeStore) ListEvents(_ context.Context, limit, offset int) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	all := make([]models.Event, 0, len(s.events))
	for _, e := range s.events {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartTime.After(all[j].StartTime) })
	if offset >= len(all) {
		return []models.Event{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *fakeStore) GetEvent(_ context.Context, id string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &e, nil
}

func (s *fakeStore) CreateEvent(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if e.ID == "" {
		e.ID = "evt-" + strings.ToLower(strings.ReplaceAll(e.Name, " ", "-"))
	}
	if e.State == "" {
		e.State = models.EventStateDraft
	}
	s.events[e.ID] = *e
	return nil
}

func (s *fakeStore) EventTypes(context.Context) ([]models.EventType, error) {
	return s.types, nil
}

func (s *fakeStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) UserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) deleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// fakeIndex serves a fixed snapshot.
type fakeIndex struct {
	snap locations.Snapshot
}

func (f *fakeIndex) Snapshot() locations.Snapshot { return f.snap }

func (f *fakeIndex) Names() []string { return locations.Names(f.snap.Locations) }

type recordingPublisher struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (p *recordingPublisher) PublishEventsChanged(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, id)
	return p.err
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ids...)
}

type testServer struct {
	handler   http.Handler
	store     *fakeStore
	index     *fakeIndex
	publisher *recordingPublisher
	jwt       *auth.JWTManager
	cfg       *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	hash, err := testPasswordHash()
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	now := time.Now()
	store := &fakeStore{
		events: map[string]models.Event{
			"evt-live": {
				ID: "evt-live", Name: "Go Meetup", State: models.EventStatePublished,
				Latitude: 12.97, Longitude: 77.59,
				StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour),
			},
			"evt-draft": {
				ID: "evt-draft", Name: "Secret Planning", State: models.EventStateDraft,
				StartTime: now.Add(24 * time.Hour), EndTime: now.Add(26 * time.Hour),
			},
		},
		types: []models.EventType{
			{ID: "t1", Name: "Conference", Slug: "conference"},
			{ID: "t2", Name: "Meetup", Slug: "meetup"},
		},
		users: map[string]*models.User{
			"admin-1": {ID: "admin-1", Email: "admin@example.com", PasswordHash: hash, Role: models.RoleAdmin},
			"user-1":  {ID: "user-1", Email: "user@example.com", PasswordHash: hash, Role: models.RoleUser},
		},
	}
	index := &fakeIndex{snap: locations.Snapshot{
		Locations: []models.LocationCount{{Name: "Bengaluru", Count: 3}, {Name: "Pune", Count: 1}},
		UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Events:    5,
		Skipped:   1,
	}}

	cfg := &config.Config{
		Security: config.SecurityConfig{
			JWTSecret:         "test-secret-with-at-least-32-characters",
			TokenExpiry:       time.Hour,
			UsernameKey:       "email",
			RateLimitDisabled: true,
		},
		Static: config.StaticConfig{
			URL:        "/static/",
			Dirs:       []string{t.TempDir()},
			UploadsDir: t.TempDir(),
		},
		EventTypes: config.EventTypesConfig{Limit: 10},
		Locations:  config.LocationsConfig{Limit: 10},
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	authn, err := auth.NewAuthenticator(store)
	if err != nil {
		t.Fatalf("NewAuthenticator() error = %v", err)
	}
	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	renderer, err := web.NewRenderer(web.Options{StaticURL: cfg.Static.URL})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	renderer.Register("locations", web.LocationsProcessor(index, cfg.Locations.Limit))
	renderer.Register("event_types", web.EventTypesProcessor(store, cfg.EventTypes.Limit))
	renderer.Register("current_user", CurrentUserProcessor())

	publisher := &recordingPublisher{}
	router := NewRouter(&Dependencies{
		Config:        cfg,
		Store:         store,
		Index:         index,
		Publisher:     publisher,
		Renderer:      renderer,
		JWTManager:    jwtManager,
		Authenticator: authn,
		Enforcer:      enforcer,
	})

	return &testServer{
		handler:   router.SetupChi(),
		store:     store,
		index:     index,
		publisher: publisher,
		jwt:       jwtManager,
		cfg:       cfg,
	}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	u := s.store.users[userID]
	token, err := s.jwt.GenerateToken(&auth.Identity{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return token
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}
