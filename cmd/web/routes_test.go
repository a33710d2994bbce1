package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/AdamBeresnev/tablecup/internal/config"
	"github.com/AdamBeresnev/tablecup/internal/db"
	"github.com/AdamBeresnev/tablecup/internal/lock"
	"github.com/AdamBeresnev/tablecup/internal/realtime"
	"github.com/AdamBeresnev/tablecup/internal/service"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testClient struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func setupTestApp(t *testing.T) *testClient {
	t.Helper()

	database, err := db.Open(config.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database, config.DriverSQLite))

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{
		DBDriver:          config.DriverSQLite,
		AdminPasswordHash: hash,
		SessionLifetime:   time.Hour,
	}

	mockClock := clock.NewMock()
	mockClock.Set(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))

	broker := realtime.NewBroker()
	t.Cleanup(broker.Shutdown)

	app := newApplication(cfg, database, lock.NewLocal(), broker, mockClock)
	return &testClient{t: t, handler: app.routes()}
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func (c *testClient) login() {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/auth/login", map[string]string{"password": "secret"})
	require.Equal(c.t, http.StatusNoContent, rec.Code)
	c.cookies = rec.Result().Cookies()
	require.NotEmpty(c.t, c.cookies)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAuth(t *testing.T) {
	c := setupTestApp(t)

	rec := c.do(http.MethodPost, "/events", service.EventInput{Name: "Cup", Mode: bracket.ModeSingleElimination, TableCount: 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/auth/login", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c.login()
	rec = c.do(http.MethodPost, "/events", service.EventInput{Name: "Cup", Mode: bracket.ModeSingleElimination, TableCount: 1})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = c.do(http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = c.do(http.MethodPost, "/events", service.EventInput{Name: "Cup", Mode: bracket.ModeSingleElimination, TableCount: 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEventFlow(t *testing.T) {
	c := setupTestApp(t)
	c.login()

	rec := c.do(http.MethodPost, "/events", service.EventInput{Name: "Cup", Mode: bracket.ModeSingleElimination, TableCount: 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	event := decode[bracket.Event](t, rec)
	base := "/events/" + event.ID.String()

	for i := 1; i <= 4; i++ {
		seed := i
		rec = c.do(http.MethodPost, base+"/teams", service.TeamInput{Name: fmt.Sprintf("T%d", i), Seed: &seed})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = c.do(http.MethodPost, base+"/generate-bracket", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decode[service.EventData](t, rec)
	assert.Equal(t, bracket.EventActive, data.Event.Status)
	assert.Len(t, data.Matches, 3)

	rec = c.do(http.MethodPost, base+"/tables/assign", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]bracket.Match](t, rec), 2)

	for {
		var ready *bracket.Match
		for _, m := range data.Matches {
			if !m.Completed() && !m.IsBye && m.Full() {
				ready = &m
				break
			}
		}
		if ready == nil {
			break
		}
		rec = c.do(http.MethodPut, base+"/matches/"+ready.ID.String()+"/result", service.ResultInput{Team1Score: 11, Team2Score: 7})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data = decode[service.EventData](t, rec)
	}
	assert.Equal(t, bracket.EventCompleted, data.Event.Status)

	rec = c.do(http.MethodGet, base+"/podium", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	podium := decode[[]bracket.PodiumEntry](t, rec)
	require.NotEmpty(t, podium)
	assert.Equal(t, 1, podium[0].Place)

	rec = c.do(http.MethodGet, base+"/log?limit=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]bracket.LogEntry](t, rec), 3)

	rec = c.do(http.MethodGet, "/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]bracket.Event](t, rec), 1)
}

func TestErrorStatus(t *testing.T) {
	c := setupTestApp(t)
	c.login()

	rec := c.do(http.MethodPost, "/events", service.EventInput{Name: "Cup", Mode: bracket.ModeSingleElimination, TableCount: 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/events/" + decode[bracket.Event](t, rec).ID.String()
	for _, name := range []string{"A", "B"} {
		require.Equal(t, http.StatusCreated, c.do(http.MethodPost, base+"/teams", service.TeamInput{Name: name}).Code)
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, base+"/generate-bracket", nil).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed id", http.MethodGet, "/events/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown event", http.MethodGet, "/events/" + uuid.NewString(), nil, http.StatusNotFound},
		{"unknown match", http.MethodGet, base + "/matches/" + uuid.NewString(), nil, http.StatusNotFound},
		{"invalid event", http.MethodPost, "/events", service.EventInput{Name: "x", Mode: "swiss", TableCount: 1}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/events", map[string]any{"title": "x"}, http.StatusBadRequest},
		{"team after generation", http.MethodPost, base + "/teams", service.TeamInput{Name: "Late"}, http.StatusConflict},
		{"knockout outside groups", http.MethodPost, base + "/generate-knockout", nil, http.StatusBadRequest},
		{"bad log limit", http.MethodGet, base + "/log?limit=many", nil, http.StatusBadRequest},
		{"stream for unknown event", http.MethodGet, "/events/" + uuid.NewString() + "/stream", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestHealthz(t *testing.T) {
	c := setupTestApp(t)
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodGet, "/healthz", nil).Code)
}
