package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	t         *testing.T
	mux       *http.ServeMux
	valid     atomic.Value // current access token
	refreshes int32
	expiresIn time.Duration
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{t: t, mux: http.NewServeMux(), expiresIn: time.Hour}
	api.valid.Store("access-1")

	api.mux.HandleFunc("/api/v1/users/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"status": "error", "message": "invalid credentials"})
			return
		}
		ok(w, AuthResponse{User: &User{Email: req.Email}, Tokens: api.pair("access-1")})
	})
	api.mux.HandleFunc("/api/v1/users/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["refresh_token"] != "refresh" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"status": "error", "message": "invalid refresh token"})
			return
		}
		n := atomic.AddInt32(&api.refreshes, 1)
		next := "access-" + string(rune('1'+n))
		api.valid.Store(next)
		ok(w, api.pair(next))
	})
	srv := httptest.NewServer(api.mux)
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) pair(access string) *TokenPair {
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(a.expiresIn),
		TokenType:    "Bearer",
	}
}

// protect answers 401 unless the request carries the current access token.
func (a *fakeAPI) protect(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+a.valid.Load().(string) {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"status": "error", "message": "invalid token"})
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": data})
}

func TestLoginAndAuthenticatedCall(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.mux.HandleFunc("/api/v1/groups", api.protect(func(w http.ResponseWriter, r *http.Request) {
		ok(w, []*Group{{Name: "East Wing"}})
	}))

	c := New(srv.URL + "/api/v1/")
	ctx := context.Background()

	_, err := c.ListGroups(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	resp, err := c.Login(ctx, "nurse@care.test", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "nurse@care.test", resp.User.Email)
	assert.Equal(t, "access-1", c.Tokens().AccessToken)

	groups, err := c.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "East Wing", groups[0].Name)
	assert.Zero(t, atomic.LoadInt32(&api.refreshes))
}

func TestLoginFailure(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := New(srv.URL + "/api/v1")

	_, err := c.Login(context.Background(), "nurse@care.test", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid credentials", apiErr.Message)
	assert.Nil(t, c.Tokens())
}

func TestProactiveRefresh(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.expiresIn = 30 * time.Second
	api.mux.HandleFunc("/api/v1/users/me", api.protect(func(w http.ResponseWriter, r *http.Request) {
		ok(w, &User{Email: "nurse@care.test"})
	}))

	c := New(srv.URL + "/api/v1")
	ctx := context.Background()
	_, err := c.Login(ctx, "nurse@care.test", "secret123")
	require.NoError(t, err)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "nurse@care.test", me.Email)
	assert.EqualValues(t, 1, atomic.LoadInt32(&api.refreshes))
	assert.Equal(t, "access-2", c.Tokens().AccessToken)
}

func TestReactiveRefreshOn401(t *testing.T) {
	api, srv := newFakeAPI(t)
	residentID := uuid.New()
	api.mux.HandleFunc("/api/v1/residents/"+residentID.String(), api.protect(func(w http.ResponseWriter, r *http.Request) {
		ok(w, &Resident{FirstName: "Ada"})
	}))

	c := New(srv.URL+"/api/v1", WithTokens(&TokenPair{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))

	res, err := c.GetResident(context.Background(), residentID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", res.FirstName)
	assert.EqualValues(t, 1, atomic.LoadInt32(&api.refreshes))
}

func TestRetriesOnlyOnce(t *testing.T) {
	api, srv := newFakeAPI(t)
	var calls int32
	api.mux.HandleFunc("/api/v1/groups", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"status": "error", "message": "account disabled"})
	})

	c := New(srv.URL+"/api/v1", WithTokens(&TokenPair{AccessToken: "access-1", RefreshToken: "refresh", ExpiresAt: time.Now().Add(time.Hour)}))

	_, err := c.ListGroups(context.Background())
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestRejectedRefreshClearsTokens(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := New(srv.URL+"/api/v1", WithTokens(&TokenPair{AccessToken: "old", RefreshToken: "revoked", ExpiresAt: time.Now().Add(time.Hour)}))

	_, err := c.Refresh(context.Background())
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Nil(t, c.Tokens())
}

func TestServerValidationErrorDetails(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.mux.HandleFunc("/api/v1/tasks", api.protect(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"status": "error", "message": "invalid task", "errors": []string{"assignee is not active"},
		})
	}))

	c := New(srv.URL+"/api/v1", WithTokens(api.pair("access-1")))
	_, err := c.CreateTask(context.Background(), &CreateTaskRequest{Title: "Vitals", AssignedTo: uuid.New()})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, []string{"assignee is not active"}, apiErr.Details)
	assert.Contains(t, apiErr.Error(), "assignee is not active")
}

func TestLocalValidationSkipsRoundTrip(t *testing.T) {
	api, srv := newFakeAPI(t)
	var hits int32
	api.mux.HandleFunc("/api/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	c := New(srv.URL+"/api/v1", WithTokens(api.pair("access-1")))
	_, err := c.CreateTask(context.Background(), &CreateTaskRequest{Title: " ", AssignedTo: uuid.New()})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Details, "title is required")
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestListTasksQueryAndMeta(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.mux.HandleFunc("/api/v1/tasks", api.protect(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "me", q.Get("assigned_to"))
		assert.Equal(t, "true", q.Get("overdue"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Empty(t, q.Get("status"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"data":   []*Task{{Title: "Vitals"}},
			"meta":   ListMeta{Page: 2, PageSize: 20, Total: 21},
		})
	}))

	c := New(srv.URL+"/api/v1", WithTokens(api.pair("access-1")))
	tasks, meta, err := c.ListTasks(context.Background(), TaskQuery{AssignedTo: "me", Overdue: true, Page: 2})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.EqualValues(t, 21, meta.Total)
}

func TestLogoutForgetsTokens(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.mux.HandleFunc("/api/v1/users/logout", api.protect(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "message": "logged out"})
	}))

	c := New(srv.URL+"/api/v1", WithTokens(api.pair("access-1")))
	require.NoError(t, c.Logout(context.Background()))
	assert.Nil(t, c.Tokens())
}

func TestFailedEarlyRefreshKeepsValidToken(t *testing.T) {
	mux := http.NewServeMux()
	var refreshes int32
	mux.HandleFunc("/api/v1/users/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshes, 1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "error", "message": "try later"})
	})
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"status": "error", "message": "invalid token"})
			return
		}
		ok(w, &User{Email: "nurse@care.test"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(srv.URL+"/api/v1", WithTokens(&TokenPair{
		AccessToken:  "access-1",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(30 * time.Second),
	}))

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "nurse@care.test", me.Email)
	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshes))
	assert.Equal(t, "access-1", c.Tokens().AccessToken)
}

type countingTransport struct{ n int32 }

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	atomic.AddInt32(&c.n, 1)
	return http.DefaultTransport.RoundTrip(r)
}

func TestOptionsComposeInAnyOrder(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.mux.HandleFunc("/api/v1/groups", api.protect(func(w http.ResponseWriter, r *http.Request) {
		ok(w, []*Group{})
	}))

	transport := &countingTransport{}
	c := New(srv.URL+"/api/v1",
		WithTimeout(5*time.Second),
		WithTokens(api.pair("access-1")),
		WithHTTPClient(&http.Client{Transport: transport}),
	)

	assert.Equal(t, 5*time.Second, c.http.GetClient().Timeout)
	_, err := c.ListGroups(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&transport.n))
}
