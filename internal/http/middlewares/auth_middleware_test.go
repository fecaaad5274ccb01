package middlewares_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/invoicehub/internal/actorctx"
	"github.com/geocoder89/invoicehub/internal/auth"
	"github.com/geocoder89/invoicehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
}

func protectedRouter(t *testing.T, m *auth.Manager) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/me", middlewares.NewAuthMiddleware(m).RequireAuth(), func(c *gin.Context) {
		id, ok := actorctx.FromGin(c)
		require.True(t, ok)

		fromCtx, ok := actorctx.UserIDFrom(c.Request.Context())
		require.True(t, ok)

		c.JSON(http.StatusOK, gin.H{"id": id.UserID, "email": id.Email, "ctx": fromCtx})
	})

	return r
}

func TestRequireAuth(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	m, err := auth.NewManager(auth.Options{Secret: "secret", TTL: time.Hour, Now: clock})
	require.NoError(t, err)

	token, err := m.Issue(auth.Identity{UserID: "u1", Email: "a@x.io"})
	require.NoError(t, err)

	other, err := auth.NewManager(auth.Options{Secret: "another", Now: clock})
	require.NoError(t, err)
	foreign, err := other.Issue(auth.Identity{UserID: "u1"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid bearer", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"different secret", "Bearer " + foreign, http.StatusUnauthorized},
	}

	r := protectedRouter(t, m)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.want, w.Code, w.Body.String())

			if tt.want == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, "u1", body["id"])
				assert.Equal(t, "a@x.io", body["email"])
				assert.Equal(t, "u1", body["ctx"])
				return
			}

			var body errorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "unauthorized", body.Error.Code)
			assert.Equal(t, http.StatusUnauthorized, body.Error.Status)
		})
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m, err := auth.NewManager(auth.Options{Secret: "secret", TTL: time.Minute, Now: func() time.Time { return now }})
	require.NoError(t, err)

	token, err := m.Issue(auth.Identity{UserID: "u1"})
	require.NoError(t, err)

	r := protectedRouter(t, m)

	now = now.Add(2 * time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
