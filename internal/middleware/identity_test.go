package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/concert-ticketing/internal/graph"
	"github.com/iliyamo/concert-ticketing/internal/utils"
)

const testSecret = "test-secret"

func runIdentity(t *testing.T, authHeader string) *graph.CurrentUser {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured *graph.CurrentUser
	h := Identity(testSecret)(func(c echo.Context) error {
		captured = graph.UserFrom(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return captured
}

func TestIdentityInjectsTokenClaims(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "u1", "alice", "alice@example.com", []string{"USER"}, 15)
	require.NoError(t, err)

	u := runIdentity(t, "Bearer "+tok.Token)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, []string{"USER"}, u.Roles)
}

func TestIdentityPassesAnonymousThrough(t *testing.T) {
	assert.Nil(t, runIdentity(t, ""))
}

func TestIdentityIgnoresInvalidToken(t *testing.T) {
	assert.Nil(t, runIdentity(t, "Bearer not-a-jwt"))
}

func TestIdentityRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", "u1", "alice", "alice@example.com", []string{"USER"}, 15)
	require.NoError(t, err)

	assert.Nil(t, runIdentity(t, "Bearer "+tok.Token))
}
