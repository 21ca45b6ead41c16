package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGetUserID_Missing(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, uuid.Nil, GetUserID(c))
	assert.Equal(t, "", GetAuthID(c))
	assert.Nil(t, GetClaims(c))
	assert.Nil(t, GetCustomClaims(c))
}

func TestWithUserID_RoundTrip(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	userID := uuid.New()
	WithUserID(c, userID)

	assert.Equal(t, userID, GetUserID(c))
}
