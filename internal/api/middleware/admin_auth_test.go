package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdminChecker struct {
	isAdmin bool
	err     error
}

func (s *stubAdminChecker) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return s.isAdmin, s.err
}

func callAdminOnly(checker *stubAdminChecker, userID string) error {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/admin/sweep", nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := AdminOnly(checker)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return handler(c)
}

func TestAdminOnly(t *testing.T) {
	t.Run("管理者は通過できる", func(t *testing.T) {
		err := callAdminOnly(&stubAdminChecker{isAdmin: true}, "admin-1")
		assert.NoError(t, err)
	})

	t.Run("ユーザーIDなしは401", func(t *testing.T) {
		err := callAdminOnly(&stubAdminChecker{isAdmin: true}, "")
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("管理者でない場合は403", func(t *testing.T) {
		err := callAdminOnly(&stubAdminChecker{isAdmin: false}, "user-1")
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})

	t.Run("照会エラーは500", func(t *testing.T) {
		err := callAdminOnly(&stubAdminChecker{err: errors.New("db down")}, "user-1")
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, he.Code)
	})
}
