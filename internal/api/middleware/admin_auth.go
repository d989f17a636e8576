package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kokitko/bookinline-sub000/internal/domain/identity"
)

// AdminOnly は X-User-ID が管理者のリクエストのみを通すミドルウェア
func AdminOnly(checker identity.AdminChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Request().Header.Get("X-User-ID")
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
			}
			isAdmin, err := checker.IsAdmin(c.Request().Context(), userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "管理者権限の照会に失敗しました")
			}
			if !isAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "管理者のみ実行できます")
			}
			return next(c)
		}
	}
}
