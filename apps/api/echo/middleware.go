package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// adminMiddleware only allows access to admin users.
func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if !claims.IsAdmin {
				return errForbidden
			}
			return next(ctx)
		}
	}
}

// ctxUserOrAdminMiddleware only allows access to the user referenced by the
// "id" route param, or to admin users.
func ctxUserOrAdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			id, err := strconv.Atoi(ctx.Param("id"))
			if err != nil || id != claims.UserID() {
				return errForbidden
			}
			return next(ctx)
		}
	}
}
