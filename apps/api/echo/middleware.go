package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa-tz/darasa/core/user"
)

// adminMiddleware authorizes admins only. Claims are not trusted on their own:
// the persisted user is re-checked so a revoked admin loses access on their
// next request, token or no token. Resolution failure fails closed.
func adminMiddleware(svc user.Service, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if !claims.IsAdmin || !contextHasAnyRole(ctx, roles) {
				return errHttpForbidden
			}

			usr, err := getContextUser(ctx, svc, claims)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errHttpForbidden
				}
				return errors.Wrap(err, "getting context user")
			}
			if !usr.Active() || !usr.IsAdmin() {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
