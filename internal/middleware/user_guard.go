package middleware

import (
	"errors"
	"net/http"

	"camerastore/internal/repository"

	"github.com/labstack/echo/v4"
)

// AuthJWTの後に置く。DBのユーザーを読み、停止中・token_version不一致を弾き、
// roleをDBの値で入れ直す。
func UserGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return unauthorized(c, errNoBearer)
			}

			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok || tv < 0 {
				return unauthorized(c, errNoBearer)
			}

			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if errors.Is(err, repository.ErrNotFound) || (err == nil && user == nil) {
				return c.JSON(http.StatusUnauthorized, errorJSON("user not found"))
			}
			if err != nil {
				c.Logger().Errorf("load user %d: %v", userID, err)
				return c.JSON(http.StatusInternalServerError, errorJSON("internal server error"))
			}

			if !user.IsActive {
				return c.JSON(http.StatusUnauthorized, errorJSON("account is disabled"))
			}
			//token_version が一致しなければ強制ログアウト扱い（401）
			if user.TokenVersion != tv {
				return unauthorized(c, errInvalidToken)
			}

			c.Set(CtxUserRoleKey, string(user.Role))
			return next(c)
		}
	}
}
