package handler

import (
	"net/http"

	"camerastore/internal/domain/model"
	"camerastore/internal/middleware"
	"camerastore/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 全エンドポイント共通のレスポンス
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

func writeOK(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func writeFail(c echo.Context, status int, message string, errs ...string) error {
	return c.JSON(status, Envelope{Success: false, Message: message, Errors: errs})
}

// usecaseのエラーをレスポンスに変換する。
// 500の原因はログに出し、レスポンスに載せるのはDebug(本番以外)のときだけ
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Status >= http.StatusInternalServerError {
			c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
			return writeFail(c, he.Status, he.Message, internalDetail(c, err)...)
		}
		return writeFail(c, he.Status, he.Message, he.Errors...)
	}

	//500
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return writeFail(c, http.StatusInternalServerError, "internal server error", internalDetail(c, err)...)
}

func internalDetail(c echo.Context, err error) []string {
	if c.Echo().Debug {
		return []string{err.Error()}
	}
	return nil
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// UserGuardが入れたID・role
func getActor(c echo.Context) (usecase.Actor, bool) {
	id, ok := getUserIDFromContext(c)
	if !ok {
		return usecase.Actor{}, false
	}
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	return usecase.Actor{UserID: id, Role: model.Role(role)}, true
}
