package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"camerastore/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// echo.Context に載せるキー。
// roleは string(model.Role) のまま入れる（ガードとhandlerは .(string) で取り出す）
const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string。UserGuardがDBの値で上書きする
	CtxTokenVersionKey = "token_version" // int
)

var (
	errNoBearer     = errors.New("authentication required")
	errInvalidToken = errors.New("invalid or expired token")
)

// ログイン時に発行するアクセストークンの中身（sub / role / tv）
type accessClaims struct {
	jwt.RegisteredClaims
	Role         string `json:"role"`
	TokenVersion *int   `json:"tv"`
}

// 検証済みトークンから取り出した本人情報
type tokenIdentity struct {
	UserID       int64
	Role         string
	TokenVersion int
}

// Bearerトークンを検証し、本人情報をcontextに載せる。
// ここではDBを見ない。停止中やログアウト済みの判定はUserGuardで行う
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c, errNoBearer)
			}

			id, err := parseAccessToken(secret, raw)
			if err != nil {
				return unauthorized(c, errInvalidToken)
			}

			c.Set(CtxUserIDKey, id.UserID)
			c.Set(CtxUserRoleKey, id.Role)
			c.Set(CtxTokenVersionKey, id.TokenVersion)
			return next(c)
		}
	}
}

// "Bearer <token>" からtokenを取り出す。スキーム名の大小は問わない
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// HS256以外は受け付けない。exp切れもここで落ちる
func parseAccessToken(secret []byte, raw string) (tokenIdentity, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return tokenIdentity{}, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return tokenIdentity{}, errors.New("sub is not a user id")
	}
	if claims.TokenVersion == nil || *claims.TokenVersion < 0 {
		return tokenIdentity{}, errors.New("tv is missing")
	}

	return tokenIdentity{
		UserID:       userID,
		Role:         claims.Role,
		TokenVersion: *claims.TokenVersion,
	}, nil
}

// handlerのレスポンス封筒と同じ形
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Success: false, Message: msg}
}

func unauthorized(c echo.Context, err error) error {
	return c.JSON(http.StatusUnauthorized, errorJSON(err.Error()))
}
