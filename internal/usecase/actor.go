package usecase

import "camerastore/internal/domain/model"

// リクエストしたユーザー。RoleはDBの値（UserGuardが入れる）
type Actor struct {
	UserID int64
	Role   model.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}
