package repository

import (
	"camerastore/internal/domain/model"
	"context"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成。メール重複は ErrDuplicateKey
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。無ければ ErrNotFound
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを一件取得する。無ければ ErrNotFound
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// 最終ログインなどの更新
	Update(ctx context.Context, user *model.User) error
}
