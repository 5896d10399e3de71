package repository

import (
	"context"

	"camerastore/internal/domain/model"
)

// カートは常にログインユーザーのIDで絞って扱う
type CartRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	// 同一商品は数量を加算
	AddQuantity(ctx context.Context, userID int64, productID int64, qty int64) error
	SetQuantity(ctx context.Context, userID int64, productID int64, qty int64) error
	Delete(ctx context.Context, userID int64, productID int64) error
	DeleteAllByUserID(ctx context.Context, userID int64) error
}
