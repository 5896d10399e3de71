package repository

import (
	"camerastore/internal/domain/model"
	"context"
)

// 一覧検索（ページングはしない）
type ProductListQuery struct {
	Category model.ProductCategory
	Q        string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)
}
