package repository

import (
	"context"
	"time"

	"camerastore/internal/domain/model"
)

// 注文一覧の絞り込み。UserIDがnilなら全ユーザー（管理者用）
type OrderListFilter struct {
	UserID *int64
	Status model.OrderStatus
}

// 部分更新。nilのフィールドは触らない
type OrderChanges struct {
	Status        *model.OrderStatus
	PaymentStatus *model.PaymentStatus
	PaymentMethod *model.PaymentMethod
	PaidAt        *time.Time
	OrderMemo     *string
	AdminMemo     *string
}

func (c OrderChanges) Empty() bool {
	return c.Status == nil && c.PaymentStatus == nil && c.PaymentMethod == nil &&
		c.PaidAt == nil && c.OrderMemo == nil && c.AdminMemo == nil
}

type OrderRepository interface {
	//明細ごと保存する。merchant uid / 注文番号の重複は ErrDuplicateKey
	Create(ctx context.Context, order *model.Order) error
	//明細付きで1件取得
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//決済コールバックの冪等チェック用
	FindByMerchantOrderID(ctx context.Context, merchantOrderID string) (model.Order, bool, error)
	//新しい順
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
	Update(ctx context.Context, orderID int64, changes OrderChanges) error
	//現在のステータスが from のときだけ to に変える。変わらなければ false
	UpdateStatusGuard(ctx context.Context, orderID int64, from, to model.OrderStatus) (bool, error)
	//明細ごと物理削除
	Delete(ctx context.Context, orderID int64) error
}

// 日付ごとの連番を原子的に払い出す
type OrderCounterRepository interface {
	Next(ctx context.Context, day string) (int64, error)
}
