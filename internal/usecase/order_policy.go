package usecase

import (
	"camerastore/internal/domain/model"
)

// 注文に対する権限判定はすべてここを通す。
// 所有者: PENDINGからのキャンセルとorderMemoだけ
// 管理者: ステータス・決済ステータス・決済方法・adminMemo、物理削除

// OrderPatch は PUT /orders/:id で変更できる項目。nilは変更しない
type OrderPatch struct {
	Status        *model.OrderStatus
	PaymentStatus *model.PaymentStatus
	PaymentMethod *model.PaymentMethod
	OrderMemo     *string
	AdminMemo     *string
}

func (p OrderPatch) Empty() bool {
	return p.Status == nil && p.PaymentStatus == nil && p.PaymentMethod == nil &&
		p.OrderMemo == nil && p.AdminMemo == nil
}

type OrderPolicy struct {
	// trueなら管理者も状態遷移表に従う
	StrictAdminTransitions bool
}

func (p OrderPolicy) CanView(actor Actor, o model.Order) error {
	if actor.IsAdmin() || o.UserID == actor.UserID {
		return nil
	}
	return newError(ErrForbidden, "you do not have access to this order")
}

func (p OrderPolicy) CanUpdate(actor Actor, o model.Order, patch OrderPatch) error {
	isOwner := o.UserID == actor.UserID
	isAdmin := actor.IsAdmin()

	if !isOwner && !isAdmin {
		return newError(ErrForbidden, "you do not have access to this order")
	}

	//orderMemoは注文者本人のもの
	if patch.OrderMemo != nil && !isOwner {
		return newError(ErrForbidden, "only the owner can change the order memo")
	}

	if !isAdmin {
		if patch.PaymentStatus != nil || patch.PaymentMethod != nil || patch.AdminMemo != nil {
			return newError(ErrForbidden, "only an admin can change payment or admin memo")
		}
		if patch.Status != nil {
			if *patch.Status != model.OrderStatusCancelled {
				return newError(ErrForbidden, "customers can only cancel an order")
			}
			if o.Status != model.OrderStatusPending {
				return newError(ErrInvalidTransition, "only pending orders can be cancelled")
			}
		}
		return nil
	}

	if p.StrictAdminTransitions && patch.Status != nil && *patch.Status != o.Status &&
		!model.CanTransition(o.Status, *patch.Status) {
		return newError(ErrInvalidTransition, "cannot change status from "+string(o.Status)+" to "+string(*patch.Status))
	}
	return nil
}

// CanDelete は物理削除するか（管理者）キャンセルに読み替えるか（所有者）を返す。
func (p OrderPolicy) CanDelete(actor Actor, o model.Order) (hardDelete bool, err error) {
	if actor.IsAdmin() {
		return true, nil
	}
	if o.UserID != actor.UserID {
		return false, newError(ErrForbidden, "you do not have access to this order")
	}
	if o.Status != model.OrderStatusPending {
		return false, newError(ErrInvalidTransition, "only pending orders can be cancelled")
	}
	return false, nil
}
