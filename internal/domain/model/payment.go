package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "CARD"
	PaymentMethodBankTransfer   PaymentMethod = "BANK_TRANSFER"
	PaymentMethodVirtualAccount PaymentMethod = "VIRTUAL_ACCOUNT"
	PaymentMethodMobile         PaymentMethod = "MOBILE"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodVirtualAccount, PaymentMethodMobile:
		return true
	}
	return false
}

// 注文に埋め込む決済情報。
// MerchantOrderID はNULLなら何件でも可、値があれば一意（決済コールバックの冪等キー）。
type PaymentInfo struct {
	Method               *PaymentMethod `gorm:"type:varchar(20)" json:"method,omitempty"`
	Status               PaymentStatus  `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	GatewayTransactionID *string        `gorm:"type:varchar(100);index" json:"gateway_transaction_id,omitempty"`
	MerchantOrderID      *string        `gorm:"type:varchar(100);uniqueIndex" json:"merchant_order_id,omitempty"`
	PaidAt               *time.Time     `json:"paid_at,omitempty"`
}
