package model

import "time"

type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "PENDING"
	OrderStatusPaymentCompleted OrderStatus = "PAYMENT_COMPLETED"
	OrderStatusPreparing        OrderStatus = "PREPARING"
	OrderStatusShipping         OrderStatus = "SHIPPING"
	OrderStatusDelivered        OrderStatus = "DELIVERED"
	OrderStatusCancelled        OrderStatus = "CANCELLED"
)

// 有効な注文ステータス（順序は画面表示用）
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaymentCompleted,
	OrderStatusPreparing,
	OrderStatusShipping,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// 隣接する遷移だけを許す表。DELIVERED / CANCELLED は終端。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:          {OrderStatusPaymentCompleted, OrderStatusCancelled},
	OrderStatusPaymentCompleted: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:        {OrderStatusShipping, OrderStatusCancelled},
	OrderStatusShipping:         {OrderStatusDelivered},
}

// CanTransition は from -> to が状態遷移表に載っているかを返す。
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// 注文。支払い後は明細・金額は変更しない（ステータスとメモだけ変わる）
type Order struct {
	ID          int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string       `gorm:"type:varchar(32);not null;uniqueIndex" json:"order_number"`
	UserID      int64        `gorm:"not null;index:idx_orders_user_created,priority:1" json:"user_id"`
	Items       []OrderItem  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Shipping    ShippingInfo `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_info"`
	Amount      OrderAmount  `gorm:"embedded;embeddedPrefix:amount_" json:"amount"`
	Status      OrderStatus  `gorm:"type:varchar(20);not null;index:idx_orders_status_created,priority:1" json:"status"`
	Payment     PaymentInfo  `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`
	OrderMemo   string       `gorm:"type:text" json:"order_memo,omitempty"`
	AdminMemo   string       `gorm:"type:text" json:"admin_memo,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;autoCreateTime;index:idx_orders_user_created,priority:2;index:idx_orders_status_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 配送先
type ShippingInfo struct {
	RecipientName   string `gorm:"type:varchar(100);not null" json:"recipient_name"`
	RecipientPhone  string `gorm:"type:varchar(30);not null" json:"recipient_phone"`
	ShippingAddress string `gorm:"type:varchar(500);not null" json:"shipping_address"`
	ShippingMemo    string `gorm:"type:varchar(500)" json:"shipping_memo,omitempty"`
}

// 金額（ウォン、整数）
// FinalTotal = ItemsTotal + ShippingFee - Discount
type OrderAmount struct {
	ItemsTotal  int64 `gorm:"not null" json:"items_total"`
	ShippingFee int64 `gorm:"not null;default:0" json:"shipping_fee"`
	Discount    int64 `gorm:"not null;default:0" json:"discount"`
	FinalTotal  int64 `gorm:"not null" json:"final_total"`
}

// Consistent は金額の不変条件を満たしているか。
func (a OrderAmount) Consistent() bool {
	if a.ItemsTotal < 0 || a.ShippingFee < 0 || a.Discount < 0 || a.FinalTotal < 0 {
		return false
	}
	return a.FinalTotal == a.ItemsTotal+a.ShippingFee-a.Discount
}
