package model

import "time"

// 注文明細。注文時点の商品情報をスナップショットで持つ（カートとは紐付かない）
type OrderItem struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       int64           `gorm:"not null;index" json:"order_id"`
	ProductID     int64           `gorm:"not null;index" json:"product_id"`
	ProductNumber string          `gorm:"type:varchar(50);not null" json:"product_number"`
	ProductName   string          `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductImage  string          `gorm:"type:varchar(500)" json:"product_image"`
	Category      ProductCategory `gorm:"type:varchar(20)" json:"category"`
	UnitPrice     int64           `gorm:"not null" json:"unit_price"`
	Quantity      int64           `gorm:"not null" json:"quantity"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (it OrderItem) Subtotal() int64 {
	return it.UnitPrice * it.Quantity
}
