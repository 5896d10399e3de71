package model

// 日付ごとの注文番号カウンタ（Day は YYYYMMDD）
type OrderCounter struct {
	Day string `gorm:"primaryKey;type:varchar(8)"`
	Seq int64  `gorm:"not null"`
}
