package model

import (
	"time"

	"gorm.io/gorm"
)

type ProductCategory string

const (
	ProductCategoryCamera ProductCategory = "CAMERA"
	ProductCategoryLens   ProductCategory = "LENS"
)

func (c ProductCategory) Valid() bool {
	return c == ProductCategoryCamera || c == ProductCategoryLens
}

type Product struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductNumber string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"product_number"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Image         string          `gorm:"type:varchar(500);not null" json:"image"`
	Category      ProductCategory `gorm:"type:varchar(20);not null;index" json:"category"`
	Price         int64           `gorm:"not null" json:"price"`
	Description   string          `gorm:"type:text" json:"description"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}
