package repository

import (
	"testing"

	"camerastore/internal/domain/model"
	"camerastore/internal/infra/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// テストごとに独立したインメモリSQLite
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.New(gdb).Migrate())
	return gdb
}

func seedProduct(t *testing.T, gdb *gorm.DB, number string, price int64) model.Product {
	t.Helper()
	p := model.Product{
		ProductNumber: number,
		Name:          "product " + number,
		Image:         number + ".jpg",
		Category:      model.ProductCategoryCamera,
		Price:         price,
	}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func newOrder(userID int64, number string, merchantID *string) *model.Order {
	return &model.Order{
		OrderNumber: number,
		UserID:      userID,
		Items: []model.OrderItem{
			{ProductID: 1, ProductNumber: "CAM-001", ProductName: "Rangefinder", Category: model.ProductCategoryCamera, UnitPrice: 25000, Quantity: 1},
		},
		Shipping: model.ShippingInfo{RecipientName: "Kim", RecipientPhone: "010", ShippingAddress: "Seoul"},
		Amount:   model.OrderAmount{ItemsTotal: 25000, ShippingFee: 3000, FinalTotal: 28000},
		Status:   model.OrderStatusPending,
		Payment: model.PaymentInfo{
			Status:          model.PaymentStatusPending,
			MerchantOrderID: merchantID,
		},
	}
}

func strPtr(s string) *string { return &s }
