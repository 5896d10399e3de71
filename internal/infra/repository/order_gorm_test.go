package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"camerastore/internal/domain/model"
	repo "camerastore/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderGorm_CreateAndFind(t *testing.T) {
	gdb := newTestDB(t)
	r := NewOrderGormRepository(gdb)
	ctx := context.Background()

	o := newOrder(10, "ORD-20240305-0001", strPtr("m_1"))
	require.NoError(t, r.Create(ctx, o))
	require.NotZero(t, o.ID)

	got, err := r.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240305-0001", got.OrderNumber)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(25000), got.Items[0].UnitPrice)
	assert.Equal(t, "Seoul", got.Shipping.ShippingAddress)
	assert.True(t, got.Amount.Consistent())

	found, ok, err := r.FindByMerchantOrderID(ctx, "m_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, o.ID, found.ID)

	_, ok, err = r.FindByMerchantOrderID(ctx, "m_2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.FindByID(ctx, 999)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestOrderGorm_UniqueConstraints(t *testing.T) {
	gdb := newTestDB(t)
	r := NewOrderGormRepository(gdb)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newOrder(10, "ORD-20240305-0001", strPtr("m_1"))))

	//merchant uidの重複
	err := r.Create(ctx, newOrder(10, "ORD-20240305-0002", strPtr("m_1")))
	assert.ErrorIs(t, err, repo.ErrDuplicateKey)

	//注文番号の重複
	err = r.Create(ctx, newOrder(10, "ORD-20240305-0001", nil))
	assert.ErrorIs(t, err, repo.ErrDuplicateKey)

	//merchant uidが無い注文は何件でも作れる
	require.NoError(t, r.Create(ctx, newOrder(10, "ORD-20240305-0003", nil)))
	require.NoError(t, r.Create(ctx, newOrder(11, "ORD-20240305-0004", nil)))
}

func TestOrderGorm_ListNewestFirst(t *testing.T) {
	gdb := newTestDB(t)
	r := NewOrderGormRepository(gdb)
	ctx := context.Background()

	a := newOrder(10, "ORD-20240305-0001", nil)
	b := newOrder(11, "ORD-20240305-0002", nil)
	c := newOrder(10, "ORD-20240305-0003", nil)
	c.Status = model.OrderStatusShipping
	for _, o := range []*model.Order{a, b, c} {
		require.NoError(t, r.Create(ctx, o))
	}

	uid := int64(10)
	mine, err := r.List(ctx, repo.OrderListFilter{UserID: &uid})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, c.ID, mine[0].ID)
	assert.Len(t, mine[0].Items, 1)

	all, err := r.List(ctx, repo.OrderListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	shipping, err := r.List(ctx, repo.OrderListFilter{Status: model.OrderStatusShipping})
	require.NoError(t, err)
	require.Len(t, shipping, 1)
	assert.Equal(t, c.ID, shipping[0].ID)
}

func TestOrderGorm_UpdatePartial(t *testing.T) {
	gdb := newTestDB(t)
	r := NewOrderGormRepository(gdb)
	ctx := context.Background()

	o := newOrder(10, "ORD-20240305-0001", nil)
	o.OrderMemo = "keep me"
	require.NoError(t, r.Create(ctx, o))

	status := model.OrderStatusPreparing
	paid := model.PaymentStatusCompleted
	method := model.PaymentMethodCard
	paidAt := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	require.NoError(t, r.Update(ctx, o.ID, repo.OrderChanges{
		Status:        &status,
		PaymentStatus: &paid,
		PaymentMethod: &method,
		PaidAt:        &paidAt,
		AdminMemo:     strPtr("checked"),
	}))

	got, err := r.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPreparing, got.Status)
	assert.Equal(t, model.PaymentStatusCompleted, got.Payment.Status)
	require.NotNil(t, got.Payment.Method)
	assert.Equal(t, model.PaymentMethodCard, *got.Payment.Method)
	require.NotNil(t, got.Payment.PaidAt)
	assert.True(t, got.Payment.PaidAt.Equal(paidAt))
	assert.Equal(t, "checked", got.AdminMemo)
	assert.Equal(t, "keep me", got.OrderMemo)

	err = r.Update(ctx, 999, repo.OrderChanges{Status: &status})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestOrderGorm_UpdateStatusGuard(t *testing.T) {
	gdb := newTestDB(t)
	r := NewOrderGormRepository(gdb)
	ctx := context.Background()

	o := newOrder(10, "ORD-20240305-0001", nil)
	require.NoError(t, r.Create(ctx, o))

	ok, err := r.UpdateStatusGuard(ctx, o.ID, model.OrderStatusPending, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.True(t, ok)

	//2回目は既にPENDINGではない
	ok, err = r.UpdateStatusGuard(ctx, o.ID, model.OrderStatusPending, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrderGorm_DeleteRemovesItems(t *testing.T) {
	gdb := newTestDB(t)
	r := NewOrderGormRepository(gdb)
	ctx := context.Background()

	o := newOrder(10, "ORD-20240305-0001", nil)
	require.NoError(t, r.Create(ctx, o))

	require.NoError(t, r.Delete(ctx, o.ID))

	var items int64
	require.NoError(t, gdb.Model(&model.OrderItem{}).Where("order_id = ?", o.ID).Count(&items).Error)
	assert.Zero(t, items)

	assert.ErrorIs(t, r.Delete(ctx, o.ID), repo.ErrNotFound)
}

func TestOrderCounterGorm_Next(t *testing.T) {
	gdb := newTestDB(t)
	r := NewOrderCounterGormRepository(gdb)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		seq, err := r.Next(ctx, "20240305")
		require.NoError(t, err)
		assert.Equal(t, want, seq)
	}

	seq, err := r.Next(ctx, "20240306")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}

func TestTxManagerGorm_RollsBack(t *testing.T) {
	gdb := newTestDB(t)
	tm := NewTxManagerGorm(gdb)
	ctx := context.Background()
	boom := errors.New("boom")

	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.OrderCounters().Next(ctx, "20240305"); err != nil {
			return err
		}
		if err := r.Orders().Create(ctx, newOrder(10, "ORD-20240305-0001", nil)); err != nil {
			return err
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{ActorUserID: 1, Action: model.AuditActionUpdateOrder, ResourceType: model.AuditResourceOrder, ResourceID: 1, CreatedAt: time.Now()}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var orders, logs, counters int64
	require.NoError(t, gdb.Model(&model.Order{}).Count(&orders).Error)
	require.NoError(t, gdb.Model(&model.AuditLog{}).Count(&logs).Error)
	require.NoError(t, gdb.Model(&model.OrderCounter{}).Count(&counters).Error)
	assert.Zero(t, orders)
	assert.Zero(t, logs)
	assert.Zero(t, counters)

	//コミットされれば残る
	require.NoError(t, tm.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Orders().Create(ctx, newOrder(10, "ORD-20240305-0001", nil))
	}))
	require.NoError(t, gdb.Model(&model.Order{}).Count(&orders).Error)
	assert.Equal(t, int64(1), orders)
}
