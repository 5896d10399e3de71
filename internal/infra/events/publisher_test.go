package events

import (
	"context"
	"testing"

	"camerastore/internal/domain/model"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderEvent(t *testing.T) {
	o := model.Order{
		ID:          7,
		OrderNumber: "ORD-20240101-0001",
		UserID:      3,
		Status:      model.OrderStatusPaymentCompleted,
		Amount:      model.OrderAmount{ItemsTotal: 25000, ShippingFee: 3000, FinalTotal: 28000},
	}

	ev := NewOrderEvent(OrderCreated, o)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, OrderCreated, ev.Type)
	assert.Equal(t, int64(7), ev.OrderID)
	assert.Equal(t, "ORD-20240101-0001", ev.OrderNumber)
	assert.Equal(t, int64(28000), ev.FinalTotal)
	assert.False(t, ev.OccurredAt.IsZero())
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), OrderEvent{}))
	assert.NoError(t, p.Close(context.Background()))
}

// ブローカーに繋がらなくてもクライアント生成とPublishは失敗しない
func TestKafkaPublisher_PublishIsAsync(t *testing.T) {
	p, err := NewKafkaPublisher(KafkaOptions{Brokers: []string{"127.0.0.1:1"}, Topic: "orders"}, log.New("test"))
	require.NoError(t, err)
	defer p.client.Close()

	err = p.Publish(context.Background(), NewOrderEvent(OrderUpdated, model.Order{ID: 1}))
	assert.NoError(t, err)
}
