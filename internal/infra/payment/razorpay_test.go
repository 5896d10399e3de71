package payment

import (
	"context"
	"errors"
	"testing"

	"camerastore/internal/config"
	"camerastore/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	payment map[string]interface{}
	err     error
}

func (s stubFetcher) Fetch(string, map[string]interface{}, map[string]string) (map[string]interface{}, error) {
	return s.payment, s.err
}

func TestRazorpay_VerifyPayment(t *testing.T) {
	c := &RazorpayClient{configured: true, payments: stubFetcher{payment: map[string]interface{}{
		"id":         "pay_1",
		"order_id":   "order_1",
		"status":     "captured",
		"amount":     float64(4000000),
		"method":     "card",
		"created_at": float64(1700000000),
	}}}

	tx, err := c.VerifyPayment(context.Background(), "pay_1", 40000)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), tx.Amount)
	assert.Equal(t, model.PaymentMethodCard, tx.Method)
	assert.NotNil(t, tx.PaidAt)

	_, err = c.VerifyPayment(context.Background(), "pay_1", 43000)
	assert.ErrorIs(t, err, ErrAmountMismatch)
}

// 1ルピー未満の差額も不一致として扱う
func TestRazorpay_VerifyPayment_ComparesMinorUnits(t *testing.T) {
	for _, paise := range []float64{300099, 299999, 300001} {
		c := &RazorpayClient{configured: true, payments: stubFetcher{payment: map[string]interface{}{
			"id":     "pay_2",
			"status": "captured",
			"amount": paise,
		}}}
		_, err := c.VerifyPayment(context.Background(), "pay_2", 3000)
		assert.ErrorIs(t, err, ErrAmountMismatch, "amount=%v", paise)
	}

	c := &RazorpayClient{configured: true, payments: stubFetcher{payment: map[string]interface{}{
		"id":     "pay_2",
		"status": "captured",
		"amount": float64(300000),
	}}}
	tx, err := c.VerifyPayment(context.Background(), "pay_2", 3000)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), tx.Amount)
}

func TestRazorpay_VerifyPayment_Errors(t *testing.T) {
	_, err := NewRazorpayClient("", "").VerifyPayment(context.Background(), "pay_1", 1)
	assert.ErrorIs(t, err, ErrConfiguration)

	c := &RazorpayClient{configured: true, payments: stubFetcher{err: errors.New("BAD_REQUEST_ERROR")}}
	_, err = c.VerifyPayment(context.Background(), "pay_1", 1)
	assert.ErrorIs(t, err, ErrTransactionLookup)

	c = &RazorpayClient{configured: true, payments: stubFetcher{payment: map[string]interface{}{"status": "authorized", "amount": float64(100)}}}
	_, err = c.VerifyPayment(context.Background(), "pay_1", 1)
	assert.ErrorIs(t, err, ErrPaymentNotCompleted)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.VerifyPayment(ctx, "pay_1", 1)
	assert.ErrorIs(t, err, ErrGatewayUnreachable)
}

func TestNewVerifier(t *testing.T) {
	v, err := NewVerifier(config.Config{PaymentProvider: "iamport"})
	require.NoError(t, err)
	assert.IsType(t, &IamportClient{}, v)

	v, err = NewVerifier(config.Config{PaymentProvider: "razorpay", RazorpayKeyID: "k", RazorpayKeySecret: "s"})
	require.NoError(t, err)
	assert.IsType(t, &RazorpayClient{}, v)

	_, err = NewVerifier(config.Config{PaymentProvider: "stripe"})
	assert.Error(t, err)
}
