package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"camerastore/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIamport struct {
	tokenCode int
	payment   map[string]any
	lookups   int
}

func (f *fakeIamport) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/getToken", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "key", body["imp_key"])
		assert.Equal(t, "secret", body["imp_secret"])

		if f.tokenCode != 0 {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"code": f.tokenCode, "message": "invalid key", "response": nil})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 0, "response": map[string]any{"access_token": "tok"}})
	})
	mux.HandleFunc("/payments/", func(w http.ResponseWriter, r *http.Request) {
		f.lookups++
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if f.payment == nil {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"code": 1, "message": "not found", "response": nil})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 0, "response": f.payment})
	})
	return mux
}

func newTestIamport(t *testing.T, f *fakeIamport) *IamportClient {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewIamportClient("key", "secret", srv.URL+"/", time.Second)
}

func TestIamport_VerifyPayment_OK(t *testing.T) {
	f := &fakeIamport{payment: map[string]any{
		"imp_uid":      "imp_1",
		"merchant_uid": "m_1",
		"status":       "paid",
		"amount":       28000,
		"pay_method":   "card",
		"paid_at":      1700000000,
	}}
	c := newTestIamport(t, f)

	tx, err := c.VerifyPayment(context.Background(), "imp_1", 28000)
	require.NoError(t, err)
	assert.Equal(t, "imp_1", tx.ID)
	assert.Equal(t, "m_1", tx.MerchantOrderID)
	assert.Equal(t, int64(28000), tx.Amount)
	assert.Equal(t, model.PaymentMethodCard, tx.Method)
	require.NotNil(t, tx.PaidAt)
	assert.Equal(t, int64(1700000000), tx.PaidAt.Unix())
}

func TestIamport_VerifyPayment_NotPaid(t *testing.T) {
	f := &fakeIamport{payment: map[string]any{"imp_uid": "imp_1", "status": "ready", "amount": 28000}}
	c := newTestIamport(t, f)

	_, err := c.VerifyPayment(context.Background(), "imp_1", 28000)
	assert.ErrorIs(t, err, ErrPaymentNotCompleted)
}

func TestIamport_VerifyPayment_AmountMismatch(t *testing.T) {
	f := &fakeIamport{payment: map[string]any{"imp_uid": "imp_1", "status": "paid", "amount": 27000}}
	c := newTestIamport(t, f)

	_, err := c.VerifyPayment(context.Background(), "imp_1", 28000)
	assert.ErrorIs(t, err, ErrAmountMismatch)
}

func TestIamport_VerifyPayment_TokenFailure(t *testing.T) {
	f := &fakeIamport{tokenCode: -1}
	c := newTestIamport(t, f)

	_, err := c.VerifyPayment(context.Background(), "imp_1", 28000)
	assert.ErrorIs(t, err, ErrGateway)
	assert.Equal(t, 0, f.lookups)
}

func TestIamport_VerifyPayment_GatewayUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	c := NewIamportClient("key", "secret", base, time.Second)

	_, err := c.VerifyPayment(context.Background(), "imp_1", 28000)
	assert.ErrorIs(t, err, ErrGatewayUnreachable)
	assert.NotErrorIs(t, err, ErrGateway)
}

func TestIamport_VerifyPayment_UnknownTransaction(t *testing.T) {
	f := &fakeIamport{}
	c := newTestIamport(t, f)

	_, err := c.VerifyPayment(context.Background(), "imp_x", 28000)
	assert.ErrorIs(t, err, ErrTransactionLookup)
}

func TestIamport_VerifyPayment_NoCredentials(t *testing.T) {
	c := NewIamportClient("", "", "http://127.0.0.1:1", time.Second)

	_, err := c.VerifyPayment(context.Background(), "imp_1", 28000)
	assert.ErrorIs(t, err, ErrConfiguration)
}
