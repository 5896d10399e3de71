package payment

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"camerastore/internal/domain/model"

	"github.com/razorpay/razorpay-go"
)

// Razorpayでは支払い確定は captured
const razorpayCaptured = "captured"

// 金額は最小通貨単位（1/100）で返る。比較は最小単位のまま行う
const razorpayAmountScale = 100

type paymentFetcher interface {
	Fetch(paymentID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayClient struct {
	configured bool
	payments   paymentFetcher
}

func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	if keyID == "" || keySecret == "" {
		return &RazorpayClient{}
	}
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpayClient{configured: true, payments: client.Payment}
}

func (c *RazorpayClient) VerifyPayment(ctx context.Context, transactionID string, expectedAmount int64) (Transaction, error) {
	if !c.configured {
		return Transaction{}, ErrConfiguration
	}
	if err := ctx.Err(); err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}

	p, err := c.payments.Fetch(transactionID, nil, nil)
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", ErrTransactionLookup, err)
	}

	minor := int64(math.Round(numberField(p, "amount")))
	tx := Transaction{
		ID:              stringField(p, "id"),
		MerchantOrderID: stringField(p, "order_id"),
		Amount:          minor / razorpayAmountScale,
		Status:          stringField(p, "status"),
		Method:          razorpayMethod(stringField(p, "method")),
	}
	if tx.ID == "" {
		tx.ID = transactionID
	}
	if created := numberField(p, "created_at"); created > 0 && tx.Status == razorpayCaptured {
		t := time.Unix(int64(created), 0).UTC()
		tx.PaidAt = &t
	}

	if err := checkTransaction(tx.Status, razorpayCaptured, minor, expectedAmount*razorpayAmountScale); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// JSONの数値はfloat64で入ってくる
func numberField(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func razorpayMethod(m string) model.PaymentMethod {
	switch strings.ToLower(m) {
	case "card":
		return model.PaymentMethodCard
	case "netbanking":
		return model.PaymentMethodBankTransfer
	case "upi", "wallet":
		return model.PaymentMethodMobile
	}
	return ""
}
