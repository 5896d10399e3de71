package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"camerastore/internal/config"
	"camerastore/internal/domain/model"
)

var (
	// 認証情報が設定されていない
	ErrConfiguration = errors.New("payment gateway is not configured")
	// トークン発行を拒否された、または応答が読めない
	ErrGateway = errors.New("payment gateway request failed")
	// ゲートウェイに到達できない（接続失敗・タイムアウト）
	ErrGatewayUnreachable = errors.New("payment gateway unreachable")
	// 取引の照会に失敗した（存在しない取引IDなど）
	ErrTransactionLookup = errors.New("payment transaction lookup failed")
	// 取引が支払い完了になっていない
	ErrPaymentNotCompleted = errors.New("payment is not completed")
	// 支払い金額が注文金額と一致しない
	ErrAmountMismatch = errors.New("payment amount mismatch")
)

// 照会して検証済みの取引
type Transaction struct {
	ID              string
	MerchantOrderID string
	Amount          int64
	Status          string
	Method          model.PaymentMethod
	PaidAt          *time.Time
}

// Verifier は決済ゲートウェイに取引を照会し、支払い済みかつ金額が一致するかを確認する。
// 1回の呼び出しでリトライはしない。
type Verifier interface {
	VerifyPayment(ctx context.Context, transactionID string, expectedAmount int64) (Transaction, error)
}

// NewVerifier は PAYMENT_PROVIDER に応じたクライアントを返す。
func NewVerifier(cfg config.Config) (Verifier, error) {
	switch strings.ToLower(cfg.PaymentProvider) {
	case "", "iamport":
		return NewIamportClient(cfg.IamportKey, cfg.IamportSecret, cfg.IamportAPIBase, cfg.PaymentTimeout), nil
	case "razorpay":
		return NewRazorpayClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.PaymentProvider)
	}
}

// paid と expected は同じ単位で渡す
func checkTransaction(status, paidStatus string, paid, expected int64) error {
	if status != paidStatus {
		return fmt.Errorf("%w: status=%s", ErrPaymentNotCompleted, status)
	}
	if paid != expected {
		return fmt.Errorf("%w: paid=%d expected=%d", ErrAmountMismatch, paid, expected)
	}
	return nil
}
