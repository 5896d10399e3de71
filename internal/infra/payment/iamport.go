package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"camerastore/internal/domain/model"
)

const iamportPaid = "paid"

// IamportClient はPortOne(旧Iamport) REST APIのクライアント。
type IamportClient struct {
	key     string
	secret  string
	baseURL string
	http    *http.Client
}

func NewIamportClient(key, secret, baseURL string, timeout time.Duration) *IamportClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IamportClient{
		key:     key,
		secret:  secret,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// APIの共通レスポンス。code != 0 は失敗
type iamportEnvelope[T any] struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Response *T     `json:"response"`
}

type iamportToken struct {
	AccessToken string `json:"access_token"`
}

type iamportPayment struct {
	ImpUID      string  `json:"imp_uid"`
	MerchantUID string  `json:"merchant_uid"`
	Status      string  `json:"status"`
	Amount      float64 `json:"amount"`
	PayMethod   string  `json:"pay_method"`
	PaidAt      int64   `json:"paid_at"`
}

func (c *IamportClient) VerifyPayment(ctx context.Context, transactionID string, expectedAmount int64) (Transaction, error) {
	if c.key == "" || c.secret == "" {
		return Transaction{}, ErrConfiguration
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return Transaction{}, err
	}

	p, err := c.fetchPayment(ctx, token, transactionID)
	if err != nil {
		return Transaction{}, err
	}

	tx := Transaction{
		ID:              p.ImpUID,
		MerchantOrderID: p.MerchantUID,
		Amount:          int64(math.Round(p.Amount)),
		Status:          p.Status,
		Method:          iamportMethod(p.PayMethod),
	}
	if tx.ID == "" {
		tx.ID = transactionID
	}
	if p.PaidAt > 0 {
		t := time.Unix(p.PaidAt, 0).UTC()
		tx.PaidAt = &t
	}

	if err := checkTransaction(tx.Status, iamportPaid, tx.Amount, expectedAmount); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// POST /users/getToken
func (c *IamportClient) accessToken(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"imp_key":    c.key,
		"imp_secret": c.secret,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/getToken", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var env iamportEnvelope[iamportToken]
	status, err := c.do(req, &env)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || env.Code != 0 || env.Response == nil || env.Response.AccessToken == "" {
		return "", fmt.Errorf("%w: token status=%d code=%d message=%s", ErrGateway, status, env.Code, env.Message)
	}
	return env.Response.AccessToken, nil
}

// GET /payments/{imp_uid}
func (c *IamportClient) fetchPayment(ctx context.Context, token, transactionID string) (iamportPayment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payments/"+url.PathEscape(transactionID), nil)
	if err != nil {
		return iamportPayment{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var env iamportEnvelope[iamportPayment]
	status, err := c.do(req, &env)
	if err != nil {
		return iamportPayment{}, err
	}
	if status != http.StatusOK || env.Code != 0 || env.Response == nil {
		return iamportPayment{}, fmt.Errorf("%w: status=%d code=%d message=%s", ErrTransactionLookup, status, env.Code, env.Message)
	}
	return *env.Response, nil
}

// 4xxでもJSONが返ることがあるので、デコードできればステータスと一緒に返す。
// 通信できなかったときは ErrGatewayUnreachable
func (c *IamportClient) do(req *http.Request, out any) (int, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(out); err != nil && res.StatusCode == http.StatusOK {
		return res.StatusCode, fmt.Errorf("%w: decode %s: %v", ErrGateway, req.URL.Path, err)
	}
	return res.StatusCode, nil
}

func iamportMethod(m string) model.PaymentMethod {
	switch strings.ToLower(m) {
	case "card":
		return model.PaymentMethodCard
	case "trans":
		return model.PaymentMethodBankTransfer
	case "vbank":
		return model.PaymentMethodVirtualAccount
	case "phone":
		return model.PaymentMethodMobile
	}
	return ""
}
