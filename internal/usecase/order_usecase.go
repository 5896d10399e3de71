package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"camerastore/internal/domain/model"
	"camerastore/internal/infra/events"
	"camerastore/internal/infra/payment"
	repo "camerastore/internal/repository"
)

// 決済ゲートウェイ（iamport / razorpay）
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, transactionID string, expectedAmount int64) (payment.Transaction, error)
}

// 注文イベントの送信先。失敗しても注文処理は失敗させない
type EventPublisher interface {
	Publish(ctx context.Context, ev events.OrderEvent) error
}

type OrderUsecaseDeps struct {
	Tx        repo.TransactionManager
	Orders    repo.OrderRepository
	Carts     repo.CartRepository
	Products  repo.ProductRepository
	Verifier  PaymentVerifier
	Publisher EventPublisher
	Numbers   *OrderNumberGenerator
	Policy    OrderPolicy
	Logger    Logger
}

type OrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	carts     repo.CartRepository
	products  repo.ProductRepository
	verifier  PaymentVerifier
	publisher EventPublisher
	numbers   *OrderNumberGenerator
	policy    OrderPolicy
	log       Logger
	now       func() time.Time
}

func NewOrderUsecase(d OrderUsecaseDeps) *OrderUsecase {
	u := &OrderUsecase{
		tx:        d.Tx,
		orders:    d.Orders,
		carts:     d.Carts,
		products:  d.Products,
		verifier:  d.Verifier,
		publisher: d.Publisher,
		numbers:   d.Numbers,
		policy:    d.Policy,
		log:       d.Logger,
		now:       time.Now,
	}
	if u.publisher == nil {
		u.publisher = events.NopPublisher{}
	}
	if u.numbers == nil {
		u.numbers = NewOrderNumberGenerator(time.UTC)
	}
	if u.log == nil {
		u.log = nopLogger{}
	}
	return u
}

type ShippingInput struct {
	RecipientName   string
	RecipientPhone  string
	ShippingAddress string
	ShippingMemo    string
}

// 決済画面から渡される情報。どれも任意
type PaymentIntent struct {
	Method               string
	GatewayTransactionID string
	MerchantOrderID      string
}

type CreateOrderInput struct {
	Shipping  ShippingInput
	Payment   PaymentIntent
	OrderMemo string
}

// PUT /orders/:id の入力。文字列のまま受け取りusecaseで検証する
type UpdateOrderInput struct {
	Status        *string
	PaymentStatus *string
	PaymentMethod *string
	OrderMemo     *string
	AdminMemo     *string
}

type OrderItemOutput struct {
	ProductID     int64                 `json:"productId"`
	ProductNumber string                `json:"productNumber"`
	Name          string                `json:"name"`
	Image         string                `json:"image,omitempty"`
	Category      model.ProductCategory `json:"category"`
	Price         int64                 `json:"price"`
	Quantity      int64                 `json:"quantity"`
	Subtotal      int64                 `json:"subtotal"`
}

type ShippingOutput struct {
	RecipientName   string `json:"recipientName"`
	RecipientPhone  string `json:"recipientPhone"`
	ShippingAddress string `json:"shippingAddress"`
	ShippingMemo    string `json:"shippingMemo,omitempty"`
}

type AmountOutput struct {
	ItemsTotal  int64 `json:"itemsTotal"`
	ShippingFee int64 `json:"shippingFee"`
	Discount    int64 `json:"discount"`
	FinalTotal  int64 `json:"finalTotal"`
}

type PaymentOutput struct {
	Method               *model.PaymentMethod `json:"method,omitempty"`
	Status               model.PaymentStatus  `json:"status"`
	GatewayTransactionID *string              `json:"impUid,omitempty"`
	MerchantOrderID      *string              `json:"merchantUid,omitempty"`
	PaidAt               *time.Time           `json:"paidAt,omitempty"`
}

type OrderOutput struct {
	ID           int64             `json:"id"`
	OrderNumber  string            `json:"orderNumber"`
	UserID       int64             `json:"userId"`
	Items        []OrderItemOutput `json:"items"`
	ShippingInfo ShippingOutput    `json:"shippingInfo"`
	Amount       AmountOutput      `json:"amount"`
	Status       model.OrderStatus `json:"status"`
	Payment      PaymentOutput     `json:"payment"`
	OrderMemo    string            `json:"orderMemo,omitempty"`
	AdminMemo    string            `json:"adminMemo,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// DeleteOrder の結果。所有者の場合はキャンセルになる
type DeleteOrderResult struct {
	Deleted   bool         `json:"deleted"`
	Cancelled bool         `json:"cancelled"`
	Order     *OrderOutput `json:"order,omitempty"`
}

func (u *OrderUsecase) CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (OrderOutput, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, newError(ErrUnauthorized, "unauthorized")
	}

	shipping, errs := normalizeShipping(in.Shipping)
	var method *model.PaymentMethod
	if m := strings.ToUpper(strings.TrimSpace(in.Payment.Method)); m != "" {
		pm := model.PaymentMethod(m)
		if !pm.Valid() {
			errs = append(errs, "payment.method is invalid")
		} else {
			method = &pm
		}
	}
	if len(errs) > 0 {
		return OrderOutput{}, newError(ErrValidation, "invalid order input", errs...)
	}

	merchantID := strings.TrimSpace(in.Payment.MerchantOrderID)
	gatewayTxID := strings.TrimSpace(in.Payment.GatewayTransactionID)

	//同じmerchant uidの注文があれば作らない（本当のガードはDBの一意制約）
	if merchantID != "" {
		_, found, err := u.orders.FindByMerchantOrderID(ctx, merchantID)
		if err != nil {
			return OrderOutput{}, internalError(err)
		}
		if found {
			return OrderOutput{}, newError(ErrDuplicateOrder, "order already exists for this payment")
		}
	}

	cartItems, err := u.carts.ListByUserID(ctx, actor.UserID)
	if err != nil {
		return OrderOutput{}, internalError(err)
	}
	if len(cartItems) == 0 {
		return OrderOutput{}, newError(ErrEmptyCart, "cart is empty")
	}

	//価格はこの時点の商品価格でスナップショット
	items := make([]model.OrderItem, 0, len(cartItems))
	var itemsTotal int64
	for _, ci := range cartItems {
		p, err := u.products.FindByID(ctx, ci.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return OrderOutput{}, newError(ErrValidation, "a product in the cart is no longer available")
		}
		if err != nil {
			return OrderOutput{}, internalError(err)
		}
		items = append(items, model.OrderItem{
			ProductID:     p.ID,
			ProductNumber: p.ProductNumber,
			ProductName:   p.Name,
			ProductImage:  p.Image,
			Category:      p.Category,
			UnitPrice:     p.Price,
			Quantity:      ci.Quantity,
		})
		itemsTotal += p.Price * ci.Quantity
	}

	amount := CalculateAmount(itemsTotal)

	order := model.Order{
		UserID:    actor.UserID,
		Items:     items,
		Shipping:  shipping,
		Amount:    amount,
		Status:    model.OrderStatusPending,
		OrderMemo: strings.TrimSpace(in.OrderMemo),
		Payment: model.PaymentInfo{
			Method: method,
			Status: model.PaymentStatusPending,
		},
	}
	if merchantID != "" {
		order.Payment.MerchantOrderID = &merchantID
	}

	//決済の検証は保存より前。失敗したら何も書かない
	if gatewayTxID != "" {
		tx, err := u.verifier.VerifyPayment(ctx, gatewayTxID, amount.FinalTotal)
		if err != nil {
			return OrderOutput{}, u.paymentError(gatewayTxID, err)
		}

		paidAt := u.now()
		if tx.PaidAt != nil {
			paidAt = *tx.PaidAt
		}
		order.Status = model.OrderStatusPaymentCompleted
		order.Payment.Status = model.PaymentStatusCompleted
		order.Payment.GatewayTransactionID = &gatewayTxID
		order.Payment.PaidAt = &paidAt
		if order.Payment.Method == nil && tx.Method != "" {
			m := tx.Method
			order.Payment.Method = &m
		}
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		number, err := u.numbers.Next(ctx, r.OrderCounters())
		if err != nil {
			return internalError(err)
		}
		order.OrderNumber = number

		if err := r.Orders().Create(ctx, &order); err != nil {
			if errors.Is(err, repo.ErrDuplicateKey) && merchantID != "" {
				return newError(ErrDuplicateOrder, "order already exists for this payment")
			}
			return internalError(err)
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	//注文が保存できてからカートを空にする。失敗しても注文は成立している
	if err := u.carts.DeleteAllByUserID(ctx, actor.UserID); err != nil {
		u.log.Warnf("order %s created but cart of user %d was not cleared: %v", order.OrderNumber, actor.UserID, err)
	}

	u.publish(ctx, events.OrderCreated, order)
	return toOrderOutput(order), nil
}

func (u *OrderUsecase) UpdateOrder(ctx context.Context, actor Actor, orderID int64, in UpdateOrderInput) (OrderOutput, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, newError(ErrUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, newError(ErrValidation, "invalid order id")
	}

	patch, err := parseOrderPatch(in)
	if err != nil {
		return OrderOutput{}, err
	}

	current, err := u.findOrder(ctx, orderID)
	if err != nil {
		return OrderOutput{}, err
	}

	if err := u.policy.CanUpdate(actor, current, patch); err != nil {
		return OrderOutput{}, err
	}
	if patch.Empty() {
		return toOrderOutput(current), nil
	}

	changes := repo.OrderChanges{
		PaymentStatus: patch.PaymentStatus,
		PaymentMethod: patch.PaymentMethod,
		OrderMemo:     patch.OrderMemo,
		AdminMemo:     patch.AdminMemo,
	}
	if patch.PaymentStatus != nil && *patch.PaymentStatus == model.PaymentStatusCompleted {
		now := u.now()
		changes.PaidAt = &now
	}

	//所有者のキャンセルはPENDINGのままのときだけ（条件付きUPDATE）
	ownerCancel := !actor.IsAdmin() && patch.Status != nil
	if !ownerCancel {
		changes.Status = patch.Status
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if ownerCancel {
			ok, err := r.Orders().UpdateStatusGuard(ctx, orderID, model.OrderStatusPending, model.OrderStatusCancelled)
			if err != nil {
				return internalError(err)
			}
			if !ok {
				return newError(ErrInvalidTransition, "only pending orders can be cancelled")
			}
		}

		if !changes.Empty() {
			if err := r.Orders().Update(ctx, orderID, changes); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return newError(ErrNotFound, "order not found")
				}
				return internalError(err)
			}
		}

		if actor.IsAdmin() {
			after, err := r.Orders().FindByID(ctx, orderID)
			if err != nil {
				return internalError(err)
			}
			if err := writeAudit(ctx, r.AuditLogs(), actor, model.AuditActionUpdateOrder, current, &after, u.now()); err != nil {
				return internalError(err)
			}
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	updated, err := u.findOrder(ctx, orderID)
	if err != nil {
		return OrderOutput{}, err
	}

	evType := events.OrderUpdated
	if updated.Status == model.OrderStatusCancelled && current.Status != model.OrderStatusCancelled {
		evType = events.OrderCancelled
	}
	u.publish(ctx, evType, updated)

	return toOrderOutput(updated), nil
}

func (u *OrderUsecase) DeleteOrder(ctx context.Context, actor Actor, orderID int64) (DeleteOrderResult, error) {
	if actor.UserID <= 0 {
		return DeleteOrderResult{}, newError(ErrUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return DeleteOrderResult{}, newError(ErrValidation, "invalid order id")
	}

	current, err := u.findOrder(ctx, orderID)
	if err != nil {
		return DeleteOrderResult{}, err
	}

	hardDelete, err := u.policy.CanDelete(actor, current)
	if err != nil {
		return DeleteOrderResult{}, err
	}

	if hardDelete {
		err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			if err := writeAudit(ctx, r.AuditLogs(), actor, model.AuditActionDeleteOrder, current, nil, u.now()); err != nil {
				return internalError(err)
			}
			if err := r.Orders().Delete(ctx, orderID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return newError(ErrNotFound, "order not found")
				}
				return internalError(err)
			}
			return nil
		})
		if err != nil {
			return DeleteOrderResult{}, err
		}

		u.publish(ctx, events.OrderDeleted, current)
		return DeleteOrderResult{Deleted: true}, nil
	}

	//所有者の削除はキャンセル扱い（レコードは残す）
	ok, err := u.orders.UpdateStatusGuard(ctx, orderID, model.OrderStatusPending, model.OrderStatusCancelled)
	if err != nil {
		return DeleteOrderResult{}, internalError(err)
	}
	if !ok {
		return DeleteOrderResult{}, newError(ErrInvalidTransition, "only pending orders can be cancelled")
	}

	cancelled, err := u.findOrder(ctx, orderID)
	if err != nil {
		return DeleteOrderResult{}, err
	}
	u.publish(ctx, events.OrderCancelled, cancelled)

	out := toOrderOutput(cancelled)
	return DeleteOrderResult{Cancelled: true, Order: &out}, nil
}

// 管理者は全件、それ以外は自分の注文だけ。新しい順
func (u *OrderUsecase) ListOrders(ctx context.Context, actor Actor, status string) ([]OrderOutput, error) {
	if actor.UserID <= 0 {
		return []OrderOutput{}, newError(ErrUnauthorized, "unauthorized")
	}

	f := repo.OrderListFilter{}
	if s := strings.ToUpper(strings.TrimSpace(status)); s != "" {
		st := model.OrderStatus(s)
		if !st.Valid() {
			return []OrderOutput{}, newError(ErrValidation, "invalid status filter")
		}
		f.Status = st
	}
	if !actor.IsAdmin() {
		uid := actor.UserID
		f.UserID = &uid
	}

	orders, err := u.orders.List(ctx, f)
	if err != nil {
		return []OrderOutput{}, internalError(err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}
	return outs, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, actor Actor, orderID int64) (OrderOutput, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, newError(ErrUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, newError(ErrValidation, "invalid order id")
	}

	o, err := u.findOrder(ctx, orderID)
	if err != nil {
		return OrderOutput{}, err
	}
	if err := u.policy.CanView(actor, o); err != nil {
		return OrderOutput{}, err
	}
	return toOrderOutput(o), nil
}

func (u *OrderUsecase) findOrder(ctx context.Context, orderID int64) (model.Order, error) {
	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, newError(ErrNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, internalError(err)
	}
	return o, nil
}

// 設定不備・トークン発行の拒否は500、それ以外は決済検証エラー(400)
func (u *OrderUsecase) paymentError(txID string, err error) error {
	switch {
	case errors.Is(err, payment.ErrConfiguration), errors.Is(err, payment.ErrGateway):
		u.log.Errorf("payment verification for %s failed: %v", txID, err)
		return internalError(err)
	case errors.Is(err, payment.ErrGatewayUnreachable):
		u.log.Warnf("payment gateway unreachable while verifying %s: %v", txID, err)
		return newError(ErrPaymentVerification, "payment verification failed", "payment gateway could not be reached")
	case errors.Is(err, payment.ErrPaymentNotCompleted):
		return newError(ErrPaymentVerification, "payment verification failed", "payment is not completed")
	case errors.Is(err, payment.ErrAmountMismatch):
		return newError(ErrPaymentVerification, "payment verification failed", "paid amount does not match the order total")
	case errors.Is(err, payment.ErrTransactionLookup):
		return newError(ErrPaymentVerification, "payment verification failed", "payment transaction could not be found")
	}
	u.log.Errorf("payment verification for %s failed: %v", txID, err)
	return internalError(err)
}

func (u *OrderUsecase) publish(ctx context.Context, t events.EventType, o model.Order) {
	if err := u.publisher.Publish(ctx, events.NewOrderEvent(t, o)); err != nil {
		u.log.Warnf("publish %s for order %d: %v", t, o.ID, err)
	}
}

func normalizeShipping(in ShippingInput) (model.ShippingInfo, []string) {
	s := model.ShippingInfo{
		RecipientName:   strings.TrimSpace(in.RecipientName),
		RecipientPhone:  strings.TrimSpace(in.RecipientPhone),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		ShippingMemo:    strings.TrimSpace(in.ShippingMemo),
	}

	var errs []string
	if s.RecipientName == "" {
		errs = append(errs, "shippingInfo.recipientName is required")
	}
	if s.RecipientPhone == "" {
		errs = append(errs, "shippingInfo.recipientPhone is required")
	}
	if s.ShippingAddress == "" {
		errs = append(errs, "shippingInfo.shippingAddress is required")
	}
	return s, errs
}

func parseOrderPatch(in UpdateOrderInput) (OrderPatch, error) {
	var p OrderPatch
	var errs []string

	if in.Status != nil {
		st := model.OrderStatus(strings.ToUpper(strings.TrimSpace(*in.Status)))
		if !st.Valid() {
			errs = append(errs, "status must be one of PENDING, PAYMENT_COMPLETED, PREPARING, SHIPPING, DELIVERED, CANCELLED")
		} else {
			p.Status = &st
		}
	}
	if in.PaymentStatus != nil {
		ps := model.PaymentStatus(strings.ToUpper(strings.TrimSpace(*in.PaymentStatus)))
		if !ps.Valid() {
			errs = append(errs, "payment.status must be one of PENDING, COMPLETED, FAILED, REFUNDED")
		} else {
			p.PaymentStatus = &ps
		}
	}
	if in.PaymentMethod != nil {
		pm := model.PaymentMethod(strings.ToUpper(strings.TrimSpace(*in.PaymentMethod)))
		if !pm.Valid() {
			errs = append(errs, "payment.method must be one of CARD, BANK_TRANSFER, VIRTUAL_ACCOUNT, MOBILE")
		} else {
			p.PaymentMethod = &pm
		}
	}
	if in.OrderMemo != nil {
		m := strings.TrimSpace(*in.OrderMemo)
		p.OrderMemo = &m
	}
	if in.AdminMemo != nil {
		m := strings.TrimSpace(*in.AdminMemo)
		p.AdminMemo = &m
	}

	if len(errs) > 0 {
		return OrderPatch{}, newError(ErrValidation, "invalid order update", errs...)
	}
	return p, nil
}

// 変更前後をJSONで残す。after=nilは削除
func writeAudit(ctx context.Context, logs repo.AuditLogRepository, actor Actor, action model.AuditAction, before model.Order, after *model.Order, now time.Time) error {
	beforeJSON, err := json.Marshal(toOrderOutput(before))
	if err != nil {
		return err
	}
	afterJSON := []byte("null")
	if after != nil {
		if afterJSON, err = json.Marshal(toOrderOutput(*after)); err != nil {
			return err
		}
	}

	return logs.Create(ctx, model.AuditLog{
		ActorUserID:  actor.UserID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   before.ID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    now,
	})
}

func toOrderOutput(o model.Order) OrderOutput {
	items := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemOutput{
			ProductID:     it.ProductID,
			ProductNumber: it.ProductNumber,
			Name:          it.ProductName,
			Image:         it.ProductImage,
			Category:      it.Category,
			Price:         it.UnitPrice,
			Quantity:      it.Quantity,
			Subtotal:      it.Subtotal(),
		})
	}

	return OrderOutput{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Items:       items,
		ShippingInfo: ShippingOutput{
			RecipientName:   o.Shipping.RecipientName,
			RecipientPhone:  o.Shipping.RecipientPhone,
			ShippingAddress: o.Shipping.ShippingAddress,
			ShippingMemo:    o.Shipping.ShippingMemo,
		},
		Amount: AmountOutput{
			ItemsTotal:  o.Amount.ItemsTotal,
			ShippingFee: o.Amount.ShippingFee,
			Discount:    o.Amount.Discount,
			FinalTotal:  o.Amount.FinalTotal,
		},
		Status: o.Status,
		Payment: PaymentOutput{
			Method:               o.Payment.Method,
			Status:               o.Payment.Status,
			GatewayTransactionID: o.Payment.GatewayTransactionID,
			MerchantOrderID:      o.Payment.MerchantOrderID,
			PaidAt:               o.Payment.PaidAt,
		},
		OrderMemo: o.OrderMemo,
		AdminMemo: o.AdminMemo,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
