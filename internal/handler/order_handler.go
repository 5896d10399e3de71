package handler

import (
	"context"
	"net/http"
	"strconv"

	"camerastore/internal/config"
	"camerastore/internal/middleware"
	"camerastore/internal/repository"
	"camerastore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderService interface {
	CreateOrder(ctx context.Context, actor usecase.Actor, in usecase.CreateOrderInput) (usecase.OrderOutput, error)
	UpdateOrder(ctx context.Context, actor usecase.Actor, orderID int64, in usecase.UpdateOrderInput) (usecase.OrderOutput, error)
	DeleteOrder(ctx context.Context, actor usecase.Actor, orderID int64) (usecase.DeleteOrderResult, error)
	ListOrders(ctx context.Context, actor usecase.Actor, status string) ([]usecase.OrderOutput, error)
	GetOrder(ctx context.Context, actor usecase.Actor, orderID int64) (usecase.OrderOutput, error)
}

type OrderHandler struct {
	uc OrderService
}

func NewOrderHandler(uc OrderService) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type ShippingInfoRequest struct {
	RecipientName   string `json:"recipientName"`
	RecipientPhone  string `json:"recipientPhone"`
	ShippingAddress string `json:"shippingAddress"`
	ShippingMemo    string `json:"shippingMemo"`
}

type PaymentIntentRequest struct {
	Method      string `json:"method"`
	ImpUID      string `json:"imp_uid"`
	MerchantUID string `json:"merchant_uid"`
}

type OrderCreateRequest struct {
	ShippingInfo ShippingInfoRequest `json:"shippingInfo"`
	Payment      PaymentIntentRequest `json:"payment"`
	OrderMemo    string               `json:"orderMemo"`
}

type PaymentPatchRequest struct {
	Status *string `json:"status"`
	Method *string `json:"method"`
}

type OrderUpdateRequest struct {
	Status    *string              `json:"status"`
	OrderMemo *string              `json:"orderMemo"`
	AdminMemo *string              `json:"adminMemo"`
	Payment   *PaymentPatchRequest `json:"payment"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.UserGuard(userRepo))

	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *OrderHandler) create(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "authentication required")
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid request body")
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), actor, usecase.CreateOrderInput{
		Shipping: usecase.ShippingInput{
			RecipientName:   req.ShippingInfo.RecipientName,
			RecipientPhone:  req.ShippingInfo.RecipientPhone,
			ShippingAddress: req.ShippingInfo.ShippingAddress,
			ShippingMemo:    req.ShippingInfo.ShippingMemo,
		},
		Payment: usecase.PaymentIntent{
			Method:               req.Payment.Method,
			GatewayTransactionID: req.Payment.ImpUID,
			MerchantOrderID:      req.Payment.MerchantUID,
		},
		OrderMemo: req.OrderMemo,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeOK(c, http.StatusCreated, "order created", out)
}

func (h *OrderHandler) list(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "authentication required")
	}

	out, err := h.uc.ListOrders(c.Request().Context(), actor, c.QueryParam("status"))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "orders fetched", out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "authentication required")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid order id")
	}

	out, err := h.uc.GetOrder(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "order fetched", out)
}

func (h *OrderHandler) update(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "authentication required")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid order id")
	}

	var req OrderUpdateRequest
	if err := c.Bind(&req); err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid request body")
	}

	in := usecase.UpdateOrderInput{
		Status:    req.Status,
		OrderMemo: req.OrderMemo,
		AdminMemo: req.AdminMemo,
	}
	if req.Payment != nil {
		in.PaymentStatus = req.Payment.Status
		in.PaymentMethod = req.Payment.Method
	}

	out, err := h.uc.UpdateOrder(c.Request().Context(), actor, id, in)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "order updated", out)
}

func (h *OrderHandler) delete(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "authentication required")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid order id")
	}

	res, err := h.uc.DeleteOrder(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}

	if res.Cancelled {
		return writeOK(c, http.StatusOK, "order cancelled", res.Order)
	}
	return writeOK(c, http.StatusOK, "order deleted", nil)
}
