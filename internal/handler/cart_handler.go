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

type CartService interface {
	GetCart(ctx context.Context, userID int64) (usecase.CartResponse, error)
	AddItem(ctx context.Context, userID int64, in usecase.AddCartInput) (usecase.CartResponse, error)
	UpdateQuantity(ctx context.Context, userID int64, productID int64, quantity int64) (usecase.CartResponse, error)
	RemoveItem(ctx context.Context, userID int64, productID int64) (usecase.CartResponse, error)
	Clear(ctx context.Context, userID int64) error
}

// /cartのHTTP
type CartHandler struct {
	uc CartService
}

// DI
func NewCartHandler(uc CartService) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// /cart, /cart/:productId を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/cart")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.UserGuard(userRepo))

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.DELETE("", h.clearCart)
	g.PATCH("/:productId", h.patchItem)
	g.DELETE("/:productId", h.deleteItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "authentication required")
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "cart fetched", out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "authentication required")
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid request body")
	}

	out, err := h.uc.AddItem(c.Request().Context(), userID, usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "item added to cart", out)
}

func (h *CartHandler) patchItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "authentication required")
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid productId")
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid request body")
	}

	out, err := h.uc.UpdateQuantity(c.Request().Context(), userID, productID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "cart updated", out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "authentication required")
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid productId")
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), userID, productID)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "item removed from cart", out)
}

func (h *CartHandler) clearCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "authentication required")
	}

	if err := h.uc.Clear(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "cart cleared", nil)
}
