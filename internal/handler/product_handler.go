package handler

import (
	"context"
	"net/http"
	"strconv"

	"camerastore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ProductService interface {
	ListProducts(ctx context.Context, in usecase.ListProductsInput) ([]usecase.ProductOutput, error)
	GetProduct(ctx context.Context, productID int64) (usecase.ProductOutput, error)
	CreateProduct(ctx context.Context, actor usecase.Actor, in usecase.CreateProductInput) (usecase.ProductOutput, error)
}

// /products の公開API
type ProductHandler struct {
	uc ProductService
}

// DI
func NewProductHandler(uc ProductService) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
}

// ?category=CAMERA|LENS&q=キーワード
func (h *ProductHandler) list(c echo.Context) error {
	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Category: c.QueryParam("category"),
		Q:        c.QueryParam("q"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "products fetched", out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid product id")
	}

	p, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "product fetched", p)
}
