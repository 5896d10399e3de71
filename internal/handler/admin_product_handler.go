package handler

import (
	"net/http"

	"camerastore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ProductCreateRequest struct {
	ProductNumber string `json:"productNumber"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	Category      string `json:"category"`
	Price         int64  `json:"price"`
	Description   string `json:"description"`
}

func (h *AdminHandler) createProduct(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "authentication required")
	}

	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid request body")
	}

	out, err := h.products.CreateProduct(c.Request().Context(), actor, usecase.CreateProductInput{
		ProductNumber: req.ProductNumber,
		Name:          req.Name,
		Image:         req.Image,
		Category:      req.Category,
		Price:         req.Price,
		Description:   req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusCreated, "product created", out)
}
