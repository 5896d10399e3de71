package handler

import (
	"camerastore/internal/config"
	"camerastore/internal/middleware"
	"camerastore/internal/repository"

	"github.com/labstack/echo/v4"
)

// /admin 配下（商品登録・監査ログ）
type AdminHandler struct {
	products ProductService
	audits   AuditLogService
}

// DI
func NewAdminHandler(products ProductService, audits AuditLogService) *AdminHandler {
	return &AdminHandler{products: products, audits: audits}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.UserGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/products", h.createProduct)
	admin.GET("/audit-logs", h.listAuditLogs)
}
