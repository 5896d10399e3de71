package handler

import (
	"context"
	"net/http"
	"strconv"

	"camerastore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuditLogService interface {
	List(ctx context.Context, in usecase.ListAuditLogsInput) ([]usecase.AuditLogOutput, error)
}

// ?action=&resource_type=&resource_id=&from=&to=&limit=
func (h *AdminHandler) listAuditLogs(c echo.Context) error {
	in := usecase.ListAuditLogsInput{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		From:         c.QueryParam("from"),
		To:           c.QueryParam("to"),
	}

	if v := c.QueryParam("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return writeFail(c, http.StatusBadRequest, "invalid resource_id")
		}
		in.ResourceID = id
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return writeFail(c, http.StatusBadRequest, "invalid limit")
		}
		in.Limit = l
	}

	out, err := h.audits.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "audit logs fetched", out)
}
