package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/mercado-api/internal/application/analytics"
	"github.com/tu-usuario/mercado-api/internal/application/dto"
)

// DashboardHandler expone el resumen del dashboard.
type DashboardHandler struct {
	uc *analytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *analytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Summary godoc
// @Summary      Resumen del dashboard
// @Description  Conteos del catálogo, total de ventas de la ventana y actividad reciente. window_days=0 suma todo el historial; ausente usa 30 días.
// @Tags         dashboard
// @Produce      json
// @Param        window_days  query  int  false  "ventana en días para el total de ventas"
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Security     BearerAuth
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	windowDays := c.QueryInt("window_days", -1)
	out, err := h.uc.GetSummary(c.UserContext(), windowDays)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
