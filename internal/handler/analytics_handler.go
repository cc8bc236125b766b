package handler

import (
	"net/http"
	"time"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/config"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/middleware"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AnalyticsHandler struct {
	uc *usecase.AnalyticsUsecase
}

func NewAnalyticsHandler(uc *usecase.AnalyticsUsecase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

func (h *AnalyticsHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/analytics")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RoleGuard(model.RoleBusinessManager))

	g.GET("/sales", h.sales)
}

func (h *AnalyticsHandler) sales(c echo.Context) error {
	// 未指定は直近30日
	from := time.Now().AddDate(0, 0, -30)
	if v := c.QueryParam("from"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		from = tm
	}

	out, err := h.uc.SalesSummary(c.Request().Context(), from)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
