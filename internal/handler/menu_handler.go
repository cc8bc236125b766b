package handler

import (
	"net/http"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 公開メニュー
type MenuHandler struct {
	uc *usecase.CatalogUsecase
}

func NewMenuHandler(uc *usecase.CatalogUsecase) *MenuHandler {
	return &MenuHandler{uc: uc}
}

func (h *MenuHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/menu", h.menu)
}

func (h *MenuHandler) menu(c echo.Context) error {
	out, err := h.uc.PublicMenu(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
